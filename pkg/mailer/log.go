package mailer

import (
	"context"

	"github.com/mzielinski/usermgmt-backend/pkg/logger"
)

// LogSender writes messages to the application log instead of delivering
// them. Used in development and as the default driver.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := validateMessage(msg); err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"to":      msg.To,
			"subject": msg.Subject,
		})
		s.logg.Info(ctx, "mailer.log_send")
	}
	return nil
}
