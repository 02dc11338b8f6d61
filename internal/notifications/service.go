package notifications

import (
	"context"
	"fmt"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
	"github.com/mzielinski/usermgmt-backend/pkg/logger"
	"github.com/mzielinski/usermgmt-backend/pkg/mailer"
)

// Service dispatches user-facing notifications over the configured
// mail transport.
type Service interface {
	SendWelcome(ctx context.Context, user *models.User, addresses []string) error
}

type serviceImpl struct {
	sender mailer.Sender
	logg   *logger.Logger
}

// NewService wires the notification dispatcher.
func NewService(sender mailer.Sender, logg *logger.Logger) (Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("notifications: mail sender is required")
	}
	return &serviceImpl{sender: sender, logg: logg}, nil
}

func (s *serviceImpl) SendWelcome(ctx context.Context, user *models.User, addresses []string) error {
	if user == nil {
		return fmt.Errorf("notifications: user is required")
	}
	if len(addresses) == 0 {
		return fmt.Errorf("notifications: at least one recipient is required")
	}

	msg := WelcomeMessage(user, addresses)
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending welcome notification: %w", err)
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"recipients": len(addresses),
			"subject":    msg.Subject,
		})
		s.logg.Info(ctx, "welcome notification sent")
	}
	return nil
}
