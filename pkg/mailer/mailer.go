package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/mzielinski/usermgmt-backend/pkg/config"
	"github.com/mzielinski/usermgmt-backend/pkg/logger"
)

// Message is a single outbound mail addressed to one or more recipients.
// All recipients receive the same payload in one dispatch.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers messages to a literal list of destination addresses.
// Implementations are fire-and-forget from the caller's perspective; delivery
// outcome is not reported back per recipient.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New selects a sender implementation from configuration. The log driver is
// the default so local environments never need mail credentials.
func New(cfg config.MailerConfig, logg *logger.Logger) (Sender, error) {
	if cfg.UsesSES() {
		return NewSESSender(cfg)
	}
	return NewLogSender(logg), nil
}

func validateMessage(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}
	for _, addr := range msg.To {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("message has an empty recipient address")
		}
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("message subject is required")
	}
	return nil
}
