package notifications

import (
	"fmt"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
	"github.com/mzielinski/usermgmt-backend/pkg/mailer"
)

const welcomeSubject = "Witamy!"

// WelcomeMessage builds the registration greeting addressed to every
// email the user has on file, as a single message.
func WelcomeMessage(user *models.User, addresses []string) mailer.Message {
	greeting := fmt.Sprintf("Witamy użytkownika %s %s", user.FirstName, user.LastName)
	closing := "Dziękujemy za rejestrację w naszym systemie."

	return mailer.Message{
		To:       addresses,
		Subject:  welcomeSubject,
		TextBody: greeting + "\n\n" + closing + "\n",
		HTMLBody: fmt.Sprintf(
			"<html><body><h1>%s</h1><p>%s</p><p>%s</p></body></html>",
			welcomeSubject, greeting, closing,
		),
	}
}
