package email

import (
	"log"
)

// consoleService logs messages instead of delivering them. Used in development
// and when no sendgrid key is configured.
type consoleService struct{}

var _ Service = (*consoleService)(nil)

func NewConsoleService() Service {
	return &consoleService{}
}

func (consoleService) Send(msg Message) error {
	log.Printf("INFO: [EMAIL] To: %s <%s> Subject: %q\n%s", msg.ToName, msg.ToAddress, msg.Subject, msg.TextBody)
	return nil
}
