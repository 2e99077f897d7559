package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"time"
)

// SMTPSender delivers notifications over plain SMTP with AUTH.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Send renders the template for the event and submits the message.
// The context deadline is honored only up to connection setup; net/smtp
// has no per-command cancellation.
func (s *SMTPSender) Send(ctx context.Context, recipient string, event Event, data map[string]string) error {
	subject, body := renderEmail(event, data)

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.From, recipient, subject, body,
	)

	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	if err := smtp.SendMail(addr, auth, s.From, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("notify: sending %s email: %w", event, err)
	}
	return nil
}

// renderEmail returns the subject and plain-text body for an event.
func renderEmail(event Event, data map[string]string) (subject, body string) {
	username := data["username"]

	switch event {
	case EventWelcome:
		subject = "Welcome to NewsHub! Account Created Successfully"
		body = fmt.Sprintf(
			"Hello %s!\n\n"+
				"Your NewsHub account has been created. You can now read the latest news, "+
				"submit your own articles, and share your stories with the community.\n\n"+
				"Username: %s\n\n"+
				"If you did not create this account, please contact support immediately.\n\n"+
				"NewsHub Support Team",
			username, username,
		)
	case EventLoginAlert:
		subject = "Login Notification - NewsHub Account Access"
		body = fmt.Sprintf(
			"Hello %s!\n\n"+
				"Your account was just accessed successfully at %s.\n\n"+
				"If this wasn't you, please change your password immediately and contact support.\n\n"+
				"This is an automated message. Please do not reply.\n\n"+
				"NewsHub Support Team",
			username, time.Now().Format(time.RFC1123),
		)
	default:
		subject = "NewsHub Notification"
		body = fmt.Sprintf("Hello %s!\n\nYou have a new notification from NewsHub.", username)
	}
	return subject, body
}
