package mailer

import (
	"context"
	"fmt"

	"github.com/ivkov/toolshelf/pkg/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP. It satisfies auth.Notifier so it
// can be wired directly into the login flow when no queue is configured.
type Mailer struct {
	cfg *config.SMTPConfig
}

func New(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendTwoFactorCode delivers a one-time login code to the given address.
func (m *Mailer) SendTwoFactorCode(ctx context.Context, email, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour verification code is: %s\n\nIt expires in 10 minutes. If you did not try to log in, you can ignore this message.\n",
		name, code,
	))
	msg.AddAlternative("text/html", fmt.Sprintf(
		"<p>Hello %s,</p><p>Your verification code is: <strong>%s</strong></p><p>It expires in 10 minutes. If you did not try to log in, you can ignore this message.</p>",
		name, code,
	))

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", email, err)
	}
	return nil
}
