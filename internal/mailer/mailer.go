package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"lankatrails-backend/internal/config"
)

// Mailer delivers notification mail. Delivery is best effort: callers
// fire it on a goroutine and never fail a request over it.
type Mailer interface {
	Send(to, subject, body string) error
}

func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		from: cfg.SMTPFrom,
		auth: smtp.PlainAuth("", cfg.SMTPFrom, cfg.SMTPPass, cfg.SMTPHost),
	}
}

// SendAsync delivers on a goroutine, logging failures.
func SendAsync(m Mailer, to, subject, body string) {
	go func() {
		if err := m.Send(to, subject, body); err != nil {
			log.Printf("mail to %s failed: %v", to, err)
		}
	}()
}

type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

// LogMailer is the default when SMTP is not configured.
type LogMailer struct{}

func (m *LogMailer) Send(to, subject, _ string) error {
	log.Printf("mail (not configured): to=%s subject=%q", to, subject)
	return nil
}
