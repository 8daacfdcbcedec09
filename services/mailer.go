package services

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/onemsu/onemsu-be/config"
)

// Mailer sends plain-text mail over SMTP. With no SMTP config it degrades to
// logging the message, which is how verification codes surface in dev.
type Mailer struct {
	cfg *config.SMTPConfig
}

func NewMailer(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to, subject, body string) error {
	if m.cfg == nil || m.cfg.Host == "" {
		log.Printf("[DEV-EMAIL] To: %v\nSubject: %v\n\n%v\n", to, subject, body)
		return nil
	}
	msg := fmt.Sprintf("From: %v\r\nTo: %v\r\nSubject: %v\r\n\r\n%v\r\n",
		m.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%v:%v", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
