// Package mailer delivers one-time login codes to users. The Sender
// interface keeps the transport swappable; the server wires the SMTP sender
// when mail settings are configured and the log sender otherwise.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/rsawada/project-management-api/internal/config"
)

// Sender dispatches a one-time login code to a user's email address.
type Sender interface {
	SendOTP(email, code string) error
}

// SMTPSender sends codes through a plain SMTP relay.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPSender creates an SMTPSender from config.
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

// SendOTP sends the login code email.
func (s *SMTPSender) SendOTP(email, code string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your Login OTP\r\n\r\nYour OTP is %s. It expires in 5 minutes.\r\n",
		s.from, email, code)

	addr := s.host + ":" + s.port
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}

	return nil
}

// LogSender writes codes to the server log instead of sending mail.
// Development only.
type LogSender struct{}

// SendOTP logs the code.
func (s *LogSender) SendOTP(email, code string) error {
	log.Printf("OTP for %s: %s", email, code)
	return nil
}
