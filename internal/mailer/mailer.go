// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTP delivers through a single SMTP relay, one connection per message.
type SMTP struct {
	dialer *gomail.Dialer
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

// LogSender only logs outgoing mail. Used when SMTP isn't configured.
type LogSender struct {
	Log zerolog.Logger
}

func (l LogSender) Send(_ context.Context, m Message) error {
	l.Log.Info().Str("to", m.To).Str("subject", m.Subject).Msg("mail not sent, smtp disabled")
	return nil
}

// NewSender returns an SMTP sender when a host is set and a LogSender
// otherwise.
func NewSender(cfg SMTPConfig, log zerolog.Logger) Sender {
	if cfg.Host == "" {
		return LogSender{Log: log}
	}
	return NewSMTP(cfg)
}
