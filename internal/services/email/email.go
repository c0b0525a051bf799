// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers login codes over SMTP, Mailgun or the log.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"codeberg.org/oliverandrich/taskboard/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Mailer sends a passcode to an address.
type Mailer interface {
	SendPasscode(ctx context.Context, to, code string, ttl time.Duration) error
}

// New returns the Mailer selected by the mail transport setting.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.Mail.Transport {
	case "smtp":
		return NewService(&cfg.SMTP)
	case "mailgun":
		return NewMailgunService(&cfg.Mailgun)
	case "", "log":
		return NewLogMailer(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}

// ComposePasscode renders the localized subject and body of a passcode email.
func ComposePasscode(ctx context.Context, code string, ttl time.Duration) (subject, body string) {
	subject = i18n.T(ctx, "otp_email_subject")
	body = i18n.TData(ctx, "otp_email_body", map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Round(time.Minute).Minutes()),
	})
	return subject, body
}

// Service sends mail through an SMTP server.
type Service struct {
	cfg *config.SMTPConfig
}

// NewService creates an SMTP mailer.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &Service{cfg: cfg}, nil
}

// SendPasscode emails a login code.
func (s *Service) SendPasscode(ctx context.Context, to, code string, ttl time.Duration) error {
	subject, body := ComposePasscode(ctx, code, ttl)
	return s.send(ctx, to, subject, body)
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	msg, err := s.message(to, subject, body)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (s *Service) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (s *Service) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// 465 is implicit TLS, everything else uses STARTTLS
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// LogMailer writes passcodes to the log instead of sending them. Meant for
// local development.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) SendPasscode(ctx context.Context, to, code string, ttl time.Duration) error {
	subject, _ := ComposePasscode(ctx, code, ttl)
	l.logger.InfoContext(ctx, "passcode_mail", "to", to, "subject", subject, "code", code, "expires_in", ttl.String())
	return nil
}
