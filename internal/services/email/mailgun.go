// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"codeberg.org/oliverandrich/taskboard/internal/config"
)

// MailgunService sends mail through the Mailgun HTTP API.
type MailgunService struct {
	client *mg.MailgunImpl
	sender string
}

// NewMailgunService creates a Mailgun mailer.
func NewMailgunService(cfg *config.MailgunConfig) (*MailgunService, error) {
	if cfg.Domain == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("mailgun domain and api key are required")
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("mailgun sender is required")
	}
	return &MailgunService{
		client: mg.NewMailgun(cfg.Domain, cfg.APIKey),
		sender: cfg.Sender,
	}, nil
}

// SendPasscode emails a login code.
func (m *MailgunService) SendPasscode(ctx context.Context, to, code string, ttl time.Duration) error {
	subject, body := ComposePasscode(ctx, code, ttl)
	msg := m.client.NewMessage(m.sender, subject, body, to)

	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
