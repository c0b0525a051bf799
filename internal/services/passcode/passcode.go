// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package passcode issues and redeems one-time login codes.
package passcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/ratelimit"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/services/auth"
	"codeberg.org/oliverandrich/taskboard/internal/services/email"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
)

// CodeLength is the number of digits in a passcode.
const CodeLength = 6

var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidCode    = errors.New("invalid or expired code")
	ErrDeliveryFailed = errors.New("passcode delivery failed")
	ErrRateLimited    = errors.New("too many passcodes requested")
)

// Outcome tells whether verification resolved an existing account or
// created a new one.
type Outcome int

const (
	OutcomeExistingUser Outcome = iota + 1
	OutcomeNewUser
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExistingUser:
		return "existing_user"
	case OutcomeNewUser:
		return "new_user"
	default:
		return "unknown"
	}
}

// Issued describes a passcode that was stored and handed to the mailer.
type Issued struct {
	Email     string
	ExpiresAt time.Time
}

// Resolution is the result of a successful verification.
type Resolution struct {
	User    *models.User
	Outcome Outcome
}

type Service struct {
	repo     *repository.Repository
	accounts *auth.Service
	mailer   email.Mailer
	limiter  ratelimit.Limiter
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewService(repo *repository.Repository, accounts *auth.Service, mailer email.Mailer, cfg *config.PasscodeConfig) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		repo:     repo,
		accounts: accounts,
		mailer:   mailer,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		generate: GenerateCode,
	}
}

// WithLimiter enables per-address send throttling.
func (s *Service) WithLimiter(l ratelimit.Limiter) *Service {
	s.limiter = l
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = func() time.Time { return now().UTC() }
	return s
}

// WithGenerator replaces the code generator.
func (s *Service) WithGenerator(gen func() (string, error)) *Service {
	s.generate = gen
	return s
}

// TTL returns how long issued codes stay valid.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// GenerateCode returns a uniformly random zero-padded six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue stores a new passcode for addr and mails it.
//
// When the mailer fails the passcode stays stored and Issue returns the
// Issued value together with an error wrapping ErrDeliveryFailed.
func (s *Service) Issue(ctx context.Context, addr string) (*Issued, error) {
	addr = NormalizeEmail(addr)
	if err := validate.Var("email", addr, "required,email,max=255"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEmail, err)
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, addr)
		if err != nil {
			slog.WarnContext(ctx, "passcode_limiter_error", "email", addr, "error", err)
		} else if !ok {
			slog.WarnContext(ctx, "passcode_rate_limited", "email", addr)
			return nil, ErrRateLimited
		}
	}

	code, err := s.generate()
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := &models.Passcode{
		Email:     addr,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.CreatePasscode(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store passcode: %w", err)
	}

	issued := &Issued{Email: addr, ExpiresAt: record.ExpiresAt}
	if err := s.mailer.SendPasscode(ctx, addr, code, s.ttl); err != nil {
		slog.ErrorContext(ctx, "passcode_delivery_failed", "email", addr, "passcode_id", record.ID, "error", err)
		return issued, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	slog.InfoContext(ctx, "passcode_issued", "email", addr, "passcode_id", record.ID, "expires_at", record.ExpiresAt)
	return issued, nil
}

// Verify redeems code for addr and resolves the account, creating it on
// first login. Every failure is reported as ErrInvalidCode.
func (s *Service) Verify(ctx context.Context, addr, code string) (*Resolution, error) {
	addr = NormalizeEmail(addr)
	code = strings.TrimSpace(code)
	if addr == "" || len(code) != CodeLength {
		slog.WarnContext(ctx, "passcode_verify_failed", "email", addr, "reason", "malformed")
		return nil, ErrInvalidCode
	}

	now := s.now()
	var res *Resolution
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		candidates, err := tx.FindUnusedPasscodes(ctx, addr, code)
		if err != nil {
			return err
		}

		var chosen *models.Passcode
		for i := range candidates {
			if candidates[i].IsValid(now) {
				chosen = &candidates[i]
				break
			}
		}
		if chosen == nil {
			slog.WarnContext(ctx, "passcode_verify_failed", "email", addr, "reason", "no_valid_code")
			return ErrInvalidCode
		}

		if err := tx.ConsumePasscode(ctx, chosen.ID, now); err != nil {
			if errors.Is(err, repository.ErrPasscodeConsumed) {
				slog.WarnContext(ctx, "passcode_verify_failed", "email", addr, "reason", "already_consumed")
				return ErrInvalidCode
			}
			return err
		}

		user, created, err := s.accounts.WithRepo(tx).FindOrCreateUser(ctx, addr)
		if err != nil {
			return err
		}

		res = &Resolution{User: user, Outcome: OutcomeExistingUser}
		if created {
			res.Outcome = OutcomeNewUser
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "login_success", "user_id", res.User.ID, "email", addr, "outcome", res.Outcome.String())
	return res, nil
}
