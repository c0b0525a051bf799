// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provisions user accounts for passwordless login.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidEmail = errors.New("invalid email format")

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// WithRepo returns a copy of the service bound to repo, typically a
// transaction-scoped repository.
func (s *Service) WithRepo(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// FindOrCreateUser returns the user registered under email, creating one
// when none exists. The boolean reports whether the account is new.
//
// Accounts created here carry an unusable placeholder password hash and are
// marked as email-verified, since the caller has just proven control of the
// mailbox.
func (s *Service) FindOrCreateUser(ctx context.Context, email string) (*models.User, bool, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	user, err = s.create(ctx, email, models.RoleUser)
	if errors.Is(err, repository.ErrDuplicate) {
		// lost a race against another login for the same address
		user, err = s.repo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get user: %w", err)
		}
		return user, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	slog.InfoContext(ctx, "user_created", "user_id", user.ID, "email", email)
	return user, true, nil
}

// SetRole changes the role of a user.
func (s *Service) SetRole(ctx context.Context, userID int64, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.repo.SetUserRole(ctx, userID, role)
}

// EnsureAdmin makes sure the account for email exists and is an admin.
func (s *Service) EnsureAdmin(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.create(ctx, email, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to create admin: %w", err)
		}
		slog.InfoContext(ctx, "admin_created", "user_id", user.ID, "email", email)
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin() {
		return user, nil
	}
	if err := s.SetRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to set admin: %w", err)
	}
	user.Role = models.RoleAdmin
	slog.InfoContext(ctx, "admin_promoted", "user_id", user.ID, "email", email)
	return user, nil
}

func (s *Service) create(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}

	hash, err := placeholderHash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verifiedAt := s.repo.Now()
	user := &models.User{
		Email:           email,
		Name:            models.NameFromEmail(email),
		PasswordHash:    hash,
		Role:            role,
		EmailVerifiedAt: &verifiedAt,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// placeholderHash hashes a random secret nobody knows. No login path checks it.
func placeholderHash() (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rand.Text()), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
