// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package users implements the admin side of account management.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
)

var ErrEmailTaken = errors.New("email already taken")

// Stats are the counters on the admin dashboard.
type Stats struct {
	TotalUsers   int64 `json:"total_users"`
	TotalTasks   int64 `json:"total_tasks"`
	TotalTags    int64 `json:"total_tags"`
	AdminUsers   int64 `json:"admin_users"`
	RegularUsers int64 `json:"regular_users"`
}

// UpdateInput is a partial profile update; nil fields stay unchanged.
type UpdateInput struct {
	Name     *string      `json:"name"`
	FullName *string      `json:"full_name"`
	Email    *string      `json:"email"`
	Phone    *string      `json:"phone"`
	Role     *models.Role `json:"role"`
}

type profileFields struct {
	Name     string      `json:"name" validate:"max=255"`
	FullName string      `json:"full_name" validate:"max=255"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Phone    string      `json:"phone" validate:"max=20"`
	Role     models.Role `json:"role" validate:"required,role"`
}

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Stats(ctx context.Context, actor *models.User) (*Stats, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		stats Stats
		err   error
	)
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalTasks, err = s.repo.CountTasks(ctx); err != nil {
		return nil, err
	}
	if stats.TotalTags, err = s.repo.CountTags(ctx); err != nil {
		return nil, err
	}
	if stats.AdminUsers, err = s.repo.CountUsersByRole(ctx, models.RoleAdmin); err != nil {
		return nil, err
	}
	if stats.RegularUsers, err = s.repo.CountUsersByRole(ctx, models.RoleUser); err != nil {
		return nil, err
	}
	return &stats, nil
}

// List returns every user with their task count, newest first.
func (s *Service) List(ctx context.Context, actor *models.User) ([]models.UserWithTaskCount, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListUsersWithTaskCounts(ctx)
}

func (s *Service) Get(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

// Update edits a user's profile and role. Email addresses stay unique.
func (s *Service) Update(ctx context.Context, actor *models.User, id int64, in UpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}

	err = validate.Struct(profileFields{
		Name:     user.Name,
		FullName: user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     user.Role,
	})
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTaken(ctx, user.Email, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %w", ErrEmailTaken, validate.Field("email", "has already been taken"))
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %w", ErrEmailTaken, validate.Field("email", "has already been taken"))
		}
		return nil, err
	}

	slog.InfoContext(ctx, "user_updated", "user_id", user.ID, "by", actor.ID)
	return user, nil
}

// Delete removes a user with all their tasks and personal tags. Admins
// cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := auth.CheckUserDeletion(actor, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user_deleted", "user_id", id, "by", actor.ID)
	return nil
}
