// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package tags manages personal and system tags.
package tags

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

// ErrNotSystemTag is returned when a system tag endpoint targets a personal tag.
var ErrNotSystemTag = errors.New("not a system tag")

// DefaultSystemTags are created by SeedSystemTags.
var DefaultSystemTags = []models.Tag{
	{Name: "Urgent", Color: "#EF4444"},
	{Name: "Bug", Color: "#DC2626"},
	{Name: "Feature", Color: "#3B82F6"},
	{Name: "Enhancement", Color: "#8B5CF6"},
	{Name: "Documentation", Color: "#10B981"},
	{Name: "Design", Color: "#F59E0B"},
	{Name: "Testing", Color: "#6366F1"},
	{Name: "Research", Color: "#EC4899"},
}

// Notifier is told when the shared system tags change.
type Notifier interface {
	TagsChanged()
}

type Input struct {
	Name     string `json:"name" form:"name"`
	Color    string `json:"color" form:"color"`
	IsSystem bool   `json:"is_system" form:"is_system"`
}

// Patch is a partial update; nil fields stay unchanged.
// IsSystem promotes a personal tag to a system tag.
type Patch struct {
	Name     *string `json:"name" form:"name"`
	Color    *string `json:"color" form:"color"`
	IsSystem bool    `json:"is_system" form:"is_system"`
}

type tagFields struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,tagcolor"`
}

type Service struct {
	repo   *repository.Repository
	notify Notifier
}

// NewService creates the tag service. notifier may be nil.
func NewService(repo *repository.Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notify: notifier}
}

// ListAvailable returns system tags followed by the actor's own tags.
func (s *Service) ListAvailable(ctx context.Context, actor *models.User) ([]models.Tag, error) {
	if err := auth.RequireUser(actor); err != nil {
		return nil, err
	}
	return s.repo.ListAvailableTags(ctx, actor.ID)
}

// Create adds a personal tag owned by the actor, or a system tag when
// in.IsSystem is set and the actor is an admin.
func (s *Service) Create(ctx context.Context, actor *models.User, in Input) (*models.Tag, error) {
	if err := auth.CanCreateTag(actor, in.IsSystem); err != nil {
		return nil, err
	}
	if in.IsSystem {
		return s.CreateSystem(ctx, actor, in)
	}
	tag := &models.Tag{UserID: &actor.ID}
	if err := s.create(ctx, tag, in); err != nil {
		return nil, err
	}
	return tag, nil
}

// Update changes a personal tag of the actor.
func (s *Service) Update(ctx context.Context, actor *models.User, id int64, p Patch) (*models.Tag, error) {
	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanModifyTag(actor, tag); err != nil {
		return nil, err
	}
	if p.IsSystem {
		if err := auth.RequireAdmin(actor); err != nil {
			return nil, err
		}
		tag.IsSystem = true
		tag.UserID = nil
	}
	if err := s.update(ctx, tag, p); err != nil {
		return nil, err
	}
	if tag.IsSystem {
		s.changed()
	}
	return tag, nil
}

// Delete removes a personal tag of the actor.
func (s *Service) Delete(ctx context.Context, actor *models.User, id int64) error {
	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanModifyTag(actor, tag); err != nil {
		return err
	}
	return s.repo.DeleteTag(ctx, tag.ID)
}

func (s *Service) ListSystem(ctx context.Context, actor *models.User) ([]models.Tag, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListSystemTags(ctx)
}

func (s *Service) CreateSystem(ctx context.Context, actor *models.User, in Input) (*models.Tag, error) {
	if err := auth.CanCreateTag(actor, true); err != nil {
		return nil, err
	}
	tag := &models.Tag{IsSystem: true}
	if err := s.create(ctx, tag, in); err != nil {
		return nil, err
	}
	s.changed()
	return tag, nil
}

func (s *Service) UpdateSystem(ctx context.Context, actor *models.User, id int64, p Patch) (*models.Tag, error) {
	tag, err := s.systemTag(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.update(ctx, tag, p); err != nil {
		return nil, err
	}
	s.changed()
	return tag, nil
}

func (s *Service) DeleteSystem(ctx context.Context, actor *models.User, id int64) error {
	tag, err := s.systemTag(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTag(ctx, tag.ID); err != nil {
		return err
	}
	s.changed()
	return nil
}

// SeedSystemTags creates DefaultSystemTags unless system tags already exist.
// It returns the number of tags created.
func (s *Service) SeedSystemTags(ctx context.Context) (int, error) {
	existing, err := s.repo.CountSystemTags(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		for _, def := range DefaultSystemTags {
			tag := def
			tag.IsSystem = true
			if err := tx.CreateTag(ctx, &tag); err != nil {
				return fmt.Errorf("failed to create tag %q: %w", def.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "system_tags_seeded", "count", len(DefaultSystemTags))
	return len(DefaultSystemTags), nil
}

func (s *Service) systemTag(ctx context.Context, actor *models.User, id int64) (*models.Tag, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tag.IsSystem {
		return nil, ErrNotSystemTag
	}
	return tag, nil
}

func (s *Service) create(ctx context.Context, tag *models.Tag, in Input) error {
	tag.Name = strings.TrimSpace(in.Name)
	tag.Color = strings.TrimSpace(in.Color)
	if tag.Color == "" {
		tag.Color = models.DefaultTagColor
	}
	if err := validate.Struct(tagFields{Name: tag.Name, Color: tag.Color}); err != nil {
		return err
	}
	return s.repo.CreateTag(ctx, tag)
}

func (s *Service) update(ctx context.Context, tag *models.Tag, p Patch) error {
	if p.Name != nil {
		tag.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		tag.Color = strings.TrimSpace(*p.Color)
	}
	if err := validate.Struct(tagFields{Name: tag.Name, Color: tag.Color}); err != nil {
		return err
	}
	return s.repo.UpdateTag(ctx, tag)
}

func (s *Service) changed() {
	if s.notify != nil {
		s.notify.TagsChanged()
	}
}
