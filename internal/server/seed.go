// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"codeberg.org/oliverandrich/taskboard/internal/database"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/services/auth"
	"codeberg.org/oliverandrich/taskboard/internal/services/tags"
	"github.com/urfave/cli/v3"
)

// Seed creates the configured admin and the default system tags. Running it
// twice changes nothing.
func Seed(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log, cmd.Root().Version)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	return SeedRepository(ctx, repository.New(db), cfg.Admin.Email)
}

// SeedRepository does the work of Seed on an open repository.
func SeedRepository(ctx context.Context, repo *repository.Repository, adminEmail string) error {
	if adminEmail != "" {
		admin, err := auth.NewService(repo).EnsureAdmin(ctx, adminEmail)
		if err != nil {
			return fmt.Errorf("failed to ensure admin: %w", err)
		}
		slog.InfoContext(ctx, "seed_admin", "user_id", admin.ID, "email", admin.Email)
	}

	n, err := tags.NewService(repo, nil).SeedSystemTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed system tags: %w", err)
	}
	slog.InfoContext(ctx, "seed_done", "system_tags_created", n)
	return nil
}
