// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers. Handlers return errors and
// leave the status mapping to HTTPErrorHandler.
package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/taskboard/internal/appcontext"
	"codeberg.org/oliverandrich/taskboard/internal/htmx"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/templates"
	"github.com/labstack/echo/v4"
)

// Handlers contains the public pages.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Health reports whether the database answers.
func (h *Handlers) Health(c echo.Context) error {
	if err := h.repo.DB().PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the welcome page, or sends logged-in users to their board.
func (h *Handlers) Home(c echo.Context) error {
	if appcontext.UserFrom(c) != nil {
		return htmx.Redirect(c, "/board")
	}
	return Render(c, http.StatusOK, templates.Welcome())
}
