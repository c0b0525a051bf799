// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware holds the echo middleware that knows about sessions
// and users.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"codeberg.org/oliverandrich/taskboard/internal/appcontext"
	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/handlers"
	"codeberg.org/oliverandrich/taskboard/internal/htmx"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/services/session"
	"codeberg.org/oliverandrich/taskboard/internal/templates"
	"github.com/labstack/echo/v4"
)

// UserLoader is an interface for loading full user data
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// LoadUser resolves the session cookie to the stored user. The role always
// comes from the database, so demotions apply on the next request. Sessions
// of deleted users are cleared.
func LoadUser(sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := users.GetUserByID(ctx, data.UserID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				c.SetCookie(sessions.Clear())
				return next(c)
			case err != nil:
				return err
			}

			c.SetRequest(c.Request().WithContext(auth.WithUser(ctx, user)))
			if cc, ok := c.(*appcontext.Context); ok {
				cc.User = user
				cc.Session = data
			}
			slog.DebugContext(ctx, "session_loaded", "user_id", user.ID, "session", data.ID)
			return next(c)
		}
	}
}

// Flash moves a pending flash message from its cookie into the request
// context for the layout.
func Flash(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if f := sessions.PopFlash(c.Response(), c.Request()); f != nil {
				ctx := templates.WithFlash(c.Request().Context(), f)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// RequireAuth sends anonymous browsers to the login page and remembers where
// they were going. API clients get a 401.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if appcontext.UserFrom(c) != nil {
			return next(c)
		}
		if handlers.WantsJSON(c) {
			return auth.ErrUnauthenticated
		}
		return htmx.Redirect(c, "/login?next="+url.QueryEscape(c.Request().URL.RequestURI()))
	}
}

// RequireAdmin ensures the user is an admin.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := auth.RequireAdmin(appcontext.UserFrom(c)); err != nil {
			return err
		}
		return next(c)
	}
}
