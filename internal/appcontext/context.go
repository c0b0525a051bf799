// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/htmx"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/services/session"
	"github.com/labstack/echo/v4"
)

// Assets holds paths to static assets.
type Assets struct {
	CSSPath string
	JSPath  string
}

// Context is a custom Echo context with typed fields for htmx, assets and
// the logged-in user.
type Context struct {
	echo.Context
	Htmx    *htmx.Request
	Assets  *Assets
	User    *models.User  // nil if not authenticated
	Session *session.Data // nil if not authenticated
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// UserFrom returns the user of any echo context. It prefers the custom
// context and falls back to the request context.
func UserFrom(c echo.Context) *models.User {
	if cc, ok := c.(*Context); ok && cc.User != nil {
		return cc.User
	}
	return auth.GetUser(c.Request().Context())
}

// SessionFrom returns the session of the request, or nil.
func SessionFrom(c echo.Context) *session.Data {
	if cc, ok := c.(*Context); ok {
		return cc.Session
	}
	return nil
}
