// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth holds the authenticated user in request contexts and decides
// what that user may do.
package auth

import (
	"context"

	"codeberg.org/oliverandrich/taskboard/internal/ctxkeys"
	"codeberg.org/oliverandrich/taskboard/internal/models"
)

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxkeys.User{}, user)
}

// GetUser returns the authenticated user from the context, or nil if not authenticated.
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(ctxkeys.User{}).(*models.User); ok {
		return user
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}
