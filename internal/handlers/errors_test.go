// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/handlers"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/services/passcode"
	"codeberg.org/oliverandrich/taskboard/internal/services/tags"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid code", passcode.ErrInvalidCode, http.StatusUnprocessableEntity},
		{"validation", validate.Field("title", "is required"), http.StatusUnprocessableEntity},
		{"invalid email", fmt.Errorf("%w: %w", passcode.ErrInvalidEmail, validate.Field("email", "bad")), http.StatusUnprocessableEntity},
		{"unauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("task 3: %w", auth.ErrForbidden), http.StatusForbidden},
		{"self action", auth.ErrSelfAction, http.StatusForbidden},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"rate limited", passcode.ErrRateLimited, http.StatusTooManyRequests},
		{"not system tag", tags.ErrNotSystemTag, http.StatusBadRequest},
		{"echo error", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := handlers.Classify(tt.err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestClassify_HidesDetails(t *testing.T) {
	_, body := handlers.Classify(errors.New("sql: connection refused"))
	assert.Equal(t, "internal server error", body.Message)

	_, body = handlers.Classify(passcode.ErrInvalidCode)
	assert.Equal(t, map[string]string{"code": handlers.InvalidCodeMessage}, body.Errors)
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"":                          "",
		"/board":                    "/board",
		"/board?show_completed=1":   "/board?show_completed=1",
		"board":                     "",
		"//evil.example.com":        "",
		`/\evil.example.com`:        "",
		"https://evil.example.com/": "",
	}

	for in, want := range tests {
		assert.Equal(t, want, handlers.LocalPath(in), in)
	}
}

func TestNotFoundPage(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.get("/nowhere", false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "404")

	resp = b.get("/nowhere", true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", decode[handlers.ErrorResponse](t, resp).Message)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.get("/health", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)

	anon := env.browser(t)
	resp := anon.get("/", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	user := env.login(t, "alice@example.com")
	resp = user.get("/", false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/board", resp.Header.Get("Location"))
}
