// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package htmx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/htmx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_HtmxRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://localhost/board")
	req.Header.Set("HX-Target", "board")
	req.Header.Set("HX-Trigger", "task-42")

	parsed := htmx.ParseRequest(req)

	assert.True(t, parsed.IsHtmx)
	assert.Equal(t, "http://localhost/board", parsed.CurrentURL)
	assert.Equal(t, "board", parsed.Target)
	assert.Equal(t, "task-42", parsed.Trigger)
}

func TestParseRequest_NonHtmxRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "false")

	assert.False(t, htmx.ParseRequest(req).IsHtmx)
}

func TestRedirect(t *testing.T) {
	e := echo.New()

	t.Run("browser", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)

		require.NoError(t, htmx.Redirect(c, "/login"))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("script", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, htmx.Redirect(c, "/login"))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
		assert.Empty(t, rec.Header().Get("Location"))
	})
}

func TestTrigger(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	htmx.Trigger(c, "board-updated")

	assert.Equal(t, "board-updated", rec.Header().Get("HX-Trigger"))
}
