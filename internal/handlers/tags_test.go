// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagAPI(t *testing.T) {
	env := newTestEnv(t)
	system := testutil.NewTestTag(t, env.app.Repo, 0, "Urgent")
	b := env.login(t, "alice@example.com")

	resp := b.json(http.MethodPost, "/tags", map[string]string{"name": "Home"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tag := decode[models.Tag](t, resp)
	assert.Equal(t, models.DefaultTagColor, tag.Color)
	assert.False(t, tag.IsSystem)

	resp = b.json(http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Tag](t, resp), 2)

	resp = b.json(http.MethodPatch, "/tags/"+strconv.FormatInt(tag.ID, 10), map[string]string{"color": "#10B981"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "#10B981", decode[models.Tag](t, resp).Color)

	resp = b.json(http.MethodPatch, "/tags/"+strconv.FormatInt(tag.ID, 10), map[string]string{"color": "red"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = b.json(http.MethodDelete, "/tags/"+strconv.FormatInt(system.ID, 10), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = b.json(http.MethodDelete, "/tags/"+strconv.FormatInt(tag.ID, 10), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestTagAPI_SystemFlagRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	b := env.login(t, "alice@example.com")

	resp := b.json(http.MethodPost, "/tags", map[string]any{"name": "Sneaky", "is_system": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = b.json(http.MethodPost, "/tags", map[string]any{"name": "Home"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tag := decode[models.Tag](t, resp)

	resp = b.json(http.MethodPatch, "/tags/"+strconv.FormatInt(tag.ID, 10), map[string]any{"is_system": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	stored, err := env.app.Repo.GetTag(context.Background(), tag.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSystem)
	system, err := env.app.Repo.ListSystemTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, system)
}

func TestSystemTagAPI(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.NewTestUser(t, env.app.Repo, "admin@example.com", models.RoleAdmin)
	member := testutil.NewTestUser(t, env.app.Repo, "member@example.com", models.RoleUser)
	personal := testutil.NewTestTag(t, env.app.Repo, member.ID, "Mine")
	b := env.login(t, admin.Email)

	resp := b.json(http.MethodPost, "/admin/tags/system", map[string]string{"name": "Blocked", "color": "#EF4444"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tag := decode[models.Tag](t, resp)
	assert.True(t, tag.IsSystem)

	resp = b.json(http.MethodGet, "/admin/tags/system", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Tag](t, resp), 1)

	resp = b.json(http.MethodDelete, "/admin/tags/system/"+strconv.FormatInt(personal.ID, 10), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = b.get("/admin/tags", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Blocked")

	resp = b.json(http.MethodDelete, "/admin/tags/system/"+strconv.FormatInt(tag.ID, 10), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
