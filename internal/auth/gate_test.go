// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"github.com/stretchr/testify/assert"
)

var (
	alice = &models.User{ID: 1, Role: models.RoleUser}
	bob   = &models.User{ID: 2, Role: models.RoleUser}
	admin = &models.User{ID: 3, Role: models.RoleAdmin}
)

func TestCanAccessTask(t *testing.T) {
	task := &models.Task{ID: 10, UserID: alice.ID}

	assert.NoError(t, auth.CanAccessTask(alice, task))
	assert.NoError(t, auth.CanAccessTask(admin, task))
	assert.ErrorIs(t, auth.CanAccessTask(bob, task), auth.ErrForbidden)
	assert.ErrorIs(t, auth.CanAccessTask(nil, task), auth.ErrUnauthenticated)
}

func TestCanAccessTask_RoleChangeTakesEffect(t *testing.T) {
	task := &models.Task{ID: 10, UserID: alice.ID}
	demoted := &models.User{ID: admin.ID, Role: models.RoleAdmin}

	assert.NoError(t, auth.CanAccessTask(demoted, task))

	demoted.Role = models.RoleUser
	assert.ErrorIs(t, auth.CanAccessTask(demoted, task), auth.ErrForbidden)
}

func TestCanCreateTag(t *testing.T) {
	assert.NoError(t, auth.CanCreateTag(alice, false))
	assert.ErrorIs(t, auth.CanCreateTag(alice, true), auth.ErrForbidden)
	assert.NoError(t, auth.CanCreateTag(admin, true))
	assert.ErrorIs(t, auth.CanCreateTag(nil, false), auth.ErrUnauthenticated)
}

func TestCanModifyTag(t *testing.T) {
	alicesTag := &models.Tag{ID: 1, UserID: &alice.ID}
	systemTag := &models.Tag{ID: 2, IsSystem: true}

	tests := []struct {
		name  string
		actor *models.User
		tag   *models.Tag
		want  error
	}{
		{"owner edits own tag", alice, alicesTag, nil},
		{"other user is denied", bob, alicesTag, auth.ErrForbidden},
		{"admin is denied on personal endpoint", admin, alicesTag, auth.ErrForbidden},
		{"system tag is never personal", alice, systemTag, auth.ErrForbidden},
		{"admin cannot use personal endpoint for system tag", admin, systemTag, auth.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.CanModifyTag(tt.actor, tt.tag)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, auth.RequireAdmin(admin))
	assert.ErrorIs(t, auth.RequireAdmin(alice), auth.ErrForbidden)
	assert.ErrorIs(t, auth.RequireAdmin(nil), auth.ErrUnauthenticated)
}

func TestCanViewBoard(t *testing.T) {
	assert.NoError(t, auth.CanViewBoard(alice, alice.ID))
	assert.NoError(t, auth.CanViewBoard(admin, alice.ID))
	assert.ErrorIs(t, auth.CanViewBoard(bob, alice.ID), auth.ErrForbidden)
}

func TestCheckUserDeletion(t *testing.T) {
	assert.NoError(t, auth.CheckUserDeletion(admin, alice.ID))
	assert.ErrorIs(t, auth.CheckUserDeletion(admin, admin.ID), auth.ErrSelfAction)
	assert.ErrorIs(t, auth.CheckUserDeletion(alice, bob.ID), auth.ErrForbidden)
}

func TestContextUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, auth.GetUser(ctx))
	assert.False(t, auth.IsAuthenticated(ctx))

	ctx = auth.WithUser(ctx, alice)
	assert.Same(t, alice, auth.GetUser(ctx))
	assert.True(t, auth.IsAuthenticated(ctx))
}
