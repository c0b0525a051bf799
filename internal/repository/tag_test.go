// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag_DefaultColor(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)

	tag := &models.Tag{Name: "errand", UserID: &user.ID}
	require.NoError(t, repo.CreateTag(context.Background(), tag))

	stored, err := repo.GetTag(context.Background(), tag.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTagColor, stored.Color)
	assert.False(t, stored.IsSystem)
	assert.True(t, stored.OwnedBy(user.ID))
}

func TestListAvailableTags(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	bob := testutil.NewTestUser(t, repo, "bob@example.com", models.RoleUser)
	testutil.NewTestTag(t, repo, 0, "Urgent")
	testutil.NewTestTag(t, repo, 0, "Bug")
	testutil.NewTestTag(t, repo, alice.ID, "alpha")
	testutil.NewTestTag(t, repo, bob.ID, "bobs")

	tags, err := repo.ListAvailableTags(ctx, alice.ID)

	require.NoError(t, err)
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"Bug", "Urgent", "alpha"}, names)
}

func TestListSystemTags(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	testutil.NewTestTag(t, repo, 0, "Urgent")
	testutil.NewTestTag(t, repo, user.ID, "mine")

	tags, err := repo.ListSystemTags(context.Background())

	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Urgent", tags[0].Name)
}

func TestGetTagsByIDs(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	a := testutil.NewTestTag(t, repo, 0, "a")
	b := testutil.NewTestTag(t, repo, 0, "b")

	tags, err := repo.GetTagsByIDs(context.Background(), []int64{b.ID, a.ID, 999})

	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, a.ID, tags[0].ID)

	tags, err = repo.GetTagsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestUpdateAndDeleteTag(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	tag := testutil.NewTestTag(t, repo, 0, "Docs")

	tag.Name = "Documentation"
	tag.Color = "#10B981"
	require.NoError(t, repo.UpdateTag(ctx, tag))

	stored, err := repo.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Documentation", stored.Name)
	assert.Equal(t, "#10B981", stored.Color)

	require.NoError(t, repo.DeleteTag(ctx, tag.ID))
	_, err = repo.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCountTags(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	testutil.NewTestTag(t, repo, 0, "Urgent")
	testutil.NewTestTag(t, repo, user.ID, "mine")

	total, err := repo.CountTags(context.Background())
	require.NoError(t, err)
	system, err := repo.CountSystemTags(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), system)
}
