// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPasscode(email, code string, issued time.Time) *models.Passcode {
	return &models.Passcode{
		Email:     email,
		Code:      code,
		CreatedAt: issued,
		ExpiresAt: issued.Add(10 * time.Minute),
	}
}

func TestCreatePasscode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	p := newPasscode("alice@example.com", "042817", issued)
	require.NoError(t, repo.CreatePasscode(ctx, p))
	assert.NotZero(t, p.ID)

	stored := testutil.GetPasscode(t, repo, p.ID)
	assert.Equal(t, "042817", stored.Code)
	assert.Nil(t, stored.UsedAt)
	assert.True(t, issued.Add(10*time.Minute).Equal(stored.ExpiresAt))
}

func TestFindUnusedPasscodes_NewestFirst(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	older := newPasscode("alice@example.com", "111111", issued)
	newer := newPasscode("alice@example.com", "111111", issued.Add(time.Minute))
	other := newPasscode("alice@example.com", "222222", issued)
	foreign := newPasscode("bob@example.com", "111111", issued)
	for _, p := range []*models.Passcode{older, newer, other, foreign} {
		require.NoError(t, repo.CreatePasscode(ctx, p))
	}

	codes, err := repo.FindUnusedPasscodes(ctx, "alice@example.com", "111111")

	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, newer.ID, codes[0].ID)
	assert.Equal(t, older.ID, codes[1].ID)
}

func TestFindUnusedPasscodes_SkipsConsumed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	p := newPasscode("alice@example.com", "333333", issued)
	require.NoError(t, repo.CreatePasscode(ctx, p))

	require.NoError(t, repo.ConsumePasscode(ctx, p.ID, issued.Add(time.Minute)))

	codes, err := repo.FindUnusedPasscodes(ctx, "alice@example.com", "333333")
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestConsumePasscode_OnlyOnce(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	p := newPasscode("alice@example.com", "444444", issued)
	require.NoError(t, repo.CreatePasscode(ctx, p))

	require.NoError(t, repo.ConsumePasscode(ctx, p.ID, issued.Add(time.Minute)))
	err := repo.ConsumePasscode(ctx, p.ID, issued.Add(2*time.Minute))

	assert.ErrorIs(t, err, repository.ErrPasscodeConsumed)
	stored := testutil.GetPasscode(t, repo, p.ID)
	require.NotNil(t, stored.UsedAt)
	assert.True(t, issued.Add(time.Minute).Equal(*stored.UsedAt))
}

func TestCreatePasscode_KeepsHistory(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreatePasscode(ctx, newPasscode("alice@example.com", "000001", issued)))
	require.NoError(t, repo.CreatePasscode(ctx, newPasscode("alice@example.com", "000002", issued.Add(time.Second))))

	latest := testutil.LatestPasscode(t, repo, "alice@example.com")
	assert.Equal(t, "000002", latest.Code)
	assert.Equal(t, int64(2), testutil.CountPasscodes(t, repo, "alice@example.com"))
	assert.Zero(t, testutil.CountPasscodes(t, repo, "bob@example.com"))
}
