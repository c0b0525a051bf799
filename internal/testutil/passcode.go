// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package testutil

import (
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"github.com/stretchr/testify/require"
)

// GetPasscode loads a stored passcode by ID.
func GetPasscode(t *testing.T, repo *repository.Repository, id int64) *models.Passcode {
	t.Helper()
	var p models.Passcode
	require.NoError(t, repo.DB().Get(&p, `SELECT * FROM passcodes WHERE id = ?`, id))
	return &p
}

// LatestPasscode loads the most recently issued passcode for email.
func LatestPasscode(t *testing.T, repo *repository.Repository, email string) *models.Passcode {
	t.Helper()
	var p models.Passcode
	require.NoError(t, repo.DB().Get(&p,
		`SELECT * FROM passcodes WHERE email = ? ORDER BY created_at DESC, id DESC LIMIT 1`, email))
	return &p
}

// CountPasscodes counts every passcode ever issued for email.
func CountPasscodes(t *testing.T, repo *repository.Repository, email string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, repo.DB().Get(&count, `SELECT COUNT(*) FROM passcodes WHERE email = ?`, email))
	return count
}
