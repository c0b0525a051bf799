// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"github.com/vinovest/sqlx"
)

// ErrPasscodeConsumed is returned when a passcode was redeemed concurrently.
var ErrPasscodeConsumed = errors.New("passcode already consumed")

// CreatePasscode stores a freshly issued passcode. CreatedAt and ExpiresAt
// are set by the caller.
func (r *Repository) CreatePasscode(ctx context.Context, p *models.Passcode) error {
	res, err := r.ext.ExecContext(ctx,
		`INSERT INTO passcodes (email, code, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		p.Email, p.Code, p.ExpiresAt.UTC(), p.CreatedAt.UTC())
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// FindUnusedPasscodes returns every unconsumed passcode for email and code,
// most recently issued first. Expiry is left to the caller.
func (r *Repository) FindUnusedPasscodes(ctx context.Context, email, code string) ([]models.Passcode, error) {
	var codes []models.Passcode
	err := sqlx.SelectContext(ctx, r.ext, &codes,
		`SELECT * FROM passcodes
		 WHERE email = ? AND code = ? AND used_at IS NULL
		 ORDER BY created_at DESC, id DESC`,
		email, code)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// ConsumePasscode marks a passcode as used. Only the first caller succeeds;
// later calls get ErrPasscodeConsumed.
func (r *Repository) ConsumePasscode(ctx context.Context, id int64, usedAt time.Time) error {
	err := expectOne(r.ext.ExecContext(ctx,
		`UPDATE passcodes SET used_at = ? WHERE id = ? AND used_at IS NULL`, usedAt.UTC(), id))
	if errors.Is(err, ErrNotFound) {
		return ErrPasscodeConsumed
	}
	return err
}
