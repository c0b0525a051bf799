// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vinovest/sqlx"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)

// Repository runs the application's SQL against a database or a transaction.
type Repository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	now func() time.Time
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{
		db:  db,
		ext: db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// DB returns the underlying connection pool.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// WithClock returns a copy of the repository that stamps created_at and
// updated_at using now.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	return &Repository{
		db:  r.db,
		ext: r.ext,
		now: func() time.Time { return now().UTC() },
	}
}

// Now returns the repository clock's current time in UTC.
func (r *Repository) Now() time.Time {
	return r.now()
}

// InTx runs fn inside a transaction. Calls nested in an existing transaction
// reuse it.
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	if _, ok := r.ext.(*sqlx.Tx); ok {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Repository{db: r.db, ext: tx, now: r.now}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// expectOne turns a zero-row write into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
