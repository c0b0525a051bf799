// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"github.com/vinovest/sqlx"
)

// CreateUser inserts a user and fills in its ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	res, err := r.ext.ExecContext(ctx,
		`INSERT INTO users (email, name, full_name, phone, password_hash, role, email_verified_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.Name, user.FullName, user.Phone, user.PasswordHash, user.Role,
		user.EmailVerifiedAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return wrapError(err)
	}

	user.ID, err = res.LastInsertId()
	return err
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := sqlx.GetContext(ctx, r.ext, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := sqlx.GetContext(ctx, r.ext, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateUser writes the editable profile fields and role.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = r.now()
	return expectOne(r.ext.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, full_name = ?, phone = ?, role = ?, updated_at = ? WHERE id = ?`,
		user.Email, user.Name, user.FullName, user.Phone, user.Role, user.UpdatedAt, user.ID))
}

// SetUserRole changes the role of a user.
func (r *Repository) SetUserRole(ctx context.Context, id int64, role models.Role) error {
	return expectOne(r.ext.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, role, r.now(), id))
}

// DeleteUser deletes a user. Tasks and personal tags cascade.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return expectOne(r.ext.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

// ListUsersWithTaskCounts returns all users, newest first, with the number
// of tasks each one owns.
func (r *Repository) ListUsersWithTaskCounts(ctx context.Context) ([]models.UserWithTaskCount, error) {
	var users []models.UserWithTaskCount
	err := sqlx.SelectContext(ctx, r.ext, &users,
		`SELECT u.*, (SELECT COUNT(*) FROM tasks t WHERE t.user_id = u.id) AS task_count
		 FROM users u
		 ORDER BY u.created_at DESC, u.id DESC`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// CountUsersByRole returns the number of users holding role.
func (r *Repository) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM users WHERE role = ?`, role)
	return count, err
}

// EmailTaken reports whether another user than exceptID already uses email.
func (r *Repository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.ext, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id != ?)`, email, exceptID)
	return exists, err
}
