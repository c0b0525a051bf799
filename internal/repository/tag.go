// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"github.com/vinovest/sqlx"
)

// CreateTag inserts a tag and fills in its ID and timestamps.
func (r *Repository) CreateTag(ctx context.Context, tag *models.Tag) error {
	now := r.now()
	tag.CreatedAt = now
	tag.UpdatedAt = now
	if tag.Color == "" {
		tag.Color = models.DefaultTagColor
	}

	res, err := r.ext.ExecContext(ctx,
		`INSERT INTO tags (name, color, is_system, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		tag.Name, tag.Color, tag.IsSystem, tag.UserID, tag.CreatedAt, tag.UpdatedAt)
	if err != nil {
		return wrapError(err)
	}

	tag.ID, err = res.LastInsertId()
	return err
}

// GetTag retrieves a tag by ID.
func (r *Repository) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	if err := sqlx.GetContext(ctx, r.ext, &tag, `SELECT * FROM tags WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &tag, nil
}

// GetTagsByIDs returns the tags with the given IDs. Unknown IDs are skipped.
func (r *Repository) GetTagsByIDs(ctx context.Context, ids []int64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM tags WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}

	var tags []models.Tag
	if err := sqlx.SelectContext(ctx, r.ext, &tags, r.ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	return tags, nil
}

// ListAvailableTags returns system tags and the user's own tags, system tags
// first, then by name.
func (r *Repository) ListAvailableTags(ctx context.Context, userID int64) ([]models.Tag, error) {
	var tags []models.Tag
	err := sqlx.SelectContext(ctx, r.ext, &tags,
		`SELECT * FROM tags WHERE is_system = 1 OR user_id = ? ORDER BY is_system DESC, name`, userID)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ListSystemTags returns all system tags ordered by name.
func (r *Repository) ListSystemTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := sqlx.SelectContext(ctx, r.ext, &tags, `SELECT * FROM tags WHERE is_system = 1 ORDER BY name`); err != nil {
		return nil, err
	}
	return tags, nil
}

// UpdateTag writes name, color and system status.
func (r *Repository) UpdateTag(ctx context.Context, tag *models.Tag) error {
	tag.UpdatedAt = r.now()
	return expectOne(r.ext.ExecContext(ctx,
		`UPDATE tags SET name = ?, color = ?, is_system = ?, user_id = ?, updated_at = ? WHERE id = ?`,
		tag.Name, tag.Color, tag.IsSystem, tag.UserID, tag.UpdatedAt, tag.ID))
}

// DeleteTag deletes a tag; task links cascade.
func (r *Repository) DeleteTag(ctx context.Context, id int64) error {
	return expectOne(r.ext.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id))
}

// CountTags returns the total number of tags.
func (r *Repository) CountTags(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM tags`)
	return count, err
}

// CountSystemTags returns the number of system tags.
func (r *Repository) CountSystemTags(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM tags WHERE is_system = 1`)
	return count, err
}
