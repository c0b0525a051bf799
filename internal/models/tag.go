// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

const DefaultTagColor = "#3B82F6"

// Tag labels tasks. System tags have no owner and are visible to everyone.
type Tag struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	IsSystem  bool      `db:"is_system" json:"is_system"`
	UserID    *int64    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OwnedBy reports whether the tag is a personal tag of userID.
func (t *Tag) OwnedBy(userID int64) bool {
	return t.UserID != nil && *t.UserID == userID
}

// AvailableTo reports whether userID may attach the tag to their tasks.
func (t *Tag) AvailableTo(userID int64) bool {
	return t.IsSystem || t.OwnedBy(userID)
}
