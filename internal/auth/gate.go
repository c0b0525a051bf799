// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"errors"

	"codeberg.org/oliverandrich/taskboard/internal/models"
)

var (
	// ErrUnauthenticated means no user is logged in.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is a blanket denial. It never says whether the resource exists.
	ErrForbidden = errors.New("forbidden")
	// ErrSelfAction is returned when an admin targets their own account with a
	// destructive action.
	ErrSelfAction = errors.New("cannot perform this action on your own account")
)

// Every check reads the actor's role as currently stored and the resource's
// stored ownership. Nothing is cached between requests.

func RequireUser(actor *models.User) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin guards admin-only resources: system tags, the user list and
// other users' boards.
func RequireAdmin(actor *models.User) error {
	if err := RequireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanAccessTask allows admins and the task owner to view, update and delete.
func CanAccessTask(actor *models.User, task *models.Task) error {
	if err := RequireUser(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || task.UserID == actor.ID {
		return nil
	}
	return ErrForbidden
}

// CanCreateTag allows everyone to create personal tags and only admins to
// create system tags.
func CanCreateTag(actor *models.User, system bool) error {
	if system {
		return RequireAdmin(actor)
	}
	return RequireUser(actor)
}

// CanModifyTag guards the personal tag endpoints: only non-system tags owned
// by the actor. Admins manage system tags through RequireAdmin instead.
func CanModifyTag(actor *models.User, tag *models.Tag) error {
	if err := RequireUser(actor); err != nil {
		return err
	}
	if tag.IsSystem || !tag.OwnedBy(actor.ID) {
		return ErrForbidden
	}
	return nil
}

// CanViewBoard allows users to see their own board and admins to see any.
func CanViewBoard(actor *models.User, ownerID int64) error {
	if err := RequireUser(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || actor.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// CheckUserDeletion allows admins to delete any account except their own.
func CheckUserDeletion(actor *models.User, targetID int64) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == targetID {
		return ErrSelfAction
	}
	return nil
}
