// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/taskboard/internal/appcontext"
	"codeberg.org/oliverandrich/taskboard/internal/services/tags"
	"github.com/labstack/echo/v4"
)

// TagHandlers serves the personal tag API.
type TagHandlers struct {
	tags *tags.Service
}

func NewTags(svc *tags.Service) *TagHandlers {
	return &TagHandlers{tags: svc}
}

// List returns system tags followed by the caller's own tags.
func (h *TagHandlers) List(c echo.Context) error {
	list, err := h.tags.ListAvailable(c.Request().Context(), appcontext.UserFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *TagHandlers) Create(c echo.Context) error {
	var in tags.Input
	if err := bind(c, &in); err != nil {
		return err
	}
	tag, err := h.tags.Create(c.Request().Context(), appcontext.UserFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandlers) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var p tags.Patch
	if err := bind(c, &p); err != nil {
		return err
	}
	tag, err := h.tags.Update(c.Request().Context(), appcontext.UserFrom(c), id, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

func (h *TagHandlers) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.tags.Delete(c.Request().Context(), appcontext.UserFrom(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
