// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/appcontext"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/services/tasks"
	"codeberg.org/oliverandrich/taskboard/internal/templates"
	"github.com/labstack/echo/v4"
)

// TaskHandlers serves the board page and the task JSON API.
type TaskHandlers struct {
	tasks *tasks.Service
	now   func() time.Time
}

func NewTasks(svc *tasks.Service) *TaskHandlers {
	return &TaskHandlers{tasks: svc, now: time.Now}
}

type statusRequest struct {
	Status models.TaskStatus `json:"status" form:"status"`
}

// Board renders the caller's own board.
func (h *TaskHandlers) Board(c echo.Context) error {
	user := appcontext.UserFrom(c)
	if user == nil {
		return echo.ErrUnauthorized
	}

	showCompleted := c.QueryParam("show_completed") == "true"
	board, err := h.tasks.Board(c.Request().Context(), user, user.ID, showCompleted)
	if err != nil {
		return err
	}
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, board)
	}
	return Render(c, http.StatusOK, templates.Board(templates.BoardView{
		Board:         board,
		Own:           true,
		Path:          "/board",
		ShowCompleted: showCompleted,
		Now:           h.now(),
	}))
}

func (h *TaskHandlers) List(c echo.Context) error {
	var params tasks.ListParams
	if err := bind(c, &params); err != nil {
		return err
	}
	list, err := h.tasks.List(c.Request().Context(), appcontext.UserFrom(c), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *TaskHandlers) Create(c echo.Context) error {
	var in tasks.CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	task, err := h.tasks.Create(c.Request().Context(), appcontext.UserFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandlers) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.Get(c.Request().Context(), appcontext.UserFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in tasks.UpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	task, err := h.tasks.Update(c.Request().Context(), appcontext.UserFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateStatus moves a task to another column.
func (h *TaskHandlers) UpdateStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.UpdateStatus(c.Request().Context(), appcontext.UserFrom(c), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) ToggleHidden(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.ToggleHidden(c.Request().Context(), appcontext.UserFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.tasks.Delete(c.Request().Context(), appcontext.UserFrom(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
