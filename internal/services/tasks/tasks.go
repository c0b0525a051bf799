// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package tasks implements task CRUD and the three-column board.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
	"github.com/samber/lo"
)

// Board change actions reported to the Notifier.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notifier is told about every change to a user's tasks.
type Notifier interface {
	BoardChanged(userID int64, action string, taskID int64)
}

type ListParams struct {
	Status        string `query:"status" validate:"omitempty,taskstatus"`
	ShowCompleted bool   `query:"show_completed"`
}

type CreateInput struct {
	Title       string            `json:"title" form:"title"`
	Description string            `json:"description" form:"description"`
	DueDate     string            `json:"due_date" form:"due_date"`
	Status      models.TaskStatus `json:"status" form:"status"`
	TagIDs      []int64           `json:"tag_ids" form:"tag_ids"`
}

// UpdateInput is a partial update. Nil fields are left unchanged, an empty
// DueDate clears the date and a non-nil TagIDs replaces the tag set.
type UpdateInput struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	DueDate     *string            `json:"due_date"`
	Status      *models.TaskStatus `json:"status"`
	IsHidden    *bool              `json:"is_hidden"`
	TagIDs      *[]int64           `json:"tag_ids"`
}

type Column struct {
	Status models.TaskStatus `json:"status"`
	Tasks  []models.Task     `json:"tasks"`
}

type Board struct {
	Owner   *models.User `json:"owner"`
	Columns []Column     `json:"columns"`
	Tags    []models.Tag `json:"tags"`
}

// Column returns the column for status.
func (b *Board) Column(status models.TaskStatus) Column {
	col, _ := lo.Find(b.Columns, func(c Column) bool { return c.Status == status })
	return col
}

// taskFields holds the validated shape of a task after input is applied.
type taskFields struct {
	Title  string            `json:"title" validate:"required,max=255"`
	Status models.TaskStatus `json:"status" validate:"taskstatus"`
}

type Service struct {
	repo   *repository.Repository
	notify Notifier
}

// NewService creates the task service. notifier may be nil.
func NewService(repo *repository.Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notify: notifier}
}

// List returns the actor's own tasks.
func (s *Service) List(ctx context.Context, actor *models.User, p ListParams) ([]models.Task, error) {
	if err := auth.RequireUser(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(p); err != nil {
		return nil, err
	}

	filter := repository.TaskFilter{UserID: actor.ID, ShowCompleted: p.ShowCompleted}
	if p.Status != "" {
		status := models.TaskStatus(p.Status)
		filter.Status = &status
	}
	return s.repo.ListTasks(ctx, filter)
}

// Create adds a task owned by the actor.
func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.Task, error) {
	if err := auth.RequireUser(actor); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
	}
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	if err := checkFields(task); err != nil {
		return nil, err
	}

	due, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	task.DueDate = due

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := checkTags(ctx, tx, actor.ID, in.TagIDs); err != nil {
			return err
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		return tx.SetTaskTags(ctx, task.ID, in.TagIDs)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	s.changed(created.UserID, ActionCreated, created.ID)
	return created, nil
}

// Get returns a task the actor may access.
func (s *Service) Get(ctx context.Context, actor *models.User, id int64) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccessTask(actor, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, actor *models.User, id int64, in UpdateInput) (*models.Task, error) {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.IsHidden != nil {
		task.IsHidden = *in.IsHidden
	}
	if err := checkFields(task); err != nil {
		return nil, err
	}
	if in.DueDate != nil {
		if task.DueDate, err = parseDueDate(*in.DueDate); err != nil {
			return nil, err
		}
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		if in.TagIDs == nil {
			return nil
		}
		if err := checkTags(ctx, tx, task.UserID, *in.TagIDs); err != nil {
			return err
		}
		return tx.SetTaskTags(ctx, task.ID, *in.TagIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, task.ID, ActionUpdated)
}

// UpdateStatus moves a task to another column.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, id int64, status models.TaskStatus) (*models.Task, error) {
	if err := validate.Var("status", status, "required,taskstatus"); err != nil {
		return nil, err
	}
	return s.Update(ctx, actor, id, UpdateInput{Status: &status})
}

// ToggleHidden flips the hidden flag of a task.
func (s *Service) ToggleHidden(ctx context.Context, actor *models.User, id int64) (*models.Task, error) {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	task.IsHidden = !task.IsHidden
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return s.reload(ctx, task.ID, ActionUpdated)
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, actor *models.User, id int64) error {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, task.ID); err != nil {
		return err
	}
	s.changed(task.UserID, ActionDeleted, task.ID)
	return nil
}

// Board groups the owner's tasks by status. Users see their own board,
// admins see anyone's.
func (s *Service) Board(ctx context.Context, actor *models.User, ownerID int64, showCompleted bool) (*Board, error) {
	if err := auth.CanViewBoard(actor, ownerID); err != nil {
		return nil, err
	}

	owner, err := s.repo.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.ListTasks(ctx, repository.TaskFilter{UserID: ownerID, ShowCompleted: showCompleted})
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.ListAvailableTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	byStatus := lo.GroupBy(all, func(t models.Task) models.TaskStatus { return t.Status })
	board := &Board{Owner: owner, Tags: tags}
	for _, status := range models.TaskStatuses {
		board.Columns = append(board.Columns, Column{Status: status, Tasks: append([]models.Task{}, byStatus[status]...)})
	}
	return board, nil
}

func (s *Service) reload(ctx context.Context, id int64, action string) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.changed(task.UserID, action, task.ID)
	return task, nil
}

func (s *Service) changed(userID int64, action string, taskID int64) {
	if s.notify != nil {
		s.notify.BoardChanged(userID, action, taskID)
	}
}

func checkFields(task *models.Task) error {
	return validate.Struct(taskFields{Title: task.Title, Status: task.Status})
}

// checkTags requires every tag to exist and be available to the task owner.
func checkTags(ctx context.Context, repo *repository.Repository, ownerID int64, ids []int64) error {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil
	}
	tags, err := repo.GetTagsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	usable := lo.CountBy(tags, func(t models.Tag) bool { return t.AvailableTo(ownerID) })
	if usable != len(ids) {
		return validate.Field("tag_ids", "contains unknown tags")
	}
	return nil
}

var dueDateLayouts = []string{time.DateOnly, time.RFC3339}

// parseDueDate accepts YYYY-MM-DD or RFC 3339. Empty means no due date.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, validate.Field("due_date", "must be a date (YYYY-MM-DD)")
}
