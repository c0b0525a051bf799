// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"github.com/vinovest/sqlx"
)

// TaskFilter narrows ListTasks. A nil Status matches every status.
type TaskFilter struct {
	UserID        int64
	Status        *models.TaskStatus
	ShowCompleted bool
}

// CreateTask inserts a task and fills in its ID and timestamps.
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	now := r.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.StatusToDo
	}

	res, err := r.ext.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, due_date, status, is_hidden, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.UserID, task.Title, task.Description, task.DueDate, task.Status, task.IsHidden,
		task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return wrapError(err)
	}

	task.ID, err = res.LastInsertId()
	return err
}

// GetTask retrieves a task by ID together with its tags.
func (r *Repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := sqlx.GetContext(ctx, r.ext, &task, `SELECT * FROM tasks WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}

	tasks := []models.Task{task}
	if err := r.loadTaskTags(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// ListTasks returns a user's tasks, newest first, with their tags. Completed
// tasks that were hidden are left out unless ShowCompleted is set.
func (r *Repository) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{f.UserID}
	)
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *f.Status)
	}
	if !f.ShowCompleted {
		where = append(where, "NOT (status = 'done' AND is_hidden = 1)")
	}

	query := `SELECT * FROM tasks WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC, id DESC`

	var tasks []models.Task
	if err := sqlx.SelectContext(ctx, r.ext, &tasks, query, args...); err != nil {
		return nil, err
	}
	if err := r.loadTaskTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask writes all mutable task fields.
func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = r.now()
	return expectOne(r.ext.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, due_date = ?, status = ?, is_hidden = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title, task.Description, task.DueDate, task.Status, task.IsHidden, task.UpdatedAt, task.ID))
}

// DeleteTask deletes a task; its tag links cascade.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	return expectOne(r.ext.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id))
}

// SetTaskTags replaces the tags linked to a task with tagIDs.
func (r *Repository) SetTaskTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	return r.InTx(ctx, func(tx *Repository) error {
		if _, err := tx.ext.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if _, err := tx.ext.ExecContext(ctx,
				`INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountTasks returns the total number of tasks.
func (r *Repository) CountTasks(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM tasks`)
	return count, err
}

type taskTagRow struct {
	TaskID int64 `db:"task_id"`
	models.Tag
}

// loadTaskTags fills the Tags field of every task in place.
func (r *Repository) loadTaskTags(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]int64, len(tasks))
	index := make(map[int64]int, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
		index[tasks[i].ID] = i
		tasks[i].Tags = []models.Tag{}
	}

	query, args, err := sqlx.In(
		`SELECT tt.task_id, t.* FROM task_tags tt
		 JOIN tags t ON t.id = tt.tag_id
		 WHERE tt.task_id IN (?)
		 ORDER BY t.is_system DESC, t.name`, ids)
	if err != nil {
		return err
	}

	var rows []taskTagRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, r.ext.Rebind(query), args...); err != nil {
		return err
	}

	for _, row := range rows {
		i := index[row.TaskID]
		tasks[i].Tags = append(tasks[i].Tags, row.Tag)
	}
	return nil
}
