// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"strconv"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/services/tasks"
	"github.com/a-h/templ"
)

// BoardView is everything the board page needs.
type BoardView struct {
	Board         *tasks.Board
	Own           bool   // the viewer owns the board and may add tasks
	Path          string // page URL without query, for the completed toggle
	ShowCompleted bool
	Now           time.Time
}

// Board renders the three-column task board.
func Board(v BoardView) templ.Component {
	body := page(func(h *html) {
		h.raw(`<h1>`)
		if v.Own {
			h.t("board_title")
		} else {
			h.text(TData(h.ctx, "board_user_title", map[string]any{"Name": v.Board.Owner.DisplayName()}))
		}
		h.raw(`</h1><p><a href="`)
		if v.ShowCompleted {
			h.url(v.Path)
			h.raw(`">`)
			h.t("board_hide_completed")
		} else {
			h.url(v.Path + "?show_completed=true")
			h.raw(`">`)
			h.t("board_show_completed")
		}
		h.raw(`</a></p>`)

		h.raw(`<div id="board" class="board">`)
		for _, col := range v.Board.Columns {
			boardColumn(h, col, v.Now)
		}
		h.raw(`</div>`)

		if v.Own {
			newTaskForm(h, v.Board.Tags)
		}
	})
	return Layout("board_title", body)
}

func boardColumn(h *html, col tasks.Column, now time.Time) {
	h.raw(`<section class="column" data-status="`)
	h.text(string(col.Status))
	h.raw(`"><h2><span>`)
	h.t("status_" + string(col.Status))
	h.raw(`</span><small>`)
	h.text(TData(h.ctx, "task_count", map[string]any{"Count": len(col.Tasks)}))
	h.raw(`</small></h2>`)

	if len(col.Tasks) == 0 {
		h.raw(`<p class="empty">`)
		h.t("board_empty_column")
		h.raw(`</p>`)
	}
	for i := range col.Tasks {
		taskCard(h, &col.Tasks[i], now)
	}
	h.raw(`</section>`)
}

func taskCard(h *html, task *models.Task, now time.Time) {
	h.raw(`<article class="task`)
	if task.IsHidden {
		h.raw(` hidden-task`)
	}
	h.raw(`" draggable="true" data-id="`)
	h.text(strconv.FormatInt(task.ID, 10))
	h.raw(`"><h3>`)
	h.text(task.Title)
	h.raw(`</h3>`)
	if task.Description != "" {
		h.raw(`<p>`)
		h.text(task.Description)
		h.raw(`</p>`)
	}

	h.raw(`<div class="meta">`)
	if task.DueDate != nil {
		if task.IsOverdue(now) {
			h.raw(`<span class="overdue">`)
			h.t("task_overdue")
			h.raw(`</span>`)
		}
		h.raw(`<span>`)
		h.text(TData(h.ctx, "task_due", map[string]any{"Date": task.DueDate.Format(time.DateOnly)}))
		h.raw(`</span>`)
	}
	if task.IsHidden {
		h.raw(`<span>`)
		h.t("task_hidden")
		h.raw(`</span>`)
	}
	for _, tag := range task.Tags {
		tagBadge(h, tag)
	}
	h.raw(`</div>`)

	h.raw(`<div class="actions">`)
	if task.Status == models.StatusDone {
		h.raw(`<button class="small" type="button" data-action="toggle-hidden">`)
		if task.IsHidden {
			h.t("task_unhide")
		} else {
			h.t("task_hide")
		}
		h.raw(`</button>`)
	}
	h.raw(`<button class="small danger" type="button" data-action="delete" data-confirm="`)
	h.t("task_delete_confirm")
	h.raw(`">`)
	h.t("task_delete")
	h.raw(`</button></div></article>`)
}

func tagBadge(h *html, tag models.Tag) {
	h.raw(`<span class="tag" style="background-color: `)
	h.text(safeColor(tag.Color))
	h.raw(`">`)
	h.text(tag.Name)
	h.raw(`</span>`)
}

// safeColor keeps inline styles limited to validated hex colours.
func safeColor(c string) string {
	if (len(c) != 4 && len(c) != 7) || c[0] != '#' {
		return models.DefaultTagColor
	}
	for _, r := range c[1:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return models.DefaultTagColor
		}
	}
	return c
}

func newTaskForm(h *html, tags []models.Tag) {
	h.raw(`<section class="card"><h2>`)
	h.t("task_new")
	h.raw(`</h2><form id="new-task">`)
	h.raw(`<label for="title">`)
	h.t("task_title_label")
	h.raw(`</label><input id="title" name="title" maxlength="255" required>`)
	h.raw(`<label for="description">`)
	h.t("task_description_label")
	h.raw(`</label><textarea id="description" name="description" rows="3"></textarea>`)
	h.raw(`<label for="due_date">`)
	h.t("task_due_label")
	h.raw(`</label><input id="due_date" type="date" name="due_date">`)

	if len(tags) > 0 {
		h.raw(`<label for="tag_ids">`)
		h.t("task_tags_label")
		h.raw(`</label><select id="tag_ids" name="tag_ids" multiple>`)
		for _, tag := range tags {
			h.raw(`<option value="`)
			h.text(strconv.FormatInt(tag.ID, 10))
			h.raw(`">`)
			h.text(tag.Name)
			h.raw(`</option>`)
		}
		h.raw(`</select>`)
	}

	h.raw(`<button type="submit">`)
	h.t("task_create")
	h.raw(`</button></form></section>`)
}
