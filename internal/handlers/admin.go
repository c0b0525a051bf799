// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/appcontext"
	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/htmx"
	"codeberg.org/oliverandrich/taskboard/internal/i18n"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/services/session"
	"codeberg.org/oliverandrich/taskboard/internal/services/tags"
	"codeberg.org/oliverandrich/taskboard/internal/services/tasks"
	"codeberg.org/oliverandrich/taskboard/internal/services/users"
	"codeberg.org/oliverandrich/taskboard/internal/templates"
	"github.com/labstack/echo/v4"
)

const usersPath = "/admin/users"

// AdminHandlers serves the admin area. Every service call checks the
// caller's role again; the route guard only saves a round trip.
type AdminHandlers struct {
	users    *users.Service
	tasks    *tasks.Service
	tags     *tags.Service
	sessions *session.Manager
	now      func() time.Time
}

func NewAdmin(u *users.Service, t *tasks.Service, tg *tags.Service, sessions *session.Manager) *AdminHandlers {
	return &AdminHandlers{users: u, tasks: t, tags: tg, sessions: sessions, now: time.Now}
}

func (h *AdminHandlers) Dashboard(c echo.Context) error {
	stats, err := h.users.Stats(c.Request().Context(), appcontext.UserFrom(c))
	if err != nil {
		return err
	}
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, stats)
	}
	return Render(c, http.StatusOK, templates.AdminDashboard(stats))
}

func (h *AdminHandlers) Users(c echo.Context) error {
	list, err := h.users.List(c.Request().Context(), appcontext.UserFrom(c))
	if err != nil {
		return err
	}
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, list)
	}
	return Render(c, http.StatusOK, templates.AdminUsers(list))
}

func (h *AdminHandlers) User(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), appcontext.UserFrom(c), id)
	if err != nil {
		return err
	}
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, user)
	}
	return Render(c, http.StatusOK, templates.AdminUser(templates.UserForm{User: user}))
}

// UserBoard shows another user's board read-only.
func (h *AdminHandlers) UserBoard(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	actor := appcontext.UserFrom(c)
	showCompleted := c.QueryParam("show_completed") == "true"

	board, err := h.tasks.Board(c.Request().Context(), actor, id, showCompleted)
	if err != nil {
		return err
	}
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, board)
	}
	return Render(c, http.StatusOK, templates.Board(templates.BoardView{
		Board:         board,
		Own:           actor != nil && actor.ID == id,
		Path:          usersPath + "/" + strconv.FormatInt(id, 10) + "/board",
		ShowCompleted: showCompleted,
		Now:           h.now(),
	}))
}

// UpdateUser accepts the edit form or a JSON patch.
func (h *AdminHandlers) UpdateUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	actor := appcontext.UserFrom(c)

	if isJSONBody(c.Request()) {
		var in users.UpdateInput
		if err := bind(c, &in); err != nil {
			return err
		}
		user, err := h.users.Update(ctx, actor, id, in)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, user)
	}

	values, err := formValues(c, "name", "full_name", "email", "phone", "role")
	if err != nil {
		return err
	}
	in := formUpdate(values)

	user, err := h.users.Update(ctx, actor, id, in)
	if errs := fieldErrors(err); errs != nil {
		current, gerr := h.users.Get(ctx, actor, id)
		if gerr != nil {
			return gerr
		}
		return Render(c, http.StatusUnprocessableEntity, templates.AdminUser(templates.UserForm{
			User:   submitted(current, in),
			Errors: errs,
		}))
	}
	if err != nil {
		return err
	}

	if err := h.flash(c, "success", "admin_user_updated"); err != nil {
		return err
	}
	return htmx.Redirect(c, usersPath+"/"+strconv.FormatInt(user.ID, 10))
}

// DeleteUser removes an account. Admins deleting themselves get an error
// message on the users page instead of an error response.
func (h *AdminHandlers) DeleteUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	err = h.users.Delete(c.Request().Context(), appcontext.UserFrom(c), id)
	if WantsJSON(c) {
		if err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}

	switch {
	case errors.Is(err, auth.ErrSelfAction):
		if ferr := h.flash(c, "error", "admin_self_delete"); ferr != nil {
			return ferr
		}
	case err != nil:
		return err
	default:
		if ferr := h.flash(c, "success", "admin_user_deleted"); ferr != nil {
			return ferr
		}
	}
	return htmx.Redirect(c, usersPath)
}

func (h *AdminHandlers) TagsPage(c echo.Context) error {
	list, err := h.tags.ListSystem(c.Request().Context(), appcontext.UserFrom(c))
	if err != nil {
		return err
	}
	return Render(c, http.StatusOK, templates.AdminTags(list))
}

func (h *AdminHandlers) ListSystemTags(c echo.Context) error {
	list, err := h.tags.ListSystem(c.Request().Context(), appcontext.UserFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandlers) CreateSystemTag(c echo.Context) error {
	var in tags.Input
	if err := bind(c, &in); err != nil {
		return err
	}
	tag, err := h.tags.CreateSystem(c.Request().Context(), appcontext.UserFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

func (h *AdminHandlers) UpdateSystemTag(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var p tags.Patch
	if err := bind(c, &p); err != nil {
		return err
	}
	tag, err := h.tags.UpdateSystem(c.Request().Context(), appcontext.UserFrom(c), id, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

func (h *AdminHandlers) DeleteSystemTag(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.tags.DeleteSystem(c.Request().Context(), appcontext.UserFrom(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandlers) flash(c echo.Context, kind, messageID string) error {
	return h.sessions.SetFlash(c.Response(), session.Flash{
		Kind:    kind,
		Message: i18n.T(c.Request().Context(), messageID),
	})
}

func formUpdate(values map[string]string) users.UpdateInput {
	var in users.UpdateInput
	if v, ok := values["name"]; ok {
		in.Name = &v
	}
	if v, ok := values["full_name"]; ok {
		in.FullName = &v
	}
	if v, ok := values["email"]; ok {
		in.Email = &v
	}
	if v, ok := values["phone"]; ok {
		in.Phone = &v
	}
	if v, ok := values["role"]; ok {
		role := models.Role(v)
		in.Role = &role
	}
	return in
}

// submitted overlays the rejected input on the stored user so the form
// shows what was typed.
func submitted(u *models.User, in users.UpdateInput) *models.User {
	out := *u
	if in.Name != nil {
		out.Name = *in.Name
	}
	if in.FullName != nil {
		out.FullName = *in.FullName
	}
	if in.Email != nil {
		out.Email = *in.Email
	}
	if in.Phone != nil {
		out.Phone = *in.Phone
	}
	if in.Role != nil {
		out.Role = *in.Role
	}
	return &out
}
