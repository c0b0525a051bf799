// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"strconv"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/services/users"
	"github.com/a-h/templ"
)

// UserForm is the state of the admin edit form.
type UserForm struct {
	User   *models.User
	Errors map[string]string
}

func adminNav(h *html) {
	h.raw(`<nav class="admin-nav"><a href="/admin">`)
	h.t("admin_dashboard")
	h.raw(`</a> · <a href="/admin/users">`)
	h.t("admin_users")
	h.raw(`</a> · <a href="/admin/tags">`)
	h.t("admin_tags")
	h.raw(`</a></nav>`)
}

// AdminDashboard shows the global counters.
func AdminDashboard(stats *users.Stats) templ.Component {
	body := page(func(h *html) {
		h.raw(`<h1>`)
		h.t("admin_title")
		h.raw(`</h1>`)
		adminNav(h)
		h.raw(`<div class="stats">`)
		stat := func(id string, n int64) {
			h.raw(`<div class="card"><strong>`)
			h.text(strconv.FormatInt(n, 10))
			h.raw(`</strong>`)
			h.t(id)
			h.raw(`</div>`)
		}
		stat("admin_stat_users", stats.TotalUsers)
		stat("admin_stat_tasks", stats.TotalTasks)
		stat("admin_stat_tags", stats.TotalTags)
		stat("admin_stat_admins", stats.AdminUsers)
		stat("admin_stat_regular", stats.RegularUsers)
		h.raw(`</div>`)
	})
	return Layout("admin_title", body)
}

// AdminUsers lists every account with its task count.
func AdminUsers(list []models.UserWithTaskCount) templ.Component {
	body := page(func(h *html) {
		h.raw(`<h1>`)
		h.t("admin_users")
		h.raw(`</h1>`)
		adminNav(h)
		h.raw(`<table><thead><tr>`)
		for _, id := range []string{"admin_user_email", "admin_user_name", "admin_user_role", "admin_user_tasks", "admin_user_joined"} {
			h.raw(`<th>`)
			h.t(id)
			h.raw(`</th>`)
		}
		h.raw(`<th></th></tr></thead><tbody>`)
		for _, u := range list {
			id := strconv.FormatInt(u.ID, 10)
			h.raw(`<tr><td><a href="/admin/users/`)
			h.text(id)
			h.raw(`">`)
			h.text(u.Email)
			h.raw(`</a></td><td>`)
			h.text(u.DisplayName())
			h.raw(`</td><td>`)
			h.t("role_" + string(u.Role))
			h.raw(`</td><td>`)
			h.text(strconv.FormatInt(u.TaskCount, 10))
			h.raw(`</td><td>`)
			h.text(u.CreatedAt.Format(time.DateOnly))
			h.raw(`</td><td><a href="/admin/users/`)
			h.text(id)
			h.raw(`/board">`)
			h.t("admin_user_board")
			h.raw(`</a></td></tr>`)
		}
		h.raw(`</tbody></table>`)
	})
	return Layout("admin_users", body)
}

// AdminUser is the edit form for one account with its delete action.
func AdminUser(form UserForm) templ.Component {
	body := page(func(h *html) {
		u := form.User
		action := "/admin/users/" + strconv.FormatInt(u.ID, 10)

		h.raw(`<h1>`)
		h.t("admin_user_edit")
		h.raw(`</h1>`)
		adminNav(h)
		h.raw(`<section class="card"><form method="post" action="`)
		h.text(action)
		h.raw(`">`)
		h.csrf()

		input := func(name, label, value, kind string) {
			h.raw(`<label for="`)
			h.text(name)
			h.raw(`">`)
			h.t(label)
			h.raw(`</label><input id="`)
			h.text(name)
			h.raw(`" name="`)
			h.text(name)
			h.raw(`" type="`)
			h.text(kind)
			h.raw(`" value="`)
			h.text(value)
			h.raw(`">`)
			h.fieldError(form.Errors, name)
		}
		input("email", "admin_user_email", u.Email, "email")
		input("name", "admin_user_name", u.Name, "text")
		input("full_name", "admin_user_full_name", u.FullName, "text")
		input("phone", "admin_user_phone", u.Phone, "tel")

		h.raw(`<label for="role">`)
		h.t("admin_user_role")
		h.raw(`</label><select id="role" name="role">`)
		for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
			h.raw(`<option value="`)
			h.text(string(role))
			h.raw(`"`)
			if u.Role == role {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.t("role_" + string(role))
			h.raw(`</option>`)
		}
		h.raw(`</select>`)
		h.fieldError(form.Errors, "role")

		h.raw(`<button type="submit">`)
		h.t("admin_user_save")
		h.raw(`</button></form>`)

		h.raw(`<form method="post" action="`)
		h.text(action + "/delete")
		h.raw(`">`)
		h.csrf()
		h.raw(`<button class="danger" type="submit">`)
		h.t("admin_user_delete")
		h.raw(`</button></form></section>`)
	})
	return Layout("admin_user_edit", body)
}

// AdminTags manages the system tags through the JSON endpoints.
func AdminTags(list []models.Tag) templ.Component {
	body := page(func(h *html) {
		h.raw(`<h1>`)
		h.t("admin_tags")
		h.raw(`</h1>`)
		adminNav(h)
		h.raw(`<table><tbody>`)
		for _, tag := range list {
			h.raw(`<tr><td>`)
			tagBadge(h, tag)
			h.raw(`</td><td><span class="swatch" style="background-color: `)
			h.text(safeColor(tag.Color))
			h.raw(`"></span> `)
			h.text(tag.Color)
			h.raw(`</td><td><button class="small danger" type="button" data-delete-tag="`)
			h.text(strconv.FormatInt(tag.ID, 10))
			h.raw(`">`)
			h.t("task_delete")
			h.raw(`</button></td></tr>`)
		}
		h.raw(`</tbody></table>`)

		h.raw(`<section class="card"><form id="new-system-tag"><label for="name">`)
		h.t("admin_tag_name")
		h.raw(`</label><input id="name" name="name" maxlength="50" required><label for="color">`)
		h.t("admin_tag_color")
		h.raw(`</label><input id="color" name="color" type="color" value="`)
		h.text(models.DefaultTagColor)
		h.raw(`"><button type="submit">`)
		h.t("admin_tag_create")
		h.raw(`</button></form></section>`)
	})
	return Layout("admin_tags", body)
}
