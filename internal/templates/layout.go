// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"strconv"

	"github.com/a-h/templ"
)

// Layout wraps body in the document shell with navigation and flash message.
// title is a message ID; plain strings pass through untranslated.
func Layout(title string, body templ.Component) templ.Component {
	return page(func(h *html) {
		user := GetUser(h.ctx)

		h.raw(`<!DOCTYPE html><html lang="`)
		h.text(Locale(h.ctx))
		h.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="csrf-token" content="`)
		h.text(CSRFToken(h.ctx))
		h.raw(`"><title>`)
		if title != "" {
			h.t(title)
			h.raw(` · `)
		}
		h.t("app_name")
		h.raw(`</title><link rel="stylesheet" href="`)
		h.url(CSSPath(h.ctx))
		h.raw(`"><script defer src="`)
		h.url(JSPath(h.ctx))
		h.raw(`"></script></head>`)

		if user != nil {
			h.raw(`<body data-live="true">`)
		} else {
			h.raw(`<body>`)
		}

		h.raw(`<header class="nav"><a class="brand" href="/">`)
		h.t("app_name")
		h.raw(`</a>`)
		if user != nil {
			h.raw(`<a href="/board">`)
			h.t("nav_board")
			h.raw(`</a>`)
			if user.IsAdmin() {
				h.raw(`<a href="/admin">`)
				h.t("nav_admin")
				h.raw(`</a>`)
			}
			h.raw(`<span>`)
			h.text(user.DisplayName())
			h.raw(`</span><form method="post" action="/logout">`)
			h.csrf()
			h.raw(`<button class="link" type="submit">`)
			h.t("nav_logout")
			h.raw(`</button></form>`)
		} else {
			h.raw(`<a href="/login">`)
			h.t("nav_login")
			h.raw(`</a>`)
		}
		h.raw(`</header>`)

		h.raw(`<main>`)
		if f := Flash(h.ctx); f != nil {
			h.raw(`<div class="flash `)
			h.text(f.Kind)
			h.raw(`">`)
			h.text(f.Message)
			h.raw(`</div>`)
		}
		h.component(body)
		h.raw(`</main></body></html>`)
	})
}

// Welcome is the landing page for visitors.
func Welcome() templ.Component {
	body := page(func(h *html) {
		h.raw(`<section class="card"><h1>`)
		h.t("welcome_title")
		h.raw(`</h1><p>`)
		h.t("welcome_text")
		h.raw(`</p><a class="button" href="/login">`)
		h.t("welcome_cta")
		h.raw(`</a></section>`)
	})
	return Layout("", body)
}

// ErrorPage renders a full error page. title and message may be message IDs.
func ErrorPage(code int, title, message string) templ.Component {
	body := page(func(h *html) {
		h.raw(`<section class="card"><h1>`)
		h.text(strconv.Itoa(code))
		h.raw(` · `)
		h.t(title)
		h.raw(`</h1><p>`)
		h.t(message)
		h.raw(`</p><a href="/">`)
		h.t("error_back_home")
		h.raw(`</a></section>`)
	})
	return Layout(title, body)
}
