// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the server-side HTML pages.
package templates

import (
	"context"
	"io"

	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/ctxkeys"
	"codeberg.org/oliverandrich/taskboard/internal/i18n"
	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/services/session"
	"github.com/a-h/templ"
)

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxkeys.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return i18n.TData(ctx, messageID, data)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// CSSPath returns the path to the stylesheet.
func CSSPath(ctx context.Context) string {
	if path, ok := ctx.Value(ctxkeys.CSSPath{}).(string); ok {
		return path
	}
	return "/static/css/styles.css"
}

// JSPath returns the path to the board script.
func JSPath(ctx context.Context) string {
	if path, ok := ctx.Value(ctxkeys.JSPath{}).(string); ok {
		return path
	}
	return "/static/js/app.js"
}

// GetUser returns the authenticated user from context, or nil if not logged in.
func GetUser(ctx context.Context) *models.User {
	return auth.GetUser(ctx)
}

// IsAuthenticated returns true if a user is logged in.
func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}

// WithFlash stores a one-shot message for the layout.
func WithFlash(ctx context.Context, f *session.Flash) context.Context {
	return context.WithValue(ctx, ctxkeys.Flash{}, f)
}

// Flash returns the message set by WithFlash, or nil.
func Flash(ctx context.Context) *session.Flash {
	if f, ok := ctx.Value(ctxkeys.Flash{}).(*session.Flash); ok {
		return f
	}
	return nil
}

// html accumulates markup and keeps the first write error.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTML(ctx context.Context, w io.Writer) *html {
	return &html{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes escaped content. It is also safe inside quoted attributes.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// t writes an escaped translation.
func (h *html) t(id string) {
	h.text(T(h.ctx, id))
}

func (h *html) url(s string) {
	h.text(string(templ.URL(s)))
}

func (h *html) component(c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

// csrf writes the hidden token field every POST form needs.
func (h *html) csrf() {
	h.raw(`<input type="hidden" name="csrf_token" value="`)
	h.text(CSRFToken(h.ctx))
	h.raw(`">`)
}

// fieldError writes the message for name, if any.
func (h *html) fieldError(errs map[string]string, name string) {
	if msg, ok := errs[name]; ok {
		h.raw(`<p class="field-error">`)
		h.text(msg)
		h.raw(`</p>`)
	}
}

// page builds a component from a write function.
func page(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		fn(h)
		return h.err
	})
}
