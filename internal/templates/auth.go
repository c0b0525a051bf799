// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"github.com/a-h/templ"
)

// LoginForm is the state of the email form.
type LoginForm struct {
	Email  string
	Next   string
	Errors map[string]string
}

// VerifyForm is the state of the code form.
type VerifyForm struct {
	Email   string
	Message string
	Errors  map[string]string
}

func Login(form LoginForm) templ.Component {
	body := page(func(h *html) {
		h.raw(`<section class="card narrow"><h1>`)
		h.t("login_title")
		h.raw(`</h1><form method="post" action="/otp/send">`)
		h.csrf()
		if form.Next != "" {
			h.raw(`<input type="hidden" name="next" value="`)
			h.text(form.Next)
			h.raw(`">`)
		}
		h.raw(`<label for="email">`)
		h.t("login_email_label")
		h.raw(`</label><input id="email" type="email" name="email" autocomplete="email" required autofocus value="`)
		h.text(form.Email)
		h.raw(`">`)
		h.fieldError(form.Errors, "email")
		h.raw(`<button type="submit">`)
		h.t("login_send_code")
		h.raw(`</button></form></section>`)
	})
	return Layout("login_title", body)
}

// Verify shows the code form for the pending email along with a resend form.
func Verify(form VerifyForm) templ.Component {
	body := page(func(h *html) {
		h.raw(`<section class="card narrow"><h1>`)
		h.t("verify_title")
		h.raw(`</h1>`)
		if form.Message != "" {
			h.raw(`<div class="flash success">`)
			h.text(form.Message)
			h.raw(`</div>`)
		}
		h.raw(`<p>`)
		h.text(TData(h.ctx, "verify_hint", map[string]any{"Email": form.Email}))
		h.raw(`</p><form method="post" action="/otp/verify">`)
		h.csrf()
		h.raw(`<input type="hidden" name="email" value="`)
		h.text(form.Email)
		h.raw(`"><label for="code">`)
		h.t("verify_code_label")
		h.raw(`</label><input id="code" class="code" name="code" inputmode="numeric" autocomplete="one-time-code" maxlength="6" required autofocus>`)
		h.fieldError(form.Errors, "code")
		h.fieldError(form.Errors, "email")
		h.raw(`<button type="submit">`)
		h.t("verify_submit")
		h.raw(`</button></form>`)

		h.raw(`<form method="post" action="/otp/resend">`)
		h.csrf()
		h.raw(`<input type="hidden" name="email" value="`)
		h.text(form.Email)
		h.raw(`"><button class="link" type="submit">`)
		h.t("verify_resend")
		h.raw(`</button></form><p><a href="/login">`)
		h.t("verify_other_email")
		h.raw(`</a></p></section>`)
	})
	return Layout("verify_title", body)
}
