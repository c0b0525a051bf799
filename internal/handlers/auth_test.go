// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.get("/board", false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fboard", resp.Header.Get("Location"))

	resp = b.form("/otp/send", url.Values{"email": {" Alice@Example.com "}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/otp/verify", resp.Header.Get("Location"))

	resp = b.get("/otp/verify", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "alice@example.com")
	assert.Contains(t, body, "OTP code has been sent to your email.")

	code := env.mailer.code(t, "alice@example.com")
	resp = b.form("/otp/verify", url.Values{"code": {code}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/board", resp.Header.Get("Location"))

	resp = b.get("/board", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "alice")

	// A used code cannot log in again.
	other := env.browser(t)
	resp = other.form("/otp/verify", url.Values{"email": {"alice@example.com"}, "code": {code}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "The provided code is invalid or has expired.")
	assert.Empty(t, other.cookie("_session"))
}

func TestVerifyCode_LocalizedError(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	values := url.Values{"email": {"alice@example.com"}, "code": {"000000"}}
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/otp/verify", strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	resp := b.do(req)

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Der Code ist ungültig oder abgelaufen.")
	assert.NotContains(t, body, handlers.InvalidCodeMessage)
}

func TestLoginFlow_RedirectsToNext(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.form("/otp/send", url.Values{
		"email": {"bob@example.com"},
		"next":  {"/board?show_completed=true"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = b.form("/otp/verify", url.Values{"code": {env.mailer.code(t, "bob@example.com")}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/board?show_completed=true", resp.Header.Get("Location"))
}

func TestLoginFlow_IgnoresForeignNext(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.form("/otp/send", url.Values{
		"email": {"carol@example.com"},
		"next":  {"//evil.example.com/board"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = b.form("/otp/verify", url.Values{"code": {env.mailer.code(t, "carol@example.com")}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/board", resp.Header.Get("Location"))
}

func TestSendCode_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.form("/otp/send", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `value="not-an-email"`)

	resp = b.json(http.MethodPost, "/otp/send", map[string]string{"email": ""})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[handlers.ErrorResponse](t, resp)
	assert.Contains(t, body.Errors, "email")
	assert.Zero(t, env.mailer.sent)
}

func TestVerifyCode_JSON(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.json(http.MethodPost, "/otp/send", map[string]string{"email": "dave@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = b.json(http.MethodPost, "/otp/verify", map[string]string{
		"email": "dave@example.com",
		"code":  "000000x",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, map[string]string{"code": handlers.InvalidCodeMessage}, body.Errors)

	resp = b.json(http.MethodPost, "/otp/verify", map[string]string{
		"email": "dave@example.com",
		"code":  env.mailer.code(t, "dave@example.com"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)
	assert.Equal(t, "new_user", out["outcome"])
	assert.Equal(t, "/board", out["redirect"])

	// Second login resolves the same account.
	resp = b.json(http.MethodPost, "/otp/send", map[string]string{"email": "dave@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = b.json(http.MethodPost, "/otp/verify", map[string]string{
		"email": "dave@example.com",
		"code":  env.mailer.code(t, "dave@example.com"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[map[string]any](t, resp)
	assert.Equal(t, "existing_user", out["outcome"])
}

func TestResendCode_UsesPendingEmail(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.form("/otp/send", url.Values{"email": {"erin@example.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = b.form("/otp/resend", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 2, env.mailer.sent)
}

func TestVerifyPage_WithoutPendingLogin(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.get("/otp/verify", false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	b := env.login(t, "frank@example.com")

	resp := b.form("/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Empty(t, b.cookie("_session"))

	resp = b.get("/login", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "You have been logged out.")

	resp = b.get("/board", true)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginPage_RedirectsLoggedInUsers(t *testing.T) {
	env := newTestEnv(t)
	b := env.login(t, "gina@example.com")

	resp := b.get("/login", false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/board", resp.Header.Get("Location"))
}
