// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/taskboard/internal/appcontext"
	"codeberg.org/oliverandrich/taskboard/internal/htmx"
	"codeberg.org/oliverandrich/taskboard/internal/i18n"
	"codeberg.org/oliverandrich/taskboard/internal/services/passcode"
	"codeberg.org/oliverandrich/taskboard/internal/services/session"
	"codeberg.org/oliverandrich/taskboard/internal/templates"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
	"github.com/labstack/echo/v4"
)

// AuthHandlers drives the emailed passcode login.
type AuthHandlers struct {
	codes    *passcode.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(codes *passcode.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{codes: codes, sessions: sessions}
}

type sendRequest struct {
	Email string `json:"email" form:"email"`
	Next  string `json:"next" form:"next"`
}

type verifyRequest struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

// LoginPage renders the email form.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	if appcontext.UserFrom(c) != nil {
		return htmx.Redirect(c, "/board")
	}
	return Render(c, http.StatusOK, templates.Login(templates.LoginForm{
		Next: LocalPath(c.QueryParam("next")),
	}))
}

// SendCode issues a passcode and moves on to the verify form.
func (h *AuthHandlers) SendCode(c echo.Context) error {
	var req sendRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.issue(c, req.Email, LocalPath(req.Next))
}

// ResendCode issues another passcode for the pending email. Earlier codes
// stay valid until they expire.
func (h *AuthHandlers) ResendCode(c echo.Context) error {
	var req sendRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	next := LocalPath(req.Next)
	if p := h.sessions.ParsePending(c.Request()); p != nil {
		if req.Email == "" {
			req.Email = p.Email
		}
		if next == "" {
			next = p.Next
		}
	}
	return h.issue(c, req.Email, next)
}

func (h *AuthHandlers) issue(c echo.Context, email, next string) error {
	ctx := c.Request().Context()

	issued, err := h.codes.Issue(ctx, email)
	switch {
	case errors.Is(err, passcode.ErrDeliveryFailed):
		// The record exists; the user may still receive a later code.
		slog.WarnContext(ctx, "passcode_delivery_failed", "email", issued.Email, "error", err)
	case errors.Is(err, passcode.ErrInvalidEmail), errors.Is(err, passcode.ErrRateLimited):
		if WantsJSON(c) {
			return err
		}
		status, body := Classify(err)
		if status == http.StatusTooManyRequests {
			body.Errors = map[string]string{"email": i18n.T(ctx, "otp_rate_limited")}
		}
		return Render(c, status, templates.Login(templates.LoginForm{
			Email:  email,
			Next:   next,
			Errors: body.Errors,
		}))
	case err != nil:
		return err
	}

	cookie, err := h.sessions.CreatePending(session.Pending{
		Email:   issued.Email,
		Message: i18n.T(ctx, "otp_sent"),
		Next:    next,
	})
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	if WantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]any{
			"email":      issued.Email,
			"expires_at": issued.ExpiresAt,
			"redirect":   "/otp/verify",
		})
	}
	return htmx.Redirect(c, "/otp/verify")
}

// VerifyPage renders the code form for the pending login.
func (h *AuthHandlers) VerifyPage(c echo.Context) error {
	p := h.sessions.ParsePending(c.Request())
	if p == nil {
		return htmx.Redirect(c, "/login")
	}
	return Render(c, http.StatusOK, templates.Verify(templates.VerifyForm{
		Email:   p.Email,
		Message: p.Message,
	}))
}

// VerifyCode redeems a passcode and establishes the session.
func (h *AuthHandlers) VerifyCode(c echo.Context) error {
	var req verifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pending := h.sessions.ParsePending(c.Request())
	if req.Email == "" && pending != nil {
		req.Email = pending.Email
	}

	ctx := c.Request().Context()
	res, err := h.codes.Verify(ctx, req.Email, req.Code)
	if errors.Is(err, passcode.ErrInvalidCode) {
		if WantsJSON(c) {
			return err
		}
		return Render(c, http.StatusUnprocessableEntity, templates.Verify(templates.VerifyForm{
			Email:  passcode.NormalizeEmail(req.Email),
			Errors: map[string]string{"code": i18n.T(ctx, "otp_invalid")},
		}))
	}
	if err != nil {
		return err
	}

	cookie, err := h.sessions.Create(res.User.ID, res.User.Email)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	c.SetCookie(h.sessions.ClearPending())

	next := "/board"
	if pending != nil && pending.Next != "" && pending.Email == res.User.Email {
		next = pending.Next
	}

	if WantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]any{
			"user":     res.User,
			"outcome":  res.Outcome.String(),
			"redirect": next,
		})
	}
	return htmx.Redirect(c, next)
}

// Logout clears the session.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	if err := h.sessions.SetFlash(c.Response(), session.Flash{
		Kind:    "success",
		Message: i18n.T(c.Request().Context(), "logged_out"),
	}); err != nil {
		return err
	}
	return htmx.Redirect(c, "/login")
}

// fieldErrors is shared by the form handlers to turn service errors into
// inline messages. It returns nil for errors that are not about input.
func fieldErrors(err error) map[string]string {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
