// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/taskboard/internal/auth"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/services/passcode"
	"codeberg.org/oliverandrich/taskboard/internal/services/tags"
	"codeberg.org/oliverandrich/taskboard/internal/templates"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
	"github.com/labstack/echo/v4"
)

// InvalidCodeMessage is the only thing a client learns about a failed verification.
const InvalidCodeMessage = "invalid or expired"

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Classify maps an error to its status code and client-facing body.
func Classify(err error) (int, ErrorResponse) {
	var verr *validate.Error
	var herr *echo.HTTPError

	switch {
	case errors.Is(err, passcode.ErrInvalidCode):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Message: "validation failed",
			Errors:  map[string]string{"code": InvalidCodeMessage},
		}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, ErrorResponse{Message: "validation failed", Errors: verr.Fields}
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Message: "authentication required"}
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Message: "forbidden"}
	case errors.Is(err, auth.ErrSelfAction):
		return http.StatusForbidden, ErrorResponse{Message: auth.ErrSelfAction.Error()}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Message: "not found"}
	case errors.Is(err, passcode.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{Message: "too many requests"}
	case errors.Is(err, tags.ErrNotSystemTag):
		return http.StatusBadRequest, ErrorResponse{Message: tags.ErrNotSystemTag.Error()}
	case errors.As(err, &herr):
		msg, ok := herr.Message.(string)
		if !ok {
			msg = http.StatusText(herr.Code)
		}
		return herr.Code, ErrorResponse{Message: msg}
	default:
		return http.StatusInternalServerError, ErrorResponse{Message: "internal server error"}
	}
}

// respondError writes err as JSON or as an error page.
func respondError(c echo.Context, err error) error {
	status, body := Classify(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request_failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	if WantsJSON(c) {
		return c.JSON(status, body)
	}
	return Render(c, status, templates.ErrorPage(status, http.StatusText(status), pageMessage(status)))
}

func pageMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "error_not_found"
	case http.StatusForbidden, http.StatusUnauthorized:
		return "error_forbidden"
	default:
		return "error_generic"
	}
}

// HTTPErrorHandler is installed as echo's error handler so that errors from
// middleware and unknown routes get the same treatment as handler errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		status, _ := Classify(err)
		_ = c.NoContent(status)
		return
	}
	if rerr := respondError(c, err); rerr != nil {
		slog.Error("error_response_failed", "error", rerr)
	}
}
