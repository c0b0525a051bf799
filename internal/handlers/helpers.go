// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// WantsJSON reports whether the client expects a JSON response rather than a page.
func WantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return true
	}
	return isJSONBody(req)
}

func isJSONBody(req *http.Request) bool {
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// bind decodes the request into v. Decoding failures become field errors.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return &validate.Error{Fields: validate.Details(err)}
	}
	return nil
}

// paramID parses the :id route parameter. Malformed IDs cannot name a record.
func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, repository.ErrNotFound
	}
	return id, nil
}

// LocalPath returns p if it is a path on this site, otherwise "".
func LocalPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, `/\`) {
		return ""
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return u.RequestURI()
}

// formValues returns the submitted form fields that are present in the request.
func formValues(c echo.Context, names ...string) (map[string]string, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := form[name]; ok && len(v) > 0 {
			out[name] = strings.TrimSpace(v[0])
		}
	}
	return out, nil
}
