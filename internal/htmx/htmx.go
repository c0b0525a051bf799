// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx speaks the htmx header protocol. The board script sends
// HX-Request on its fetch calls and follows HX-Redirect responses.
package htmx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	HeaderRequest    = "HX-Request"
	HeaderCurrentURL = "HX-Current-URL"
	HeaderTarget     = "HX-Target"
	HeaderTrigger    = "HX-Trigger"

	HeaderRedirect        = "HX-Redirect"
	HeaderRefresh         = "HX-Refresh"
	HeaderTriggerResponse = "HX-Trigger"
)

// Request holds the htmx headers of a request.
type Request struct {
	IsHtmx     bool
	CurrentURL string
	Target     string
	Trigger    string
}

// ParseRequest extracts htmx information from request headers.
func ParseRequest(r *http.Request) *Request {
	return &Request{
		IsHtmx:     r.Header.Get(HeaderRequest) == "true",
		CurrentURL: r.Header.Get(HeaderCurrentURL),
		Target:     r.Header.Get(HeaderTarget),
		Trigger:    r.Header.Get(HeaderTrigger),
	}
}

// Redirect sends the client to url. Script requests get an HX-Redirect
// header, since fetch follows a 303 silently; browsers get a 303.
func Redirect(c echo.Context, url string) error {
	if ParseRequest(c.Request()).IsHtmx {
		c.Response().Header().Set(HeaderRedirect, url)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, url)
}

// Trigger asks the client to fire event after the response is processed.
func Trigger(c echo.Context, event string) {
	c.Response().Header().Set(HeaderTriggerResponse, event)
}
