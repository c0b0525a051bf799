// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build dev

// Package assets serves the stylesheet and board script from disk in
// development builds.
package assets

import "net/http"

func CSSPath() string {
	return defaultCSSPath
}

func JSPath() string {
	return defaultJSPath
}

func FileServer() http.Handler {
	return http.FileServer(http.Dir("internal/assets/static"))
}
