// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets embeds the stylesheet and board script.
package assets

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed esbuild-meta.json
var metaData []byte

//go:embed static
var staticFS embed.FS

var cssPath, jsPath = Resolve(metaData)

func init() {
	slog.Debug("asset paths", "css", cssPath, "js", jsPath)
}

// CSSPath returns the URL of the stylesheet.
func CSSPath() string {
	return cssPath
}

// JSPath returns the URL of the board script.
func JSPath() string {
	return jsPath
}

// FileServer serves the embedded static directory.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}
