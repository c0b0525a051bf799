// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const (
	defaultCSSPath = "/static/css/styles.css"
	defaultJSPath  = "/static/js/app.js"
)

type esbuildMeta struct {
	Outputs map[string]struct{} `json:"outputs"`
}

// Resolve maps an esbuild metafile to the public URLs of the built
// stylesheet and script. Missing outputs fall back to the unhashed files.
func Resolve(meta []byte) (css, js string) {
	css, js = defaultCSSPath, defaultJSPath
	if len(meta) == 0 {
		return css, js
	}

	var m esbuildMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		slog.Error("failed to parse esbuild meta", "error", err)
		return css, js
	}

	for out := range m.Outputs {
		idx := strings.Index(out, "/static/")
		if idx < 0 {
			continue
		}
		url := out[idx:]
		switch {
		case strings.HasSuffix(url, ".css"):
			css = url
		case strings.HasSuffix(url, ".js"):
			js = url
		}
	}
	return css, js
}
