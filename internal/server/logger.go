// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"github.com/lmittmann/tint"
)

// setupLogger installs the process-wide logger for the run and seed commands.
func setupLogger(cfg config.LogConfig, version string) {
	slog.SetDefault(newLogger(os.Stdout, cfg, version))
}

// newLogger builds a logger that tags every record with the app name and
// the running build.
func newLogger(w io.Writer, cfg config.LogConfig, version string) *slog.Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: "15:04:05.000"})
	}

	if version == "" {
		version = "dev"
	}
	return slog.New(handler).With(slog.String("app", "taskboard"), slog.String("version", version))
}

// parseLevel accepts slog level names in any case ("warn", "ERROR", "info+2").
// Unknown values fall back to info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
