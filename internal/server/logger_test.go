// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, "1.2.0")

	logger.Info("dropped")
	logger.Warn("passcode_sent", "email", "alice@example.com")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "passcode_sent", record["msg"])
	assert.Equal(t, "taskboard", record["app"])
	assert.Equal(t, "1.2.0", record["version"])
	assert.Equal(t, "alice@example.com", record["email"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "debug", Format: "text"}, "")

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("starting")
	assert.Contains(t, buf.String(), "starting")
	assert.Contains(t, buf.String(), "version")
	assert.Contains(t, buf.String(), "dev")
}
