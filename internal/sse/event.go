// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"encoding/json"
	"strings"
)

// Event names pushed to browsers.
const (
	EventConnected    = "connected"
	EventBoardUpdated = "board-updated"
	EventTagsUpdated  = "tags-updated"
)

// Heartbeat is an SSE comment line. Clients ignore it; proxies see traffic.
const Heartbeat = ": heartbeat\n\n"

// BoardChange is the payload of a board-updated event.
type BoardChange struct {
	Action string `json:"action"`
	TaskID int64  `json:"task_id"`
	UserID int64  `json:"user_id"`
}

// FormatEvent renders one event. Every line of data gets its own data: field.
func FormatEvent(name, data string) string {
	var sb strings.Builder
	if name != "" {
		sb.WriteString("event: ")
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

// FormatJSON renders an event whose data is v encoded as JSON.
func FormatJSON(name string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return FormatEvent(name, string(data)), nil
}
