// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/appcontext"
	"codeberg.org/oliverandrich/taskboard/internal/sse"
	"github.com/labstack/echo/v4"
)

// SSEHandler handles Server-Sent Events connections.
type SSEHandler struct {
	hub       *sse.Hub
	heartbeat time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewSSEHandler creates a new SSE handler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{
		hub:       hub,
		heartbeat: 30 * time.Second,
		done:      make(chan struct{}),
	}
}

// Close ends all open streams. Server shutdown waits for them otherwise.
func (h *SSEHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// WithHeartbeat changes the keep-alive interval.
func (h *SSEHandler) WithHeartbeat(d time.Duration) *SSEHandler {
	h.heartbeat = d
	return h
}

// Events streams board and tag changes to the logged-in browser.
func (h *SSEHandler) Events(c echo.Context) error {
	user := appcontext.UserFrom(c)
	sess := appcontext.SessionFrom(c)
	if user == nil || sess == nil {
		return echo.ErrUnauthorized
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	res.WriteHeader(http.StatusOK)

	ch := h.hub.Register(sess.ID, user.ID)
	defer h.hub.Unregister(sess.ID, user.ID, ch)

	if _, err := res.Write([]byte(sse.FormatEvent(sse.EventConnected, "ok"))); err != nil {
		return nil //nolint:nilerr // client went away
	}
	res.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		case <-ticker.C:
			if _, err := res.Write([]byte(sse.Heartbeat)); err != nil {
				return nil //nolint:nilerr // client went away
			}
			res.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := res.Write([]byte(msg)); err != nil {
				slog.DebugContext(ctx, "sse_write_failed", "session", sess.ID, "error", err)
				return nil
			}
			res.Flush()
		}
	}
}
