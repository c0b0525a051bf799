// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans out board changes to connected browsers.
package sse

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

type subscriber struct {
	ch     chan string
	userID int64
}

// Hub tracks open event streams by session and by user. A session can hold
// several streams (tabs) and a user several sessions (browsers).
type Hub struct {
	mu       sync.RWMutex
	sessions map[string][]subscriber
	users    map[int64][]string
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string][]subscriber),
		users:    make(map[int64][]string),
	}
}

// Register opens a stream for the session and returns its channel.
func (h *Hub) Register(sessionID string, userID int64) chan string {
	ch := make(chan string, 16)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[sessionID] = append(h.sessions[sessionID], subscriber{ch: ch, userID: userID})
	if !lo.Contains(h.users[userID], sessionID) {
		h.users[userID] = append(h.users[userID], sessionID)
	}
	return ch
}

// Unregister closes ch and forgets it.
func (h *Hub) Unregister(sessionID string, userID int64, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := lo.Reject(h.sessions[sessionID], func(s subscriber, _ int) bool {
		return s.ch == ch
	})
	if len(remaining) > 0 {
		h.sessions[sessionID] = remaining
	} else {
		delete(h.sessions, sessionID)
		h.users[userID] = lo.Without(h.users[userID], sessionID)
		if len(h.users[userID]) == 0 {
			delete(h.users, userID)
		}
	}
	close(ch)
}

// SendToSession delivers msg to every stream of a session. Full buffers drop
// the message.
func (h *Hub) SendToSession(sessionID, msg string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.sessions[sessionID], msg)
}

// SendToUser delivers msg to all sessions of a user.
func (h *Hub) SendToUser(userID int64, msg string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sessionID := range h.users[userID] {
		h.deliver(h.sessions[sessionID], msg)
	}
}

// Broadcast delivers msg to every open stream.
func (h *Hub) Broadcast(msg string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subs := range h.sessions {
		h.deliver(subs, msg)
	}
}

func (h *Hub) deliver(subs []subscriber, msg string) {
	for _, s := range subs {
		select {
		case s.ch <- msg:
		default:
		}
	}
}

// BoardChanged tells the owner's browsers that their board needs a refresh.
func (h *Hub) BoardChanged(userID int64, action string, taskID int64) {
	msg, err := FormatJSON(EventBoardUpdated, BoardChange{Action: action, TaskID: taskID, UserID: userID})
	if err != nil {
		slog.Error("sse_encode_failed", "event", EventBoardUpdated, "error", err)
		return
	}
	h.SendToUser(userID, msg)
}

// TagsChanged tells every browser that the shared tag list changed.
func (h *Hub) TagsChanged() {
	h.Broadcast(FormatEvent(EventTagsUpdated, "{}"))
}

// ClientCount returns the number of open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.SumBy(lo.Values(h.sessions), func(subs []subscriber) int {
		return len(subs)
	})
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}
