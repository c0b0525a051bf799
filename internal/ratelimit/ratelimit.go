// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ratelimit counts events per key in fixed time windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more event for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window limiter kept in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*window
	rate    int
	period  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter allows rate events per key within each period.
func NewMemoryLimiter(rate int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*window),
		rate:    rate,
		period:  period,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (m *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	m.now = now
	return m
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	w, ok := m.entries[key]
	if !ok {
		m.entries[key] = &window{count: 1, resetAt: now.Add(m.period)}
		return m.rate >= 1, nil
	}
	if w.count >= m.rate {
		return false, nil
	}
	w.count++
	return true, nil
}

// Reset forgets all events for key.
func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// sweep drops windows that have ended. Caller holds the lock.
func (m *MemoryLimiter) sweep(now time.Time) {
	for key, w := range m.entries {
		if !now.Before(w.resetAt) {
			delete(m.entries, key)
		}
	}
}
