// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session issues the signed cookies that carry login state:
// the long-lived user session, the short-lived pending login between
// sending and verifying a passcode, and one-shot flash messages.
package session

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	PendingCookieName = "_pending_login"
	FlashCookieName   = "_flash"

	// PendingTTL bounds how long the verify form remembers the email.
	PendingTTL = 15 * time.Minute
	flashTTL   = 5 * time.Minute
)

// Data is the content of an authenticated session cookie.
type Data struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"uid"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"exp"`
}

// Pending carries the email from the send step to the verify step.
type Pending struct {
	Email     string    `json:"email"`
	Message   string    `json:"msg,omitempty"`
	Next      string    `json:"next,omitempty"`
	ExpiresAt time.Time `json:"exp"`
}

// Flash is a message shown once on the next page.
type Flash struct {
	Kind    string `json:"kind"` // success, error
	Message string `json:"msg"`
}

type Manager struct {
	cfg     *config.SessionConfig
	codec   *securecookie.SecureCookie
	pending *securecookie.SecureCookie
	flash   *securecookie.SecureCookie
	secure  bool
	now     func() time.Time
}

// NewManager builds a Manager from hex-encoded keys. An empty hash key is
// replaced by a random one, which invalidates sessions on restart.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		slog.Warn("session_hash_key_generated", "hint", "set --session-hash-key to keep sessions across restarts")
		hashKey = securecookie.GenerateRandomKey(32)
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	newCodec := func(maxAge int) *securecookie.SecureCookie {
		sc := securecookie.New(hashKey, blockKey)
		sc.SetSerializer(securecookie.JSONEncoder{})
		sc.MaxAge(maxAge)
		return sc
	}

	return &Manager{
		cfg:     cfg,
		codec:   newCodec(cfg.MaxAge),
		pending: newCodec(int(PendingTTL.Seconds())),
		flash:   newCodec(int(flashTTL.Seconds())),
		secure:  secure,
		now:     time.Now,
	}, nil
}

func decodeKey(value, name string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", name, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid session %s key: must be 32 bytes, got %d", name, len(key))
	}
	return key, nil
}

// WithClock replaces the time source. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Create returns a persistent session cookie for the user.
func (m *Manager) Create(userID int64, email string) (*http.Cookie, error) {
	data := Data{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		ExpiresAt: m.now().Add(time.Duration(m.cfg.MaxAge) * time.Second),
	}

	value, err := m.codec.Encode(m.cfg.CookieName, data)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	return m.cookie(m.cfg.CookieName, value, m.cfg.MaxAge), nil
}

// Parse returns the session carried by the request. Missing, tampered and
// expired cookies yield a nil session without error.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil, nil //nolint:nilerr // no cookie means no session
	}

	var data Data
	if err := m.codec.Decode(m.cfg.CookieName, c.Value, &data); err != nil {
		return nil, nil //nolint:nilerr // invalid cookies are treated as logged out
	}
	if !m.now().Before(data.ExpiresAt) {
		return nil, nil
	}
	return &data, nil
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie(m.cfg.CookieName, "", -1)
}

// CreatePending stores the login-in-progress state.
func (m *Manager) CreatePending(p Pending) (*http.Cookie, error) {
	p.ExpiresAt = m.now().Add(PendingTTL)
	value, err := m.pending.Encode(PendingCookieName, p)
	if err != nil {
		return nil, fmt.Errorf("encode pending login: %w", err)
	}
	return m.cookie(PendingCookieName, value, int(PendingTTL.Seconds())), nil
}

// ParsePending returns the login-in-progress state or nil.
func (m *Manager) ParsePending(r *http.Request) *Pending {
	c, err := r.Cookie(PendingCookieName)
	if err != nil {
		return nil
	}
	var p Pending
	if err := m.pending.Decode(PendingCookieName, c.Value, &p); err != nil {
		return nil
	}
	if p.Email == "" || !m.now().Before(p.ExpiresAt) {
		return nil
	}
	return &p
}

// ClearPending returns a cookie that removes the pending login.
func (m *Manager) ClearPending() *http.Cookie {
	return m.cookie(PendingCookieName, "", -1)
}

// SetFlash writes a flash message for the next request.
func (m *Manager) SetFlash(w http.ResponseWriter, f Flash) error {
	value, err := m.flash.Encode(FlashCookieName, f)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	http.SetCookie(w, m.cookie(FlashCookieName, value, int(flashTTL.Seconds())))
	return nil
}

// PopFlash reads and removes the flash message, if any.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, m.cookie(FlashCookieName, "", -1))

	var f Flash
	if err := m.flash.Decode(FlashCookieName, c.Value, &f); err != nil {
		return nil
	}
	return &f
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
