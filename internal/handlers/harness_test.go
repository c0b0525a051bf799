// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/config"
	"codeberg.org/oliverandrich/taskboard/internal/server"
	"codeberg.org/oliverandrich/taskboard/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// fakeMailer remembers the last code sent to each address.
type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
}

func (m *fakeMailer) SendPasscode(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[to] = code
	m.sent++
	return nil
}

func (m *fakeMailer) code(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[to]
	require.True(t, ok, "no code sent to %s", to)
	return code
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "localhost",
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			MaxBodySize: 1,
		},
		Session: config.SessionConfig{
			CookieName: "_session",
			MaxAge:     3600,
			HashKey:    testHashKey,
		},
		Passcode: config.PasscodeConfig{TTL: 10 * time.Minute},
	}
}

type testEnv struct {
	app    *server.App
	mailer *fakeMailer
	srv    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	mailer := &fakeMailer{}

	app, err := server.NewApp(testConfig(), repo, mailer, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Echo())
	t.Cleanup(srv.Close)
	return &testEnv{app: app, mailer: mailer, srv: srv}
}

// browser is an HTTP client with a cookie jar that does not follow redirects.
type browser struct {
	t    *testing.T
	env  *testEnv
	http *http.Client
}

func (env *testEnv) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	b := &browser{
		t:   t,
		env: env,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	// Fetch a page to receive the CSRF cookie.
	resp := b.get("/login", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return b
}

func (b *browser) cookie(name string) string {
	u, err := url.Parse(b.env.srv.URL)
	require.NoError(b.t, err)
	for _, c := range b.http.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	if req.Method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", b.cookie("_csrf"))
	}
	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (b *browser) get(path string, wantJSON bool) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.env.srv.URL+path, nil)
	require.NoError(b.t, err)
	if wantJSON {
		req.Header.Set("Accept", "application/json")
	}
	return b.do(req)
}

func (b *browser) form(path string, values url.Values) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.env.srv.URL+path, strings.NewReader(values.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) json(method, path string, body any) *http.Response {
	b.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, b.env.srv.URL+path, r)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return b.do(req)
}

// login runs the passcode flow for addr and returns the logged-in browser.
func (env *testEnv) login(t *testing.T, addr string) *browser {
	t.Helper()
	b := env.browser(t)

	resp := b.form("/otp/send", url.Values{"email": {addr}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = b.form("/otp/verify", url.Values{"code": {env.mailer.code(t, addr)}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.NotEmpty(t, b.cookie("_session"))
	return b
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
