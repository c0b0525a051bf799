// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/assets"
	"codeberg.org/oliverandrich/taskboard/internal/config"
	"codeberg.org/oliverandrich/taskboard/internal/database"
	"codeberg.org/oliverandrich/taskboard/internal/handlers"
	"codeberg.org/oliverandrich/taskboard/internal/i18n"
	authmw "codeberg.org/oliverandrich/taskboard/internal/middleware"
	"codeberg.org/oliverandrich/taskboard/internal/ratelimit"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/services/auth"
	"codeberg.org/oliverandrich/taskboard/internal/services/email"
	"codeberg.org/oliverandrich/taskboard/internal/services/passcode"
	"codeberg.org/oliverandrich/taskboard/internal/services/session"
	"codeberg.org/oliverandrich/taskboard/internal/services/tags"
	"codeberg.org/oliverandrich/taskboard/internal/services/tasks"
	"codeberg.org/oliverandrich/taskboard/internal/services/users"
	"codeberg.org/oliverandrich/taskboard/internal/sse"
	"codeberg.org/oliverandrich/taskboard/internal/validate"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// App wires the services behind the HTTP routes.
type App struct {
	Config    *config.Config
	Repo      *repository.Repository
	Sessions  *session.Manager
	Accounts  *auth.Service
	Passcodes *passcode.Service
	Tasks     *tasks.Service
	Tags      *tags.Service
	Users     *users.Service
	Hub       *sse.Hub
}

// NewApp builds the services on top of repo. A nil limiter disables
// passcode send throttling.
func NewApp(cfg *config.Config, repo *repository.Repository, mailer email.Mailer, limiter ratelimit.Limiter) (*App, error) {
	sessions, err := session.NewManager(&cfg.Session, cfg.IsSecure())
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	hub := sse.NewHub()
	accounts := auth.NewService(repo)
	codes := passcode.NewService(repo, accounts, mailer, &cfg.Passcode)
	if limiter != nil {
		codes.WithLimiter(limiter)
	}

	return &App{
		Config:    cfg,
		Repo:      repo,
		Sessions:  sessions,
		Accounts:  accounts,
		Passcodes: codes,
		Tasks:     tasks.NewService(repo, hub),
		Tags:      tags.NewService(repo, hub),
		Users:     users.NewService(repo),
		Hub:       hub,
	}, nil
}

// Echo returns the configured HTTP server.
func (a *App) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.EchoValidator{}
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	setupMiddleware(e, a.Config, findAssets(), a.Sessions, a.Repo)
	a.setupRoutes(e)
	return e
}

func (a *App) setupRoutes(e *echo.Echo) {
	h := handlers.New(a.Repo)
	authH := handlers.NewAuth(a.Passcodes, a.Sessions)
	taskH := handlers.NewTasks(a.Tasks)
	tagH := handlers.NewTags(a.Tags)
	adminH := handlers.NewAdmin(a.Users, a.Tasks, a.Tags, a.Sessions)
	sseH := handlers.NewSSEHandler(a.Hub)
	e.Server.RegisterOnShutdown(sseH.Close)
	e.TLSServer.RegisterOnShutdown(sseH.Close)

	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", assets.FileServer())))

	e.GET("/health", h.Health)
	e.GET("/", h.Home)

	e.GET("/login", authH.LoginPage)
	e.POST("/otp/send", authH.SendCode)
	e.GET("/otp/verify", authH.VerifyPage)
	e.POST("/otp/verify", authH.VerifyCode)
	e.POST("/otp/resend", authH.ResendCode)
	e.POST("/logout", authH.Logout)

	user := authmw.RequireAuth
	e.GET("/board", taskH.Board, user)
	e.GET("/events", sseH.Events, user)

	e.GET("/tasks", taskH.List, user)
	e.POST("/tasks", taskH.Create, user)
	e.GET("/tasks/:id", taskH.Get, user)
	e.PATCH("/tasks/:id", taskH.Update, user)
	e.DELETE("/tasks/:id", taskH.Delete, user)
	e.PATCH("/tasks/:id/toggle-hidden", taskH.ToggleHidden, user)
	e.PATCH("/tasks/:id/status", taskH.UpdateStatus, user)

	e.GET("/tags", tagH.List, user)
	e.POST("/tags", tagH.Create, user)
	e.PATCH("/tags/:id", tagH.Update, user)
	e.DELETE("/tags/:id", tagH.Delete, user)

	admin := e.Group("/admin", authmw.RequireAuth, authmw.RequireAdmin)
	admin.GET("", adminH.Dashboard)
	admin.GET("/users", adminH.Users)
	admin.GET("/users/:id", adminH.User)
	admin.GET("/users/:id/board", adminH.UserBoard)
	admin.POST("/users/:id", adminH.UpdateUser)
	admin.PATCH("/users/:id", adminH.UpdateUser)
	admin.POST("/users/:id/delete", adminH.DeleteUser)
	admin.DELETE("/users/:id", adminH.DeleteUser)

	admin.GET("/tags", adminH.TagsPage)
	admin.GET("/tags/system", adminH.ListSystemTags)
	admin.POST("/tags/system", adminH.CreateSystemTag)
	admin.PATCH("/tags/system/:id", adminH.UpdateSystemTag)
	admin.DELETE("/tags/system/:id", adminH.DeleteSystemTag)
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log, cmd.Root().Version)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	repo := repository.New(db)

	mailer, err := email.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up mail: %w", err)
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	app, err := NewApp(cfg, repo, mailer, limiter)
	if err != nil {
		return err
	}

	if cfg.Admin.Email != "" {
		if _, err := app.Accounts.EnsureAdmin(ctx, cfg.Admin.Email); err != nil {
			return fmt.Errorf("failed to ensure admin: %w", err)
		}
	}

	return startWithGracefulShutdown(app.Echo(), cfg)
}

// newLimiter returns the passcode send limiter the configuration asks for:
// none, process memory, or Redis when an address is set.
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	noop := func() {}
	pc := cfg.Passcode
	if pc.SendLimit <= 0 {
		return nil, noop, nil
	}

	if cfg.Redis.Addr == "" {
		slog.Info("passcode_rate_limit", "backend", "memory", "limit", pc.SendLimit, "window", pc.SendWindow)
		return ratelimit.NewMemoryLimiter(pc.SendLimit, pc.SendWindow), noop, nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("passcode_rate_limit", "backend", "redis", "addr", cfg.Redis.Addr, "limit", pc.SendLimit, "window", pc.SendWindow)
	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Error("failed to close redis", "error", err)
		}
	}
	return ratelimit.NewRedisLimiter(client, "passcode:", pc.SendLimit, pc.SendWindow), closeFn, nil
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP→HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
