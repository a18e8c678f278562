package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/bioauth/internal/bioauth/http"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/aussiebroadwan/bioauth/pkg/extractor"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/jwtx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application owns the bioauth service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	hasher     *cryptox.Hasher
	extractor  extractor.Extractor
	policy     service.Policy

	// Services
	audit               *service.AuditRecorder
	authService         *service.AuthService
	identityService     *service.IdentityService
	statsService        *service.StatsService
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	logger, err := slogx.New(slogx.Config{
		Service: "bioauth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: logger,
		policy: cfg.Policy(),
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	if cfg.ExtractorURL != "" {
		app.extractor = extractor.NewClient(cfg.ExtractorURL, app.policy.TemplateBits)
	} else {
		logger.Warn("no extractor configured, image probes will be rejected")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitSessionKeys(cfg, logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("bioauth service starting",
		"port", app.cfg.Port,
		"driver", app.cfg.DatabaseDriver,
		"threshold", app.policy.DefaultThreshold,
		"template_bits", app.policy.TemplateBits,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down bioauth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("bioauth service stopped", "audit_failures", app.audit.Failures())
	return nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := OpenStore(ctx, app.cfg.DatabaseDriver, app.cfg.DSN())
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.audit = &service.AuditRecorder{
		Store:   app.db,
		Timeout: app.policy.StoreTimeout,
	}

	app.authService = &service.AuthService{
		Store:     app.db,
		Hasher:    app.hasher,
		Audit:     app.audit,
		Extractor: app.extractor,
		Policy:    app.policy,
	}
	app.identityService = &service.IdentityService{
		Store:     app.db,
		Hasher:    app.hasher,
		Extractor: app.extractor,
		Policy:    app.policy,
	}
	app.statsService = &service.StatsService{
		Store:  app.db,
		Policy: app.policy,
	}
	app.sessionService = &service.SessionService{
		KeyManager: app.keyManager,
		Issuer:     app.cfg.Issuer,
		TTL:        app.cfg.SessionTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.audit,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	httpx.LoadRateLimitsFromEnv()

	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.IdentityService = app.identityService
	router.StatsService = app.statsService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
