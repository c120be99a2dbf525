package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/campusworks/portal/internal/portal/http"
	"github.com/campusworks/portal/internal/portal/notify"
	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/internal/portal/store/drivers/sqlite"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/jwtx"
	"github.com/campusworks/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	signerKID = "portal-1"
)

// Application encapsulates the portal with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer
	keys   *jwtx.KeySet
	mailer notify.Mailer

	auditService       *service.AuditService
	otpService         *service.OTPService
	sessionService     *service.SessionService
	tokenService       *service.TokenService
	loginService       *service.LoginService
	adminService       *service.AdminService
	maintenanceService *service.MaintenanceService
	statsService       *service.StatsService
	cleanupService     *service.CleanupService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "campus-portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigner(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Services exposes the wired service layer for the CLI commands that operate
// on the same database without running the server.
func (app *Application) Services() (*service.AdminService, *service.MaintenanceService) {
	return app.adminService, app.maintenanceService
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.cleanupService.Start()

	app.logger.Info("portal starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.cleanupService.Stop()

	// Drain buffered audit entries before the database goes away.
	app.auditService.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("portal stopped")
	return nil
}

// Close releases resources without a graceful server shutdown. Used by CLI
// commands that never started the server.
func (app *Application) Close() {
	app.cleanupService.Stop()
	app.auditService.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
	}
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initSigner() error {
	if app.cfg.SigningKeyFile == "" {
		signer, err := jwtx.NewEphemeralSigner(signerKID)
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		app.signer = signer
		app.logger.Warn("using ephemeral signing key, access tokens will not survive a restart")
	} else {
		pemKey, err := os.ReadFile(app.cfg.SigningKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read signing key: %w", err)
		}
		signer, err := jwtx.NewSigner(signerKID, pemKey)
		if err != nil {
			return fmt.Errorf("failed to load signing key: %w", err)
		}
		app.signer = signer
	}

	app.keys = jwtx.NewKeySet()
	app.keys.AddSigner(app.signer)
	return nil
}

func (app *Application) initMailer() {
	if app.cfg.SMTPAddr == "" {
		app.logger.Warn("no SMTP relay configured, OTP mail will be logged instead")
		app.mailer = &notify.LogMailer{Logger: app.logger}
		return
	}

	app.mailer = &notify.SMTPMailer{
		Addr:        app.cfg.SMTPAddr,
		From:        app.cfg.SMTPFrom,
		DialTimeout: app.cfg.NotifyTimeout,
	}
}

func (app *Application) initServices() {
	app.auditService = service.NewAuditService(app.db, app.logger, 64)

	app.otpService = &service.OTPService{
		Store:         app.db,
		Mailer:        app.mailer,
		Audit:         app.auditService,
		NotifyTimeout: app.cfg.NotifyTimeout,
	}

	app.sessionService = &service.SessionService{Store: app.db}

	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.loginService = &service.LoginService{
		Store:    app.db,
		Sessions: app.sessionService,
		OTP:      app.otpService,
		Tokens:   app.tokenService,
		Audit:    app.auditService,
	}

	app.adminService = &service.AdminService{
		Store:         app.db,
		Mailer:        app.mailer,
		Audit:         app.auditService,
		NotifyTimeout: app.cfg.NotifyTimeout,
	}

	app.maintenanceService = &service.MaintenanceService{
		Store: app.db,
		Audit: app.auditService,
	}

	app.statsService = &service.StatsService{Store: app.db}

	app.cleanupService = service.NewCleanupService(app.db, app.logger, app.cfg.CleanupInterval)
}

func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifier(app.keys, app.cfg.Issuer)

	router := httpapi.NewRouter(
		app.keys,
		verifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.CookieSecure,
	)

	router.LoginService = app.loginService
	router.TokenService = app.tokenService
	router.AdminService = app.adminService
	router.SessionService = app.sessionService
	router.MaintenanceService = app.maintenanceService
	router.StatsService = app.statsService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
