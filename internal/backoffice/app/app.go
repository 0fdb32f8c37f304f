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

	httpapi "github.com/aussiebroadwan/escritorio/internal/backoffice/http"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store/drivers/sqlite"
	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application owns the back office service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         *sqlite.Store
	keyManager *jwtx.KeyManager
	sealer     *cryptox.Sealer

	authService           *service.AuthService
	userService           *service.UserService
	clientService         *service.ClientService
	invoiceService        *service.InvoiceService
	reconciliationService *service.ReconciliationService
	guiaService           *service.GuiaService
	leadService           *service.LeadService
	licenseService        *service.LicenseService
	chatService           *service.ChatService
	meiService            *service.MEIService
	housekeepingService   *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "backoffice",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	km, sealer, err := InitKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keyManager = km
	app.sealer = sealer

	app.initServices()

	if err := app.bootstrap(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("backoffice service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the application. Open chat streams end with
// their request context, so they do not hold the grace period.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down backoffice service...")

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

	app.logger.Info("backoffice service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		KeyManager: app.keyManager,
		Sealer:     app.sealer,
		Issuer:     app.cfg.Issuer,
		Audience:   []string{Audience},
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.clientService = &service.ClientService{Store: app.db}
	app.invoiceService = &service.InvoiceService{Store: app.db}
	app.reconciliationService = &service.ReconciliationService{Store: app.db}
	app.guiaService = &service.GuiaService{Store: app.db}
	app.leadService = &service.LeadService{Store: app.db}
	app.licenseService = &service.LicenseService{Store: app.db, Warning: app.cfg.LicenseExpiryWarning}
	app.chatService = &service.ChatService{Store: app.db, Hub: service.NewHub()}
	app.meiService = &service.MEIService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.guiaService,
		app.licenseService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// bootstrap creates the first admin when the users table is empty and
// credentials were configured.
func (app *Application) bootstrap(ctx context.Context) error {
	if app.cfg.BootstrapUsername == "" || app.cfg.BootstrapPassword == "" {
		return nil
	}
	created, err := app.userService.Bootstrap(ctx, app.cfg.BootstrapUsername, app.cfg.BootstrapPassword)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	if created {
		app.logger.Info("bootstrap admin created", "username", app.cfg.BootstrapUsername)
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.cfg.AllowedOrigins,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.ClientService = app.clientService
	router.InvoiceService = app.invoiceService
	router.ReconciliationService = app.reconciliationService
	router.GuiaService = app.guiaService
	router.LeadService = app.leadService
	router.LicenseService = app.licenseService
	router.ChatService = app.chatService
	router.MEIService = app.meiService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
