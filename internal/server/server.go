// Package server provides the main server initialization and run logic.
package server

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

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/access"
	"github.com/nebari-dev/attributes/internal/api"
	"github.com/nebari-dev/attributes/internal/api/handlers"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/config"
	"github.com/nebari-dev/attributes/internal/datetime"
	"github.com/nebari-dev/attributes/internal/db"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/entityform"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/logger"
	"github.com/nebari-dev/attributes/internal/messenger"
	"github.com/nebari-dev/attributes/internal/permissions"
	"github.com/nebari-dev/attributes/internal/rbac"
	"github.com/nebari-dev/attributes/internal/service"
	"github.com/nebari-dev/attributes/internal/translation"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Config holds the server configuration options.
type Config struct {
	Port       int    // Port to run the server on (0 = use config default)
	ConfigFile string // Explicit config file; empty searches the default paths
	Version    string // Version string to report
}

// App is the wired application: storage, services and form handlers.
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Forms       entityform.Deps
	Permissions *permissions.Generator
	Users       *service.UserService
	Messenger   messenger.Messenger
}

// LoadConfig reads the configuration file named by path, or searches the
// default locations when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// openDatabase is replaced in tests to observe the connection.
var openDatabase = db.New

// NewApp connects the database, runs migrations and wires every service.
// The connection is closed again when a later step fails.
func NewApp(appCfg *config.Config) (_ *App, err error) {
	// Propagate app log level to database if not explicitly set
	if appCfg.Database.LogLevel == "" {
		appCfg.Database.LogLevel = appCfg.Log.Level
	}

	database, err := openDatabase(appCfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err != nil {
			closeDB(database)
		}
	}()
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	if err := db.Migrate(database, db.Dialect(appCfg.Database.Driver)); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	if err := rbac.InitEnforcer(database, slog.Default()); err != nil {
		return nil, fmt.Errorf("failed to initialize RBAC: %w", err)
	}

	translator, err := i18n.NewTranslator(appCfg.Content.DefaultLangcode, appCfg.Content.Languages)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize languages: %w", err)
	}
	if err := loadCatalogs(translator, appCfg.Content.TranslationsDir); err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	dates, err := datetime.NewFormatter(appCfg.Content.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize date formatter: %w", err)
	}

	msgr, err := createMessenger(appCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messenger: %w", err)
	}
	slog.Info("Messenger initialized", "type", appCfg.Messenger.Type)

	fields := entity.AttributeBaseFields()
	types := service.NewAttributeTypeService(database)
	users := service.NewUserService(database)

	return &App{
		Config: appCfg,
		DB:     database,
		Forms: entityform.Deps{
			Attributes:  service.NewAttributeService(database, appCfg.Content, dates),
			Types:       types,
			Languages:   service.NewLanguageSettingsService(database),
			Users:       users,
			Access:      access.NewHandler(access.RBAC{}),
			Translation: translation.NewHandler(fields, dates, translator, users),
			Messenger:   msgr,
			Translator:  translator,
			Dates:       dates,
			Fields:      fields,
			Modules:     appCfg.Modules,
			Logger:      slog.Default(),
		},
		Permissions: permissions.NewGenerator(types, translator),
		Users:       users,
		Messenger:   msgr,
	}, nil
}

// Router builds the HTTP handler of the app.
func (a *App) Router() *gin.Engine {
	return api.NewRouter(a.Config, api.Dependencies{
		DB:            a.DB,
		Forms:         a.Forms,
		Authenticator: auth.NewBasicAuthenticator(a.Users, a.Config.Auth.JWTSecret),
		Permissions:   a.Permissions,
	})
}

// Close releases the messenger and the database connection.
func (a *App) Close() error {
	var errs []error
	if a.Messenger != nil {
		errs = append(errs, a.Messenger.Close())
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

func loadCatalogs(translator *i18n.Translator, dir string) error {
	n, err := translator.LoadCatalogs(i18n.Builtin())
	if err != nil {
		return err
	}
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return err
		}
		m, err := translator.LoadCatalogs(os.DirFS(dir))
		if err != nil {
			return fmt.Errorf("%s: %w", dir, err)
		}
		n += m
	}
	slog.Info("Translations loaded", "entries", n, "dir", dir)
	return nil
}

func closeDB(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	// Set version in handlers
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	appCfg, err := LoadConfig(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from CLI flag if provided
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}

	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting attributes server", "version", cfg.Version, "mode", appCfg.Server.Mode)

	app, err := NewApp(appCfg)
	if err != nil {
		return err
	}
	defer app.Close()

	// Create default admin user if configured
	if err := db.CreateDefaultAdmin(app.DB); err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("Server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Attributes server exited")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cfg)
}

// createMessenger creates the status message store based on configuration.
func createMessenger(cfg *config.Config) (messenger.Messenger, error) {
	switch cfg.Messenger.Type {
	case "memory", "":
		return messenger.NewMemoryMessenger(), nil
	case "valkey":
		if cfg.Messenger.ValkeyAddr == "" {
			return nil, fmt.Errorf("valkey address is required when messenger type is valkey")
		}
		return messenger.NewValkeyMessenger(cfg.Messenger.ValkeyAddr)
	default:
		return nil, fmt.Errorf("unsupported messenger type: %s (supported: memory, valkey)", cfg.Messenger.Type)
	}
}
