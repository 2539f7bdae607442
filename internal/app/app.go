package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/permitpulse/config"
	"github.com/guttosm/permitpulse/internal/api"
	"github.com/guttosm/permitpulse/internal/cache"
	"github.com/guttosm/permitpulse/internal/logger"
	"github.com/guttosm/permitpulse/internal/render"
	"github.com/guttosm/permitpulse/internal/service"
	"github.com/guttosm/permitpulse/internal/storage"
)

// migrator is an indirection used by InitializeApp; overridden in tests.
var migrator = storage.RunMigrations

// Branding maps the report settings to the renderer's presentation options.
func Branding(cfg config.ReportConfig) render.Branding {
	return render.Branding{
		Title:          cfg.Title,
		CurrencyLabel:  cfg.CurrencyLabel,
		CurrencySymbol: cfg.CurrencySymbol,
	}
}

// NewReportService assembles the report service from configuration.
// runs may be nil to generate reports without recording history.
func NewReportService(cfg config.Config, runs storage.RunsRepository) (service.ReportService, error) {
	renderer, err := render.NewPDFRenderer(Branding(cfg.Report))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pdf renderer: %w", err)
	}
	store := cache.NewDocumentStore(cfg.Report.CacheSize, cfg.Report.CacheTTL)
	return service.NewReportService(renderer, store, runs), nil
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Applies the embedded migrations when MIGRATE_ON_START is set.
//   - Builds the runs repository, document store, PDF renderer and report service.
//   - Creates the HTTP handler and router, then registers health probes.
//   - Provides a cleanup function to close the DB connection.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	fail := func(err error) (*gin.Engine, func(), error) {
		_ = db.Close()
		return nil, nil, err
	}

	if cfg.Postgres.MigrateOnStart {
		if err := migrator(context.Background(), db); err != nil {
			return fail(fmt.Errorf("failed to apply migrations: %w", err))
		}
		logger.L().Info().Msg("migrations applied")
	}

	svc, err := NewReportService(cfg, storage.NewRunsRepository(db))
	if err != nil {
		return fail(err)
	}

	handler := api.NewHandler(svc, Branding(cfg.Report))
	router, err := api.NewRouter(handler, cfg.Server)
	if err != nil {
		return fail(fmt.Errorf("failed to build router: %w", err))
	}

	api.NewHealthHandler(db.PingContext).Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}

// OpenRunsRepository connects to the history database for callers outside
// the HTTP server, such as the report CLI. The returned func closes the pool.
func OpenRunsRepository(cfg config.Config) (storage.RunsRepository, func(), error) {
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	return storage.NewRunsRepository(db), func() { _ = db.Close() }, nil
}
