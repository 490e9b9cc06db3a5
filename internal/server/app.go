// Package server initializes and runs the notemint server: database and
// migrations, services, external ledger and key-derivation clients, and the
// HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"notemint/internal/logging"
	"notemint/internal/server/archive"
	"notemint/internal/server/config"
	"notemint/internal/server/httpapi"
	"notemint/internal/server/ledger"
	"notemint/internal/server/repositories/repomanager"
	"notemint/internal/server/services"
	"notemint/internal/server/vetkd"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var keyClient vetkd.Client
	if cfg.VetKDEndpoint != "" {
		keyClient = vetkd.NewHTTPClient(cfg.VetKDEndpoint)
	} else {
		logger.Warn(ctx, "no key-derivation endpoint configured, using insecure local deriver")
		keyClient = vetkd.NewLocalDeriver([]byte(cfg.VetKDMasterSecret))
	}

	var archiver services.Archiver
	if cfg.ArchiveEnabled {
		archiver = archive.NewService(cfg)
	}

	limits := services.NewLimitsService(db, rm, cfg)
	svcs := httpapi.Services{
		Notes:    services.NewNoteService(db, rm, limits),
		Nfts:     services.NewNftService(db, rm, limits, archiver),
		Market:   services.NewMarketService(db, rm, ledger.NewHTTPClient(cfg.LedgerEndpoint), cfg),
		Keys:     services.NewKeysService(db, rm, keyClient),
		Profiles: services.NewProfileService(db, rm),
		Limits:   limits,
	}

	router := httpapi.NewRouter(svcs, cfg, logger)
	srv := httpapi.NewServer(cfg.EndpointAddr, router, logger)

	return &App{config: cfg, logger: logger, db: db, router: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancelFunc)

	if err := app.router.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}

	app.logger.Info(ctx, "app stopped")
}
