package main

import (
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cashbook/internal/app"
	"cashbook/internal/cache"
	"cashbook/internal/cli"
	apphttp "cashbook/internal/http"
	"cashbook/internal/ledger/rest"
	"cashbook/internal/log"
	"cashbook/internal/prefs"
	"cashbook/internal/storage"
	"cashbook/internal/worker"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	store := rest.NewClient(cfg.StoreURL, cfg.StoreTimeout).
		WithLogger(logger.WithComponent(log.ComponentLedger))

	// Preferences live in the local database when one is configured.
	var prefStore prefs.Store = prefs.NewMemory()
	if cfg.DataBackend == "sqlite" {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Warn("Preferences database unavailable, keeping them in memory",
				log.FieldError, err,
				"path", cfg.SQLiteDBPath)
		} else {
			defer repo.Close()
			prefStore = repo
		}
	}

	ctrl := app.NewController(store, prefStore, app.Options{
		Locale:          cfg.Language(),
		ReportCacheSize: cfg.ReportCacheSize,
		ReportCacheTTL:  cfg.ReportCacheTTL,
	}, logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	q := ctrl.LoadPreferences(ctx)
	logger.Info("Loaded preferences",
		"filter", q.Category,
		"sort", string(q.Sort))

	caches := cache.NewManager()
	caches.Register(ctrl.Documents())

	srv := apphttp.NewServer(":"+cfg.Port, ctrl, logger)
	srv.MaxHeaderBytes = 1 << 16

	logger.Info("Starting cashbook dashboard",
		"port", cfg.Port,
		"store_url", cfg.StoreURL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cli.Serve(gctx, srv, cli.ShutdownTimeout)
	})
	g.Go(func() error {
		return worker.NewHealthPoller(ctrl, cfg.HealthInterval, cfg.StoreTimeout).Run(gctx)
	})
	g.Go(func() error {
		return caches.Run(gctx, time.Minute)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Dashboard stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Dashboard stopped gracefully")
	return nil
}
