package main

import (
	"os"

	"cashbook/internal/api"
	"cashbook/internal/backend"
	"cashbook/internal/cli"
	"cashbook/internal/log"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run returns once the store has stopped and its backend is released; a
// non-nil error has already been logged.
func run() error {
	cfg, logger := cli.Bootstrap(log.ComponentAPI)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		return err
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		return err
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv := api.NewServer(":"+cfg.StorePort, result.Service, logger)

	logger.Info("Starting cashbook store",
		"port", cfg.StorePort,
		"backend", cfg.DataBackend,
		"events", cfg.AMQPEnabled())
	if err := cli.Serve(ctx, srv, cli.ShutdownTimeout); err != nil {
		logger.Error("Store stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Store stopped gracefully")
	return nil
}
