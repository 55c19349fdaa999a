package main

import (
	"context"
	"errors"
	"os"

	"cashbook/internal/amqp"
	"cashbook/internal/cli"
	"cashbook/internal/log"
	"cashbook/internal/worker"
)

const auditBatchSize = 100

var errNoBroker = errors.New("AMQP_URL is required by the audit worker")

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	if !cfg.AMQPEnabled() {
		logger.Error(errNoBroker.Error())
		return errNoBroker
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return err
	}
	defer client.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	audit := worker.NewAuditWorker(repo, auditBatchSize)

	logger.Info("Performing startup audit check...")
	if err := audit.StartupAuditCheck(ctx); err != nil {
		// the consumer still runs; the next restart retries the backfill
		logger.Error("Startup audit check failed", log.FieldError, err)
	}

	logger.Info("Consuming transaction events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	if err := client.Consume(ctx, audit.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Worker stopped gracefully")
	return nil
}
