package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"caixa/internal/amqp"
	"caixa/internal/backend"
	"caixa/internal/cli"
	"caixa/internal/journal"
	"caixa/internal/log"
	"caixa/internal/mirror"
	"caixa/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting caixa-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateRepository(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Storage cleanup error", log.FieldError, err)
			}
		}
	}()

	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Error("Failed to open journal", log.FieldError, err, "path", cfg.JournalPath)
		os.Exit(1)
	}

	// Sheets mirroring is optional. The journal alone already gives a
	// durable export.
	var sheets worker.Mirror
	if cfg.SheetsMirror {
		client, err := mirror.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize sheets mirror", log.FieldError, err)
			os.Exit(1)
		}
		sheets = client
		logger.Info("Sheets mirror initialized")
	} else {
		logger.Info("Sheets mirror disabled")
	}

	// The worker is useless without a broker to consume from.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewJournalWorker(result.Repository, jnl, sheets)

	// Rebuild the journal from the store before consuming, catching up
	// on anything missed while the worker was down.
	if err := w.Snapshot(ctx); err != nil {
		logger.Error("Startup snapshot failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
			return w.HandleEvent(ctx, msg)
		})
	})

	g.Go(func() error {
		return w.Run(ctx, cfg.CompactInterval, cfg.SnapshotInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
