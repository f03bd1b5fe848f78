package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"frogbudget/internal/amqp"
	"frogbudget/internal/analytics"
	"frogbudget/internal/cache"
	"frogbudget/internal/cli"
	applog "frogbudget/internal/log"
	"frogbudget/internal/sheets"
	gsheet "frogbudget/internal/sheets/google"
	mem "frogbudget/internal/sheets/memory"
	"frogbudget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("starting frogbudget-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var mirror sheets.PurchaseWriter
	switch cfg.SheetsMirror {
	case "google":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "memory":
		mirror = mem.New()
		logger.Info("in-memory mirror enabled")
	default:
		logger.Info("purchase mirroring disabled")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	results := cache.NewLRUCache[*analytics.Result](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager()
	manager.Register(results)
	manager.StartCleanup(10 * time.Minute)
	defer manager.Stop()

	changeWorker := worker.NewChangeWorker(repo, results, mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeChanges(gctx, func(msg *amqp.ChangeMessage) error {
			return changeWorker.HandleChange(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("worker stopped gracefully")
}
