package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"frogbudget/internal/amqp"
	"frogbudget/internal/cli"
	apphttp "frogbudget/internal/http"
	applog "frogbudget/internal/log"
	"frogbudget/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	logger.Info("starting frogbudget server")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// AMQP is optional: without it mutations still persist, the change
	// worker just never hears about them.
	var amqpClient *amqp.Client
	if client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue); err != nil {
		logger.Warn("AMQP unavailable, change events disabled", applog.FieldError, err)
	} else {
		amqpClient = client
	}

	budget := services.NewBudgetService(repo, amqpClient)
	defer func() {
		if err := budget.Close(); err != nil {
			logger.Error("cleanup failed", applog.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, budget, cfg.CacheSize, cfg.CacheTTL, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("server stopped gracefully")
}
