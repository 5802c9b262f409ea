package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stocksentinel/alerts-core/backend/internal/alerts"
	"github.com/stocksentinel/alerts-core/backend/internal/config"
	"github.com/stocksentinel/alerts-core/backend/internal/http"
	"github.com/stocksentinel/alerts-core/backend/internal/ingest"
	"github.com/stocksentinel/alerts-core/backend/internal/logging"
	"github.com/stocksentinel/alerts-core/backend/internal/notify"
	"github.com/stocksentinel/alerts-core/backend/internal/repository"
	"github.com/stocksentinel/alerts-core/backend/internal/service"
	"github.com/stocksentinel/alerts-core/backend/internal/snapshot"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogDropFilters)

	// Initialize repository
	repo, err := repository.NewHistoryRepository(cfg.DBPath, repository.DatabaseType(cfg.DBBackend))
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize history repository")
	}
	defer repo.Close()

	if err := repo.VerifySchema(); err != nil {
		logger.WithError(err).Fatal("history store schema check failed")
	}

	historyService := service.NewHistoryService(repo, logger)
	sink := notify.NewLogSink(logger)

	// The demo provider ships static catalog data; a live integration
	// replaces it behind the same interface.
	provider := snapshot.NewDemoProvider()

	scheduler := alerts.NewScheduler(provider, sink, cfg.Thresholds, cfg.CheckInterval, logger)
	scheduler.Start()
	defer scheduler.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AMQPURL != "" {
		consumer, err := ingest.NewConsumer(cfg.AMQPURL, cfg.AMQPQueue, historyService, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect inventory change consumer")
		}
		defer consumer.Close()

		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Fatal("failed to start inventory change consumer")
		}
	}

	app := http.NewApp(http.Deps{
		History:   historyService,
		Scheduler: scheduler,
		Sink:      sink,
		Config:    cfg,
		Logger:    logger,
	})

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("inventory alerts backend listening")
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.WithError(err).Error("http shutdown failed")
	}
}
