package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/splitx/internal/amqp"
	"github.com/mmynk/splitx/internal/config"
	"github.com/mmynk/splitx/internal/metrics"
	"github.com/mmynk/splitx/internal/reminder"
	"github.com/mmynk/splitx/internal/storage/sqlite"
	"github.com/mmynk/splitx/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("error", "text").Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting reminder-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	var publisher reminder.Publisher = reminder.NewLogPublisher(logger)
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - reminders will be logged only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	opts := []reminder.Option{reminder.WithWorkers(cfg.SweepWorkers)}
	if cfg.MetricsEnabled {
		m := metrics.New(prometheus.NewRegistry())
		opts = append(opts, reminder.WithMetrics(m))

		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.WorkerMetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer metricsServer.Close()
		logger.Info("Serving metrics", "address", metricsServer.Addr)
	}
	job := reminder.NewJob(store, publisher, opts...)

	logger.Info("Reminder sweep configured",
		"interval", cfg.ReminderInterval,
		"run_on_start", cfg.ReminderRunOnStart,
		"sqlite_db", cfg.DBPath)

	sweep := func() {
		if _, err := job.Run(ctx); err != nil {
			logger.Error("Reminder sweep failed", "error", err)
		}
	}

	if cfg.ReminderRunOnStart {
		logger.Info("Running initial reminder sweep...")
		sweep()
	}

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, reminder-worker stopping")
			return
		case now := <-ticker.C:
			logger.Info("Running reminder sweep", "at", now.Format(time.RFC3339))
			sweep()
		}
	}
}
