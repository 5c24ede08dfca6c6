package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/charging-need-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/charging-need-service/internal/adapter/kafka"
	"github.com/couchcryptid/charging-need-service/internal/config"
	"github.com/couchcryptid/charging-need-service/internal/dataset"
	"github.com/couchcryptid/charging-need-service/internal/observability"
	"github.com/couchcryptid/charging-need-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := dataset.NewFileSource(cfg.StationsPath, cfg.SegmentsPath, cfg.CongestionPath, cfg.DedupeStations, logger)

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		publisher pipeline.LayerPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(source, publisher, logger, metrics, pipeline.Options{
		Need:      cfg.Need,
		Workers:   cfg.ScoringWorkers,
		CacheSize: cfg.LayerCacheSize,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SIGHUP reloads the datasets without restarting.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("reload requested")
				p.Trigger()
			}
		}
	}()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
