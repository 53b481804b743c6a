package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/firemap-service/internal/adapter/firms"
	httpadapter "github.com/couchcryptid/firemap-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/firemap-service/internal/adapter/kafka"
	"github.com/couchcryptid/firemap-service/internal/config"
	"github.com/couchcryptid/firemap-service/internal/observability"
	"github.com/couchcryptid/firemap-service/internal/pipeline"
	"github.com/couchcryptid/firemap-service/internal/reference"
	"github.com/couchcryptid/firemap-service/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ref := loadReference(ctx, cfg, logger)
	metrics.ReferenceCountries.Set(float64(len(ref.Countries())))
	metrics.ReferenceCities.Set(float64(len(ref.Cities())))

	fetcher := firms.NewClient(cfg.FIRMSBaseURL, cfg.FIRMSMapKey, cfg.FIRMSSource, cfg.FIRMSArea,
		cfg.FIRMSDays, cfg.FIRMSTimeout, logger)

	// Kafka publication is feature-flagged via KAFKA_ENABLED.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaAreasTopic, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAreasTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	opts := pipeline.DefaultOptions()
	opts.MaxCityDistance = cfg.MaxCityDistance
	opts.Eps = cfg.ClusterEps
	opts.MinSamples = cfg.ClusterMinSamples

	svc := pipeline.NewService(fetcher, ref, snapshot.New(cfg.SnapshotCacheSize), publisher, opts, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh scheduler.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.Run(ctx, cfg.RefreshSchedule); err != nil {
			logger.Error("refresh scheduler error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("refresh scheduler did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadReference reads the country and city tables from Postgres when a
// database URL is configured, otherwise from files. Missing data degrades
// attribution to the defaults instead of stopping the service.
func loadReference(ctx context.Context, cfg *config.Config, logger *slog.Logger) *reference.Datasets {
	var loader reference.Loader = reference.FileLoader{
		CountriesPath: cfg.CountriesPath,
		CitiesPath:    cfg.CitiesPath,
		Logger:        logger,
	}
	source := "files"

	if cfg.ReferenceDatabaseURL != "" {
		pool, err := reference.NewPool(ctx, cfg.ReferenceDatabaseURL)
		if err != nil {
			logger.Error("reference database unavailable", "error", err)
			return reference.Empty()
		}
		defer pool.Close()
		loader = reference.NewPostgresLoader(pool)
		source = "postgres"
	}

	ref, err := reference.Load(ctx, loader, logger)
	if err != nil {
		logger.Warn("reference data degraded; unmatched points use default labels",
			"source", source, "error", err)
	}
	return ref
}
