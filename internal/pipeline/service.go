package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/observability"
	"github.com/couchcryptid/firemap-service/internal/reference"
)

// Fetcher retrieves the current batch of fire points.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.Batch, error)
}

// Publisher forwards a finished snapshot downstream.
type Publisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// SnapshotStore keeps processed snapshots between requests.
type SnapshotStore interface {
	Put(snap domain.Snapshot)
	Latest() (domain.Snapshot, bool)
}

// Service runs fetch, pipeline, cache and publish cycles on a schedule and
// serves the newest snapshot.
type Service struct {
	fetcher   Fetcher
	ref       *reference.Datasets
	store     SnapshotStore
	publisher Publisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	newRunID  func() string

	mu    sync.Mutex // serialises refreshes
	ready atomic.Bool
}

// NewService wires a Service. publisher may be nil to skip publication.
func NewService(f Fetcher, ref *reference.Datasets, store SnapshotStore, publisher Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher:   f,
		ref:       ref,
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
		newRunID:  uuid.NewString,
	}
}

// CheckReadiness returns nil once a refresh has succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no fire data has been processed yet")
	}
	return nil
}

// Refresh fetches and processes a new batch. On failure the previously cached
// snapshot stays in place.
func (s *Service) Refresh(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Latest returns the newest cached snapshot, refreshing synchronously when the
// cache is empty. Concurrent callers on an empty cache share one refresh.
func (s *Service) Latest(ctx context.Context) (domain.Snapshot, error) {
	if snap, ok := s.store.Latest(); ok {
		s.metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.store.Latest(); ok {
		s.metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return snap, nil
	}
	s.metrics.SnapshotCache.WithLabelValues("miss").Inc()
	return s.refreshLocked(ctx)
}

// Run schedules refreshes and blocks until ctx is cancelled. An initial refresh
// runs immediately; its failure is logged and not fatal.
func (s *Service) Run(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", schedule, err)
	}

	s.logger.Info("refresh scheduler started", "schedule", schedule)
	s.metrics.ServiceRunning.Set(1)
	defer s.metrics.ServiceRunning.Set(0)

	c.Start()
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial refresh failed", "error", err)
	}

	<-ctx.Done()
	s.logger.Info("refresh scheduler stopping", "reason", ctx.Err())
	<-c.Stop().Done()
	return nil
}

func (s *Service) refreshLocked(ctx context.Context) (domain.Snapshot, error) {
	runID := s.newRunID()
	logger := s.logger.With("run_id", runID)

	start := time.Now()
	batch, err := s.fetcher.Fetch(ctx)
	s.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("fetch_error").Inc()
		logger.Error("fetch fire points failed", "error", err)
		return domain.Snapshot{}, fmt.Errorf("fetch fire points: %w", err)
	}

	runStart := time.Now()
	result, err := Run(batch.Points, s.ref, s.opts)
	s.metrics.PipelineRunDuration.Observe(time.Since(runStart).Seconds())
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("pipeline_error").Inc()
		logger.Error("pipeline run failed", "error", err, "points", len(batch.Points))
		return domain.Snapshot{}, err
	}

	snap := domain.NewSnapshot(runID, batch.FetchedAt, result)
	s.store.Put(snap)

	noise := result.NoiseCount()
	s.metrics.Refreshes.WithLabelValues("success").Inc()
	s.metrics.FirePointsProcessed.Add(float64(len(result.FirePoints)))
	s.metrics.FireAreasProduced.Set(float64(len(result.FireAreas)))
	s.metrics.NoisePoints.Set(float64(noise))
	s.ready.Store(true)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, snap); err != nil {
			s.metrics.PublishErrors.Inc()
			logger.Error("publish snapshot failed", "error", err)
		}
	}

	logger.Info("refresh complete",
		"source", batch.Source,
		"fetched_at", snap.FetchedAt,
		"points", len(result.FirePoints),
		"areas", len(result.FireAreas),
		"noise", noise,
		"duration", time.Since(start),
	)
	return snap, nil
}
