package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
)

// HousekeepingService periodically reports store health and the audit
// failure counter. Attempts are append-only, so nothing is ever deleted.
type HousekeepingService struct {
	Store    store.Store
	Audit    *AuditRecorder
	Logger   *slog.Logger
	Interval time.Duration

	lastFailures int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(store store.Store, audit *AuditRecorder, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Audit:    audit,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down and waits for an in-progress check.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.check()

	for {
		select {
		case <-ticker.C:
			s.check()
		case <-s.stopCh:
			return
		}
	}
}

// check logs one health report. It reports whether the store answered.
func (s *HousekeepingService) check() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	healthy := true
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Error("store ping failed", "error", err)
		healthy = false
	}

	attempts, err := s.Store.Attempts().CountAttempts(ctx)
	if err != nil {
		s.Logger.Error("count attempts failed", "error", err)
		healthy = false
	}

	var failures int64
	if s.Audit != nil {
		failures = s.Audit.Failures()
	}

	lvl := slog.LevelInfo
	if failures > s.lastFailures {
		lvl = slog.LevelWarn
	}
	s.Logger.Log(ctx, lvl, "housekeeping report",
		"healthy", healthy,
		"attempts", attempts,
		"audit_failures", failures,
		"audit_failures_since_last", failures-s.lastFailures,
	)
	s.lastFailures = failures

	return healthy
}
