package core

// scheduler.go runs background maintenance for the service.
//
// Currently it sweeps expired entries out of the load cache. The janitor is
// long-running and context-aware for graceful shutdown.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the cache janitor runs when no interval
// is configured.
const DefaultSweepInterval = time.Minute

// StartCacheJanitor periodically removes expired cache entries until ctx is
// cancelled. It returns immediately when caching is disabled.
func (s *Service) StartCacheJanitor(ctx context.Context, interval time.Duration) {
	if s.cache == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	slog.Info("cache janitor started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cache janitor stopped")
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

// runSweep performs one sweep cycle.
func (s *Service) runSweep() {
	start := time.Now()
	removed := s.cache.Sweep()
	s.metrics.setCacheEntries(s.cache.Len())

	if removed > 0 {
		slog.Info("swept load cache",
			"entries_removed", removed,
			"entries_kept", s.cache.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
