package leaderboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SyncWorker seeds the ranking at boot and periodically reconciles it with
// the scores stored in Postgres, repairing any best effort write that failed.
type SyncWorker struct {
	svc      *Service
	logger   zerolog.Logger
	interval time.Duration
}

func NewSyncWorker(svc *Service, interval time.Duration, logger zerolog.Logger) *SyncWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &SyncWorker{
		svc:      svc,
		logger:   logger.With().Str("component", "leaderboard_sync_worker").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *SyncWorker) Run(ctx context.Context) error {
	if w.svc == nil {
		return nil
	}

	if seeded, err := w.svc.SeedIfEmpty(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("leaderboard seed failed")
	} else if seeded {
		w.logger.Info().Msg("leaderboard seeded from database")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SyncWorker) tick(ctx context.Context) {
	n, err := w.svc.Rebuild(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("leaderboard sync failed")
		return
	}
	w.logger.Debug().Int("entries", n).Msg("leaderboard synced")
}
