package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/infra/metrics"
	"museum-ticketing/internal/infra/redis"
	"museum-ticketing/internal/usecase"
)

const sweepLockKey = "lock:expiry_sweep"

// ExpiryWorker periodically expires due purchases via the use case.
// Each tick grabs a redis lock so that in a horizontally scaled
// deployment only one replica sweeps; a replica that loses the lock
// just skips the cycle. Correctness never depends on the lock: the
// expiration flag is an idempotent monotone set.
type ExpiryWorker struct {
	interval time.Duration
	lockTTL  time.Duration
	expiryUC usecase.ExpiryUseCase
	locker   redis.Locker
	log      *zerolog.Logger
}

func NewExpiryWorker(interval, lockTTL time.Duration, expiryUC usecase.ExpiryUseCase, locker redis.Locker, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	l := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		lockTTL:  lockTTL,
		expiryUC: expiryUC,
		locker:   locker,
		log:      &l,
	}
}

// Run blocks until ctx is cancelled. The sweep in flight when
// cancellation arrives drains through the use case before Run returns.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	token, err := w.locker.TryLock(ctx, sweepLockKey, w.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			metrics.IncSweepSkipped()
			w.log.Debug().Msg("sweep lock held by another replica; skipping cycle")
		} else {
			w.log.Error().Err(err).Msg("sweep lock error; skipping cycle")
		}
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, sweepLockKey, token); err != nil {
			w.log.Warn().Err(err).Msg("sweep lock release failed")
		}
	}()

	start := time.Now()
	n, err := w.expiryUC.ExpireDue(ctx)
	metrics.ObserveSweepDuration(time.Since(start).Seconds())
	if err != nil {
		metrics.IncSweepRun("error")
		w.log.Error().Err(err).Msg("expiry sweep error")
		return
	}
	metrics.IncSweepRun("ok")
	if n > 0 {
		w.log.Info().Int("count", n).Msg("expired purchases marked")
	}
}
