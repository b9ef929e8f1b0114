// File: internal/usecase/expiry_uc.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"museum-ticketing/internal/clock"
	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/repository"
	"museum-ticketing/internal/infra/logging"
	"museum-ticketing/internal/infra/metrics"
	"museum-ticketing/internal/infra/worker"
)

var _ ExpiryUseCase = (*expiryUC)(nil)

type ExpiryUseCase interface {
	// ExpireDue runs one sweep: scan settled unexpired purchases,
	// evaluate the expiration predicate at the current instant, and mark
	// the ones that crossed a threshold. Returns how many were marked.
	// A failure on one record never aborts the rest of the batch.
	ExpireDue(ctx context.Context) (int, error)
}

type expiryUC struct {
	purchases repository.PurchaseRepository
	clk       clock.Clock
	pool      *worker.Pool
	batchSize int
	log       *zerolog.Logger
}

func NewExpiryUseCase(purchases repository.PurchaseRepository, clk clock.Clock, pool *worker.Pool, batchSize int, logger *zerolog.Logger) *expiryUC {
	if batchSize <= 0 {
		batchSize = 500
	}
	l := logger.With().Str("component", "ExpiryUC").Logger()
	return &expiryUC{purchases: purchases, clk: clk, pool: pool, batchSize: batchSize, log: &l}
}

// DuePurchases is the pure sweep body: which of these records are
// expired as of now. Kept free of I/O so it can be tested directly.
func DuePurchases(batch []*model.Purchase, now time.Time) []*model.Purchase {
	var due []*model.Purchase
	for _, p := range batch {
		if p.ExpiredAt(now) {
			due = append(due, p)
		}
	}
	return due
}

func (u *expiryUC) ExpireDue(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "ExpiryUC.ExpireDue")()

	batch, err := u.purchases.ListSettledUnexpired(ctx, nil, u.batchSize)
	if err != nil {
		return 0, err
	}

	due := DuePurchases(batch, u.clk.Now())
	if len(due) == 0 {
		return 0, nil
	}

	var marked int64
	var wg sync.WaitGroup
	for _, p := range due {
		p := p
		run := func(taskCtx context.Context) error {
			defer wg.Done()
			err := u.purchases.MarkExpired(taskCtx, nil, p.OrderID, p.Version)
			switch {
			case err == nil:
				atomic.AddInt64(&marked, 1)
			case errors.Is(err, domain.ErrConflict):
				// Another path (usage report, access gate, concurrent
				// sweep) got there first or changed the row; the next
				// cycle re-evaluates.
			default:
				u.log.Error().Err(err).Int64("order_id", p.OrderID).Msg("mark expired failed; will retry next sweep")
			}
			return nil
		}

		wg.Add(1)
		if u.pool != nil {
			if err := u.pool.Submit(run); err == nil {
				continue
			}
		}
		// No pool or queue saturated: run inline.
		_ = run(ctx)
	}
	wg.Wait()

	n := int(atomic.LoadInt64(&marked))
	if n > 0 {
		metrics.IncPurchasesExpired(n)
	}
	return n, nil
}
