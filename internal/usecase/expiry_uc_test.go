//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"museum-ticketing/internal/clock"
	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/infra/worker"
	"museum-ticketing/internal/usecase"
)

func settledAt(t *testing.T, orderID int64, limitHours int, createdAt time.Time) *model.Purchase {
	t.Helper()
	p, err := model.NewPurchase(orderID, "user-1", "ticket-1", "museum-1", 10_000, "EGP", limitHours, createdAt)
	if err != nil {
		t.Fatalf("new purchase: %v", err)
	}
	p.State = model.SettlementSettled
	return p
}

func TestDuePurchases(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Hour)

	fresh := settledAt(t, 1, 3, start)              // 1h of wall clock left
	pastDeadline := settledAt(t, 2, 2, start)       // deadline exactly now
	overUsed := settledAt(t, 3, 4, start)           // wall clock fine, budget burned
	overUsed.UsedMinutes = 240
	unlimited := settledAt(t, 4, 0, start)          // fallback window far away
	unlimited.UsedMinutes = 10_000                  // usage irrelevant without a limit

	due := usecase.DuePurchases([]*model.Purchase{fresh, pastDeadline, overUsed, unlimited}, now)
	if len(due) != 2 {
		t.Fatalf("due = %d records, want 2", len(due))
	}
	if due[0].OrderID != 2 || due[1].OrderID != 3 {
		t.Errorf("due order ids = %d,%d want 2,3", due[0].OrderID, due[1].OrderID)
	}

	if got := usecase.DuePurchases(nil, now); len(got) != 0 {
		t.Errorf("empty batch should produce no due records, got %d", len(got))
	}
}

func TestExpiryUseCase_ExpireDue(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("marks every due record", func(t *testing.T) {
		repo := newMemPurchaseRepo()
		repo.put(settledAt(t, 1, 2, start))
		repo.put(settledAt(t, 2, 2, start))
		repo.put(settledAt(t, 3, 48, start)) // still valid

		uc := usecase.NewExpiryUseCase(repo, clock.NewMockClock(start.Add(3*time.Hour)), nil, 100, newTestLogger())
		n, err := uc.ExpireDue(ctx)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if n != 2 {
			t.Errorf("marked = %d, want 2", n)
		}
		if !repo.get(1).ExpiredExplicitly || !repo.get(2).ExpiredExplicitly {
			t.Error("expected both due records flagged")
		}
		if repo.get(3).ExpiredExplicitly {
			t.Error("expected the valid record untouched")
		}
	})

	t.Run("second sweep finds nothing to do", func(t *testing.T) {
		repo := newMemPurchaseRepo()
		repo.put(settledAt(t, 1, 2, start))

		uc := usecase.NewExpiryUseCase(repo, clock.NewMockClock(start.Add(3*time.Hour)), nil, 100, newTestLogger())
		if n, err := uc.ExpireDue(ctx); err != nil || n != 1 {
			t.Fatalf("first sweep: n=%d err=%v", n, err)
		}
		if n, err := uc.ExpireDue(ctx); err != nil || n != 0 {
			t.Errorf("second sweep: n=%d err=%v, want 0/nil", n, err)
		}
	})

	t.Run("a conflicting record is skipped not retried", func(t *testing.T) {
		repo := newMemPurchaseRepo()
		repo.put(settledAt(t, 1, 2, start))
		// Every mark observes a version that went stale in the interim.
		repo.updateErr = domain.ErrConflict
		uc := usecase.NewExpiryUseCase(repo, clock.NewMockClock(start.Add(3*time.Hour)), nil, 100, newTestLogger())
		n, err := uc.ExpireDue(ctx)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if n != 0 {
			t.Errorf("marked = %d, want 0 when every mark conflicts", n)
		}
	})

	t.Run("one failing record does not abort the batch", func(t *testing.T) {
		repo := newMemPurchaseRepo()
		repo.put(settledAt(t, 1, 2, start))

		repo.updateErr = domain.ErrOperationFailed
		uc := usecase.NewExpiryUseCase(repo, clock.NewMockClock(start.Add(3*time.Hour)), nil, 100, newTestLogger())
		n, err := uc.ExpireDue(ctx)
		if err != nil {
			t.Fatalf("sweep should not propagate per-record errors, got: %v", err)
		}
		if n != 0 {
			t.Errorf("marked = %d, want 0", n)
		}
		// The record stays sweepable for the next cycle.
		repo.updateErr = nil
		if n, _ := uc.ExpireDue(ctx); n != 1 {
			t.Errorf("retry sweep marked = %d, want 1", n)
		}
	})

	t.Run("fans out through a worker pool", func(t *testing.T) {
		repo := newMemPurchaseRepo()
		for i := int64(1); i <= 4; i++ {
			repo.put(settledAt(t, i, 2, start))
		}
		pool := worker.NewPool(2, newTestLogger())
		pctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(pctx)
		defer pool.Stop()

		uc := usecase.NewExpiryUseCase(repo, clock.NewMockClock(start.Add(3*time.Hour)), pool, 100, newTestLogger())
		n, err := uc.ExpireDue(ctx)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if n != 4 {
			t.Errorf("marked = %d, want 4", n)
		}
	})

	t.Run("completes when the pool shut down mid-sweep", func(t *testing.T) {
		// A sweep must not block on records whose tasks the pool can no
		// longer run; rejected submissions fall back to the caller.
		repo := newMemPurchaseRepo()
		repo.put(settledAt(t, 1, 2, start))

		pool := worker.NewPool(1, newTestLogger())
		pctx, cancel := context.WithCancel(context.Background())
		pool.Start(pctx)
		cancel()
		pool.Stop()

		uc := usecase.NewExpiryUseCase(repo, clock.NewMockClock(start.Add(3*time.Hour)), pool, 100, newTestLogger())
		done := make(chan struct{})
		var n int
		var err error
		go func() {
			n, err = uc.ExpireDue(ctx)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("sweep hung after pool shutdown")
		}
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if n != 1 {
			t.Errorf("marked = %d, want 1", n)
		}
		if !repo.get(1).ExpiredExplicitly {
			t.Error("expected the due record flagged despite the closed pool")
		}
	})

	t.Run("respects the batch size", func(t *testing.T) {
		repo := newMemPurchaseRepo()
		for i := int64(1); i <= 5; i++ {
			repo.put(settledAt(t, i, 2, start))
		}
		uc := usecase.NewExpiryUseCase(repo, clock.NewMockClock(start.Add(3*time.Hour)), nil, 2, newTestLogger())

		if n, err := uc.ExpireDue(ctx); err != nil || n != 2 {
			t.Fatalf("first batch: n=%d err=%v, want 2", n, err)
		}
		// Remaining records drain over later cycles.
		total := 2
		for i := 0; i < 3; i++ {
			n, err := uc.ExpireDue(ctx)
			if err != nil {
				t.Fatalf("drain sweep: %v", err)
			}
			total += n
		}
		if total != 5 {
			t.Errorf("total marked = %d, want 5", total)
		}
	})
}
