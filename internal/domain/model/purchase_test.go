//go:build !integration

package model_test

import (
	"testing"
	"time"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
)

var testCreatedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newSettledPurchase(t *testing.T, limitHours int) *model.Purchase {
	t.Helper()
	p, err := model.NewPurchase(1001, "user-1", "ticket-1", "museum-1", 15_000, "EGP", limitHours, testCreatedAt)
	if err != nil {
		t.Fatalf("NewPurchase: %v", err)
	}
	p.State = model.SettlementSettled
	return p
}

func TestNewPurchase_Validation(t *testing.T) {
	cases := []struct {
		name string
		fn   func() (*model.Purchase, error)
	}{
		{"zero order id", func() (*model.Purchase, error) {
			return model.NewPurchase(0, "u", "t", "m", 100, "EGP", 2, testCreatedAt)
		}},
		{"empty user", func() (*model.Purchase, error) {
			return model.NewPurchase(1, "", "t", "m", 100, "EGP", 2, testCreatedAt)
		}},
		{"non-positive amount", func() (*model.Purchase, error) {
			return model.NewPurchase(1, "u", "t", "m", 0, "EGP", 2, testCreatedAt)
		}},
		{"negative limit", func() (*model.Purchase, error) {
			return model.NewPurchase(1, "u", "t", "m", 100, "EGP", -1, testCreatedAt)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.fn(); err != domain.ErrInvalidArgument {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	t.Run("starts pending with zero usage", func(t *testing.T) {
		p, err := model.NewPurchase(1, "u", "t", "m", 100, "EGP", 2, testCreatedAt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.State != model.SettlementPending {
			t.Errorf("expected pending state, got %s", p.State)
		}
		if p.UsedMinutes != 0 || p.ExpiredExplicitly || p.Version != 0 {
			t.Errorf("expected fresh counters, got used=%d expired=%v version=%d", p.UsedMinutes, p.ExpiredExplicitly, p.Version)
		}
	})
}

func TestPurchase_ExpiredAt_WallClock(t *testing.T) {
	t.Run("two hour limit grants a minute before the deadline", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		at := testCreatedAt.Add(119 * time.Minute)
		if p.ExpiredAt(at) {
			t.Error("expected still valid at T+119m")
		}
	})

	t.Run("two hour limit expires exactly at the deadline", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		at := testCreatedAt.Add(120 * time.Minute)
		if !p.ExpiredAt(at) {
			t.Error("expected expired at T+120m")
		}
	})

	t.Run("two hour limit denies after the deadline", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		at := testCreatedAt.Add(121 * time.Minute)
		if !p.ExpiredAt(at) {
			t.Error("expected expired at T+121m")
		}
	})

	t.Run("no hourly limit falls back to three days", func(t *testing.T) {
		p := newSettledPurchase(t, 0)
		if p.ExpiredAt(testCreatedAt.Add(model.FallbackWindow - time.Minute)) {
			t.Error("expected still valid just inside the fallback window")
		}
		if !p.ExpiredAt(testCreatedAt.Add(model.FallbackWindow)) {
			t.Error("expected expired at the fallback boundary")
		}
	})
}

func TestPurchase_ExpiredAt_Usage(t *testing.T) {
	at := testCreatedAt.Add(30 * time.Minute) // well inside the wall-clock budget

	t.Run("usage below the budget keeps the pass valid", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		p.UsedMinutes = 119
		if p.ExpiredAt(at) {
			t.Error("expected valid at 119 used minutes")
		}
	})

	t.Run("usage at the budget expires the pass", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		p.UsedMinutes = 120
		if !p.ExpiredAt(at) {
			t.Error("expected expired at 120 used minutes")
		}
	})

	t.Run("usage never expires an unlimited pass", func(t *testing.T) {
		p := newSettledPurchase(t, 0)
		p.UsedMinutes = 100_000
		if p.ExpiredAt(at) {
			t.Error("expected valid: no hourly limit means no usage budget")
		}
	})

	t.Run("explicit flag dominates everything", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		p.ExpiredExplicitly = true
		if !p.ExpiredAt(testCreatedAt) {
			t.Error("expected expired immediately once the flag is set")
		}
	})
}

func TestPurchase_RemainingAt(t *testing.T) {
	t.Run("wall clock is the binding budget early on", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		got := p.RemainingAt(testCreatedAt.Add(30 * time.Minute))
		if want := 90 * time.Minute; got != want {
			t.Errorf("remaining = %v, want %v", got, want)
		}
	})

	t.Run("usage becomes binding once minutes are burned", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		p.UsedMinutes = 110
		got := p.RemainingAt(testCreatedAt.Add(30 * time.Minute))
		if want := 10 * time.Minute; got != want {
			t.Errorf("remaining = %v, want %v", got, want)
		}
	})

	t.Run("never negative", func(t *testing.T) {
		p := newSettledPurchase(t, 2)
		if got := p.RemainingAt(testCreatedAt.Add(5 * time.Hour)); got != 0 {
			t.Errorf("remaining = %v, want 0", got)
		}
	})
}

func TestPurchase_Deadline(t *testing.T) {
	limited := newSettledPurchase(t, 5)
	if got, want := limited.Deadline(), testCreatedAt.Add(5*time.Hour); !got.Equal(want) {
		t.Errorf("deadline = %v, want %v", got, want)
	}
	unlimited := newSettledPurchase(t, 0)
	if got, want := unlimited.Deadline(), testCreatedAt.Add(model.FallbackWindow); !got.Equal(want) {
		t.Errorf("fallback deadline = %v, want %v", got, want)
	}
}
