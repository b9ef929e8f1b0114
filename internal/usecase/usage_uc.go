// File: internal/usecase/usage_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"museum-ticketing/internal/clock"
	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/repository"
	"museum-ticketing/internal/infra/metrics"
)

// maxCASRetries bounds the optimistic retry loop on version conflicts.
const maxCASRetries = 5

// maxMinutesPerReport caps a single usage report; a client cannot
// plausibly report more than an hour between heartbeats.
const maxMinutesPerReport = 60

var _ UsageUseCase = (*usageUC)(nil)

type UsageUseCase interface {
	// Report atomically adds minutes to a settled purchase and flips the
	// expiration flag in the same update when a threshold is crossed.
	// Returns the updated counter and the flag so the client can stop
	// its session cleanly.
	Report(ctx context.Context, userID string, orderID int64, minutes int) (usedMinutes int, expired bool, err error)
}

type usageUC struct {
	purchases repository.PurchaseRepository
	clk       clock.Clock
	maxPerRep int
	log       *zerolog.Logger
}

func NewUsageUseCase(purchases repository.PurchaseRepository, clk clock.Clock, maxPerReport int, logger *zerolog.Logger) *usageUC {
	if maxPerReport <= 0 {
		maxPerReport = maxMinutesPerReport
	}
	l := logger.With().Str("component", "UsageUC").Logger()
	return &usageUC{purchases: purchases, clk: clk, maxPerRep: maxPerReport, log: &l}
}

func (u *usageUC) Report(ctx context.Context, userID string, orderID int64, minutes int) (int, bool, error) {
	if userID == "" || orderID <= 0 || minutes <= 0 {
		return 0, false, domain.ErrInvalidArgument
	}
	if minutes > u.maxPerRep {
		// Implausible jump; clamp rather than reject so a delayed but
		// honest client does not lose its whole session.
		minutes = u.maxPerRep
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		p, err := u.purchases.FindByOrderID(ctx, nil, orderID)
		if err != nil {
			return 0, false, err
		}
		if p.UserID != userID {
			return 0, false, domain.ErrNotOwner
		}
		if p.State != model.SettlementSettled {
			return 0, false, domain.ErrInvalidState
		}
		if p.ExpiredExplicitly {
			return 0, false, domain.ErrExpired
		}

		next := *p
		next.UsedMinutes = p.UsedMinutes + minutes
		expired := next.ExpiredAt(u.clk.Now())

		err = u.purchases.UpdateUsage(ctx, nil, orderID, p.Version, next.UsedMinutes, expired)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf("update usage order %d: %w", orderID, err)
		}

		metrics.AddUsageMinutes(minutes)
		if expired {
			metrics.IncPurchasesExpired(1)
			u.log.Info().Int64("order_id", orderID).Int("used_minutes", next.UsedMinutes).Msg("purchase expired by usage report")
		}
		return next.UsedMinutes, expired, nil
	}
	return 0, false, domain.ErrConflict
}
