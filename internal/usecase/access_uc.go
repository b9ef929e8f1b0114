// File: internal/usecase/access_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"museum-ticketing/internal/clock"
	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/repository"
	"museum-ticketing/internal/infra/metrics"
)

type DenyReason string

const (
	DenyNone       DenyReason = ""
	DenyNotOwner   DenyReason = "not_owner"
	DenyNotSettled DenyReason = "not_settled"
	DenyExpired    DenyReason = "expired"
)

// AccessDecision is the answer to "may this caller enter now".
type AccessDecision struct {
	Granted   bool
	Reason    DenyReason
	Remaining time.Duration
}

var _ AccessUseCase = (*accessUC)(nil)

type AccessUseCase interface {
	// Check performs the lazy expiration check: a purchase whose stored
	// flag is stale is marked expired as a side effect of being denied.
	Check(ctx context.Context, userID string, orderID int64) (*AccessDecision, error)
}

type accessUC struct {
	purchases repository.PurchaseRepository
	clk       clock.Clock
	log       *zerolog.Logger
}

func NewAccessUseCase(purchases repository.PurchaseRepository, clk clock.Clock, logger *zerolog.Logger) *accessUC {
	l := logger.With().Str("component", "AccessUC").Logger()
	return &accessUC{purchases: purchases, clk: clk, log: &l}
}

func (u *accessUC) Check(ctx context.Context, userID string, orderID int64) (*AccessDecision, error) {
	if userID == "" || orderID <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	p, err := u.purchases.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return &AccessDecision{Reason: DenyNotOwner}, nil
	}
	if p.State != model.SettlementSettled {
		return &AccessDecision{Reason: DenyNotSettled}, nil
	}
	if p.ExpiredExplicitly {
		return &AccessDecision{Reason: DenyExpired}, nil
	}

	now := u.clk.Now()
	if !p.ExpiredAt(now) {
		return &AccessDecision{Granted: true, Remaining: p.RemainingAt(now)}, nil
	}

	// The stored flag is stale: neither the sweeper nor a usage report
	// has run since the threshold was crossed. Write it back so the
	// denial is durable. A conflict means someone else already did.
	if err := u.purchases.MarkExpired(ctx, nil, orderID, p.Version); err != nil && !errors.Is(err, domain.ErrConflict) {
		u.log.Warn().Err(err).Int64("order_id", orderID).Msg("lazy expire write-back failed")
	} else if err == nil {
		metrics.IncPurchasesExpired(1)
	}
	return &AccessDecision{Reason: DenyExpired}, nil
}
