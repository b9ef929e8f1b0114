package model

import (
	"time"

	"museum-ticketing/internal/domain"
)

type SettlementState string

const (
	SettlementPending SettlementState = "pending" // order registered at gateway, awaiting callback
	SettlementSettled SettlementState = "settled" // gateway reported success
	SettlementFailed  SettlementState = "failed"  // gateway reported failure
)

// FallbackWindow bounds the validity of a purchase whose ticket type
// defines no hourly limit.
const FallbackWindow = 72 * time.Hour

// Purchase is one paid access pass, keyed by the gateway's order id.
// OrderID, UserID, TicketTypeID, MuseumID, AmountCents, Currency and
// CreatedAt are immutable after creation. State moves pending->settled
// or pending->failed exactly once. ExpiredExplicitly is a monotone
// boolean: once set it is never cleared. Version backs the optimistic
// compare-and-set on every update.
type Purchase struct {
	OrderID      int64
	UserID       string // UUID
	TicketTypeID string // UUID
	MuseumID     string // UUID
	AmountCents  int64
	Currency     string
	LimitHours   int // 0 means no hourly limit (FallbackWindow applies)

	State             SettlementState
	ExpiredExplicitly bool
	UsedMinutes       int

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

// NewPurchase builds a pending purchase for an order the gateway has
// already accepted.
func NewPurchase(orderID int64, userID, ticketTypeID, museumID string, amountCents int64, currency string, limitHours int, now time.Time) (*Purchase, error) {
	if orderID <= 0 || userID == "" || ticketTypeID == "" || museumID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amountCents <= 0 || currency == "" || limitHours < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Purchase{
		OrderID:      orderID,
		UserID:       userID,
		TicketTypeID: ticketTypeID,
		MuseumID:     museumID,
		AmountCents:  amountCents,
		Currency:     currency,
		LimitHours:   limitHours,
		State:        SettlementPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Deadline is the wall-clock instant after which the purchase is no
// longer valid regardless of usage.
func (p *Purchase) Deadline() time.Time {
	if p.LimitHours > 0 {
		return p.CreatedAt.Add(time.Duration(p.LimitHours) * time.Hour)
	}
	return p.CreatedAt.Add(FallbackWindow)
}

// ExpiredAt evaluates the expiration predicate at the given instant.
// Every component that decides expiration goes through this method so
// the sweeper, the usage tracker and the access gate always agree.
func (p *Purchase) ExpiredAt(now time.Time) bool {
	if p.ExpiredExplicitly {
		return true
	}
	if !now.Before(p.Deadline()) {
		return true
	}
	if p.LimitHours > 0 && p.UsedMinutes >= p.LimitHours*60 {
		return true
	}
	return false
}

// RemainingAt returns the smaller of the wall-clock and usage budgets
// left at the given instant. Never negative.
func (p *Purchase) RemainingAt(now time.Time) time.Duration {
	left := p.Deadline().Sub(now)
	if p.LimitHours > 0 {
		usage := time.Duration(p.LimitHours*60-p.UsedMinutes) * time.Minute
		if usage < left {
			left = usage
		}
	}
	if left < 0 {
		left = 0
	}
	return left
}
