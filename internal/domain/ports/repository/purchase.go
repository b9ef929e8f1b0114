package repository

import (
	"context"

	"museum-ticketing/internal/domain/model"
)

// PurchaseRepository is the persistence port for purchase records.
//
// Mutating methods take the record's current Version and return
// domain.ErrConflict when the row changed underneath; callers re-read
// and retry. This is the only write discipline allowed on purchases:
// no method blindly overwrites counters or flags.
type PurchaseRepository interface {
	Create(ctx context.Context, tx Tx, p *model.Purchase) error
	FindByOrderID(ctx context.Context, tx Tx, orderID int64) (*model.Purchase, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Purchase, error)
	// ListSettledUnexpired feeds the expiration sweep.
	ListSettledUnexpired(ctx context.Context, tx Tx, limit int) ([]*model.Purchase, error)

	// SettleFromPending transitions pending -> state. Returns false when
	// the row was no longer pending (duplicate or raced delivery).
	SettleFromPending(ctx context.Context, tx Tx, orderID int64, state model.SettlementState) (bool, error)
	// UpdateUsage writes the new counter and, when expired is true, the
	// expiration flag, guarded by version.
	UpdateUsage(ctx context.Context, tx Tx, orderID int64, version int, usedMinutes int, expired bool) error
	// MarkExpired sets the expiration flag, guarded by version.
	MarkExpired(ctx context.Context, tx Tx, orderID int64, version int) error
}
