package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct{ pool *pgxpool.Pool }

func NewPurchaseRepo(pool *pgxpool.Pool) *purchaseRepo {
	return &purchaseRepo{pool: pool}
}

const purchaseColumns = `order_id, user_id, ticket_type_id, museum_id, amount_cents, currency, limit_hours, settlement_state, expired_explicitly, used_minutes, created_at, updated_at, version`

func scanPurchase(row pgx.Row) (*model.Purchase, error) {
	p := &model.Purchase{}
	err := row.Scan(
		&p.OrderID, &p.UserID, &p.TicketTypeID, &p.MuseumID,
		&p.AmountCents, &p.Currency, &p.LimitHours,
		&p.State, &p.ExpiredExplicitly, &p.UsedMinutes,
		&p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *purchaseRepo) Create(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	const q = `
INSERT INTO purchases (
  order_id, user_id, ticket_type_id, museum_id, amount_cents, currency, limit_hours,
  settlement_state, expired_explicitly, used_minutes, created_at, updated_at, version
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,0);`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.OrderID, p.UserID, p.TicketTypeID, p.MuseumID, p.AmountCents, p.Currency, p.LimitHours,
		p.State, p.ExpiredExplicitly, p.UsedMinutes, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *purchaseRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID int64) (*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + ` FROM purchases WHERE order_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanPurchase(row)
}

func (r *purchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPurchases(rows)
}

func (r *purchaseRepo) ListSettledUnexpired(ctx context.Context, tx repository.Tx, limit int) ([]*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + `
FROM purchases
WHERE settlement_state='settled' AND expired_explicitly=false
ORDER BY created_at
LIMIT $1;`
	rows, err := pickRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPurchases(rows)
}

// SettleFromPending is the single writer of settlement_state. The
// WHERE clause makes the transition idempotent: once a row has left
// pending no later delivery can touch it.
func (r *purchaseRepo) SettleFromPending(ctx context.Context, tx repository.Tx, orderID int64, state model.SettlementState) (bool, error) {
	const q = `
UPDATE purchases
SET settlement_state=$2, updated_at=NOW(), version=version+1
WHERE order_id=$1 AND settlement_state='pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, state)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *purchaseRepo) UpdateUsage(ctx context.Context, tx repository.Tx, orderID int64, version int, usedMinutes int, expired bool) error {
	const q = `
UPDATE purchases
SET used_minutes=$3, expired_explicitly=(expired_explicitly OR $4), updated_at=NOW(), version=version+1
WHERE order_id=$1 AND version=$2;`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, version, usedMinutes, expired)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *purchaseRepo) MarkExpired(ctx context.Context, tx repository.Tx, orderID int64, version int) error {
	const q = `
UPDATE purchases
SET expired_explicitly=true, updated_at=NOW(), version=version+1
WHERE order_id=$1 AND version=$2 AND expired_explicitly=false;`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, version)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func collectPurchases(rows pgx.Rows) ([]*model.Purchase, error) {
	var out []*model.Purchase
	for rows.Next() {
		p := &model.Purchase{}
		if err := rows.Scan(
			&p.OrderID, &p.UserID, &p.TicketTypeID, &p.MuseumID,
			&p.AmountCents, &p.Currency, &p.LimitHours,
			&p.State, &p.ExpiredExplicitly, &p.UsedMinutes,
			&p.CreatedAt, &p.UpdatedAt, &p.Version,
		); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
