package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/repository"
)

var _ repository.TicketTypeRepository = (*ticketTypeRepo)(nil)

type ticketTypeRepo struct{ pool *pgxpool.Pool }

func NewTicketTypeRepo(pool *pgxpool.Pool) *ticketTypeRepo {
	return &ticketTypeRepo{pool: pool}
}

func (r *ticketTypeRepo) Save(ctx context.Context, tx repository.Tx, t *model.TicketType) error {
	const q = `
INSERT INTO ticket_types (id, museum_id, name, description, limit_hours, price_cents, currency, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  museum_id=$2, name=$3, description=$4, limit_hours=$5, price_cents=$6, currency=$7, updated_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.MuseumID, t.Name, t.Description, t.LimitHours, t.PriceCents, t.Currency, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ticketTypeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TicketType, error) {
	const q = `SELECT id, museum_id, name, description, limit_hours, price_cents, currency, created_at, updated_at FROM ticket_types WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	t := &model.TicketType{}
	if err := row.Scan(&t.ID, &t.MuseumID, &t.Name, &t.Description, &t.LimitHours, &t.PriceCents, &t.Currency, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *ticketTypeRepo) ListByMuseum(ctx context.Context, tx repository.Tx, museumID string) ([]*model.TicketType, error) {
	const q = `SELECT id, museum_id, name, description, limit_hours, price_cents, currency, created_at, updated_at FROM ticket_types WHERE museum_id=$1 ORDER BY price_cents;`
	rows, err := pickRows(ctx, r.pool, tx, q, museumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TicketType
	for rows.Next() {
		t := &model.TicketType{}
		if err := rows.Scan(&t.ID, &t.MuseumID, &t.Name, &t.Description, &t.LimitHours, &t.PriceCents, &t.Currency, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
