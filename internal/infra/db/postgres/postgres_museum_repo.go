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

var _ repository.MuseumRepository = (*museumRepo)(nil)

type museumRepo struct{ pool *pgxpool.Pool }

func NewMuseumRepo(pool *pgxpool.Pool) *museumRepo {
	return &museumRepo{pool: pool}
}

func (r *museumRepo) Save(ctx context.Context, tx repository.Tx, m *model.Museum) error {
	const q = `
INSERT INTO museums (id, name, city, image_url, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET name=$2, city=$3, image_url=$4;`

	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.Name, m.City, m.ImageURL, m.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *museumRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Museum, error) {
	const q = `SELECT id, name, city, image_url, created_at FROM museums WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	m := &model.Museum{}
	if err := row.Scan(&m.ID, &m.Name, &m.City, &m.ImageURL, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}

func (r *museumRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Museum, error) {
	const q = `SELECT id, name, city, image_url, created_at FROM museums ORDER BY name;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Museum
	for rows.Next() {
		m := &model.Museum{}
		if err := rows.Scan(&m.ID, &m.Name, &m.City, &m.ImageURL, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
