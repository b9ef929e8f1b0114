package repository

import (
	"context"

	"museum-ticketing/internal/domain/model"
)

type MuseumRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Museum) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Museum, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Museum, error)
}
