package repository

import (
	"context"

	"museum-ticketing/internal/domain/model"
)

type TicketTypeRepository interface {
	Save(ctx context.Context, tx Tx, t *model.TicketType) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.TicketType, error)
	ListByMuseum(ctx context.Context, tx Tx, museumID string) ([]*model.TicketType, error)
}
