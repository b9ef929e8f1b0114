// File: internal/usecase/catalog_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/repository"
)

var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase serves the read-only museum/ticket-type catalog that
// feeds the purchase UI. Administration of these records lives in a
// separate back-office service.
type CatalogUseCase interface {
	ListMuseums(ctx context.Context) ([]*model.Museum, error)
	ListTicketTypes(ctx context.Context, museumID string) ([]*model.TicketType, error)
}

type catalogUC struct {
	museums repository.MuseumRepository
	tickets repository.TicketTypeRepository
	log     *zerolog.Logger
}

func NewCatalogUseCase(museums repository.MuseumRepository, tickets repository.TicketTypeRepository, logger *zerolog.Logger) *catalogUC {
	l := logger.With().Str("component", "CatalogUC").Logger()
	return &catalogUC{museums: museums, tickets: tickets, log: &l}
}

func (u *catalogUC) ListMuseums(ctx context.Context) ([]*model.Museum, error) {
	return u.museums.ListAll(ctx, nil)
}

func (u *catalogUC) ListTicketTypes(ctx context.Context, museumID string) ([]*model.TicketType, error) {
	if museumID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := u.museums.FindByID(ctx, nil, museumID); err != nil {
		return nil, err
	}
	return u.tickets.ListByMuseum(ctx, nil, museumID)
}
