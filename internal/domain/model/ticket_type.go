package model

import (
	"time"

	"museum-ticketing/internal/domain"

	"github.com/google/uuid"
)

// TicketType is a purchasable access product for one museum. LimitHours
// is copied onto each purchase at creation time; 0 means the pass is
// only bounded by the fallback window.
type TicketType struct {
	ID          string // UUID
	MuseumID    string // UUID
	Name        string
	Description string
	LimitHours  int
	PriceCents  int64
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTicketType(museumID, name, description string, limitHours int, priceCents int64, currency string) (*TicketType, error) {
	if museumID == "" || name == "" || limitHours < 0 || priceCents <= 0 || currency == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &TicketType{
		ID:          uuid.NewString(),
		MuseumID:    museumID,
		Name:        name,
		Description: description,
		LimitHours:  limitHours,
		PriceCents:  priceCents,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
