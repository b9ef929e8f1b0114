package model

import (
	"time"

	"museum-ticketing/internal/domain"

	"github.com/google/uuid"
)

// Museum is a virtual venue a pass grants access to. This service only
// reads museums; administration lives elsewhere.
type Museum struct {
	ID        string // UUID
	Name      string
	City      string
	ImageURL  string
	CreatedAt time.Time
}

func NewMuseum(name, city, imageURL string) (*Museum, error) {
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Museum{
		ID:        uuid.NewString(),
		Name:      name,
		City:      city,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}, nil
}
