package model

import "time"

// User is the buyer reference. Identity and credential management are
// external; this service only needs the id for ownership checks and
// the billing fields forwarded to the gateway.
type User struct {
	ID           string // UUID, matches the JWT subject
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	RegisteredAt time.Time
}
