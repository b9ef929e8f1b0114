package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotOwner           = errors.New("purchase belongs to another user")
	ErrInvalidState       = errors.New("purchase is in an incompatible state")
	ErrExpired            = errors.New("purchase has expired")
	ErrInvalidSignature   = errors.New("callback signature mismatch")
	ErrGatewayFailure     = errors.New("payment gateway request failed")
	ErrConflict           = errors.New("record changed concurrently")
	ErrLockHeld           = errors.New("lock is held by another instance")
	ErrRateLimited        = errors.New("too many requests")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction context")
)
