package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrInvalidState = errors.New("domain: invalid state")
	ErrUnauthorized = errors.New("domain: unauthorized")
)
