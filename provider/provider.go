package provider

import (
	"context"
	"errors"
)

// Provider is a named backend that can say whether it is reachable.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

var (
	// ErrNotFound is returned for a name that was never added.
	ErrNotFound = errors.New("provider not found")
	// ErrDuplicate is returned when a name is added twice.
	ErrDuplicate = errors.New("provider already registered")
	// ErrNoneAvailable is returned when a selector finds no usable backend.
	ErrNoneAvailable = errors.New("no provider available")
)
