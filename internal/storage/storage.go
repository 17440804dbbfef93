// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetMarker when no marker exists for a key.
// A read miss is a normal condition for first-time entities, not a failure.
var ErrNotFound = errors.New("marker not found")

// Storage is the interface for all persistence operations.
// Keys are composed as "{feedId}:{kind}:{entityId}" and values are
// ISO-8601 timestamp strings.
type Storage interface {
	GetMarker(ctx context.Context, key string) (string, error)
	PutMarker(ctx context.Context, key, value string) error

	Close() error
}
