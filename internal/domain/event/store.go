// internal/domain/event/store.go

package event

import (
	"context"
	"errors"
)

// Common errors
var (
	// ErrValidation marks malformed caller input. It is never retried.
	ErrValidation = errors.New("validation error")

	// ErrStoreUnavailable marks a backing store that cannot be reached
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store is the persistence capability consumed by the gateway
type Store interface {
	// Insert persists a point with a store-assigned id and creation time
	Insert(ctx context.Context, p Point) (Event, error)

	// Select returns events matching the filter ordered by id descending, at most limit rows
	Select(ctx context.Context, f Filter, limit int) ([]Event, error)

	// Count returns the number of events matching the filter
	Count(ctx context.Context, f Filter) (int64, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// Gateway defines the validated entry point to event storage
type Gateway interface {
	// Create validates and persists a new event, returning its id
	Create(ctx context.Context, lon, lat float64) (int64, error)

	// Query lists events matching q, most recent first
	Query(ctx context.Context, q Query) ([]Event, error)

	// Count counts events inside bbox created within window
	Count(ctx context.Context, bbox BoundingBox, window TimeWindow) (int64, error)

	// Health reports whether the backing store is reachable
	Health(ctx context.Context) error
}

// Query describes a listing request
type Query struct {
	BBox   *BoundingBox
	Window *TimeWindow
	Limit  int
}
