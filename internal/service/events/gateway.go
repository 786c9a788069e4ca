// internal/service/events/gateway.go

package events

import (
	"context"
	"fmt"

	"spatialintel/internal/domain/event"
	"spatialintel/internal/metrics"
)

const (
	// DefaultLimit applies to every listing when the caller gives none
	DefaultLimit = 100

	// MaxLimit caps a single listing
	MaxLimit = 1000
)

// Gateway implements event.Gateway on top of a Store. It validates input
// before any store call so rejected requests have no side effects.
type Gateway struct {
	store event.Store
}

// NewGateway creates a new gateway
func NewGateway(store event.Store) *Gateway {
	return &Gateway{
		store: store,
	}
}

// Create validates the coordinates and persists a new event
func (g *Gateway) Create(ctx context.Context, lon, lat float64) (int64, error) {
	p := event.Point{Lon: lon, Lat: lat}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	e, err := g.store.Insert(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("error inserting event: %w", err)
	}

	metrics.EventsCreatedTotal.Inc()
	return e.ID, nil
}

// Query lists events matching q ordered by id descending
func (g *Gateway) Query(ctx context.Context, q event.Query) ([]event.Event, error) {
	if err := ValidateLimit(q.Limit); err != nil {
		return nil, err
	}
	if q.BBox != nil {
		if err := q.BBox.Validate(); err != nil {
			return nil, err
		}
	}
	if q.Window != nil {
		if err := q.Window.Validate(); err != nil {
			return nil, err
		}
	}

	metrics.EventQueriesTotal.WithLabelValues("select").Inc()

	events, err := g.store.Select(ctx, event.Filter{BBox: q.BBox, Window: q.Window}, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("error selecting events: %w", err)
	}

	return events, nil
}

// Count counts events inside bbox created within window, using the same
// predicate as Query
func (g *Gateway) Count(ctx context.Context, bbox event.BoundingBox, window event.TimeWindow) (int64, error) {
	if err := bbox.Validate(); err != nil {
		return 0, err
	}
	if err := window.Validate(); err != nil {
		return 0, err
	}

	metrics.EventQueriesTotal.WithLabelValues("count").Inc()

	n, err := g.store.Count(ctx, event.Filter{BBox: &bbox, Window: &window})
	if err != nil {
		return 0, fmt.Errorf("error counting events: %w", err)
	}

	return n, nil
}

// Health pings the store
func (g *Gateway) Health(ctx context.Context) error {
	if err := g.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", event.ErrStoreUnavailable, err)
	}
	return nil
}

// ValidateLimit enforces 1 <= limit <= MaxLimit
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be a positive integer", event.ErrValidation)
	}
	if limit > MaxLimit {
		return fmt.Errorf("%w: limit must not exceed %d", event.ErrValidation, MaxLimit)
	}
	return nil
}
