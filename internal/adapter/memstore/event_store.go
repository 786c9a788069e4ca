// Package memstore is an in-process event store indexed by an R-tree.
// It serves local runs and tests without PostGIS.
package memstore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/dhconnelly/rtreego"

	"spatialintel/internal/domain/event"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	// half-width used to give points and degenerate boxes a non-zero extent
	tolerance = 1e-9
)

// spatialEvent wraps an event for R-tree indexing
type spatialEvent struct {
	event.Event
	rect *rtreego.Rect
}

func (s *spatialEvent) Bounds() *rtreego.Rect {
	return s.rect
}

// EventStore implements event.Store in memory
type EventStore struct {
	mu     sync.RWMutex
	tree   *rtreego.Rtree
	events []*spatialEvent // ascending id
	nextID int64
	now    func() time.Time
}

// Option configures an EventStore
type Option func(*EventStore)

// WithClock sets the source of created_at timestamps
func WithClock(now func() time.Time) Option {
	return func(s *EventStore) {
		s.now = now
	}
}

// NewEventStore creates an empty store
func NewEventStore(opts ...Option) *EventStore {
	s := &EventStore{
		tree:   rtreego.NewTree(dimensions, minChildren, maxChildren),
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert stores p with the next id. created_at never goes backwards.
func (s *EventStore) Insert(ctx context.Context, p event.Point) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC()
	if n := len(s.events); n > 0 && createdAt.Before(s.events[n-1].CreatedAt) {
		createdAt = s.events[n-1].CreatedAt
	}

	item := &spatialEvent{
		Event: event.Event{
			ID:        s.nextID,
			Location:  p,
			CreatedAt: createdAt,
		},
		rect: rtreego.Point{p.Lon, p.Lat}.ToRect(tolerance),
	}
	s.nextID++

	s.tree.Insert(item)
	s.events = append(s.events, item)

	return item.Event, nil
}

// Select returns matches ordered by id descending, at most limit
func (s *EventStore) Select(ctx context.Context, f event.Filter, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.match(f)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID > matches[j].ID
	})

	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]event.Event, len(matches))
	for i, m := range matches {
		out[i] = m.Event
	}
	return out, nil
}

// Count returns the number of events matching f
func (s *EventStore) Count(ctx context.Context, f event.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.match(f))), nil
}

// Ping always succeeds unless ctx is done
func (s *EventStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored events
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// match must be called with s.mu held
func (s *EventStore) match(f event.Filter) []*spatialEvent {
	var candidates []*spatialEvent
	if f.BBox == nil {
		candidates = append(candidates, s.events...)
	} else {
		for _, item := range s.tree.SearchIntersect(searchRect(*f.BBox)) {
			candidates = append(candidates, item.(*spatialEvent))
		}
	}

	// the R-tree pass is padded by tolerance; the exact predicate decides
	out := candidates[:0]
	for _, c := range candidates {
		if f.Matches(c.Event) {
			out = append(out, c)
		}
	}
	return out
}

func searchRect(b event.BoundingBox) *rtreego.Rect {
	minX, maxX := math.Min(b.West, b.East), math.Max(b.West, b.East)
	minY, maxY := math.Min(b.South, b.North), math.Max(b.South, b.North)

	rect, err := rtreego.NewRect(
		rtreego.Point{minX - tolerance, minY - tolerance},
		[]float64{maxX - minX + 2*tolerance, maxY - minY + 2*tolerance},
	)
	if err != nil {
		// lengths are always positive, so this only fires on NaN bounds
		rect, _ = rtreego.NewRect(rtreego.Point{-180, -90}, []float64{360, 180})
	}
	return rect
}
