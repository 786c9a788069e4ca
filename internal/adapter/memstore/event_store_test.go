package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spatialintel/internal/domain/event"
)

func TestNewEventStore(t *testing.T) {
	store := NewEventStore()
	assert.NotNil(t, store)
	assert.NotNil(t, store.tree)
	assert.Equal(t, 0, store.Len())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestInsertAssignsAscendingIDs(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	first, err := store.Insert(ctx, event.Point{Lon: -122.4194, Lat: 37.7749})
	require.NoError(t, err)
	second, err := store.Insert(ctx, event.Point{Lon: -118.2437, Lat: 34.0522})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
	assert.Equal(t, 2, store.Len())
}

func TestInsertNeverBackdates(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	store := NewEventStore(WithClock(func() time.Time { return clock }))

	a, err := store.Insert(ctx, event.Point{})
	require.NoError(t, err)

	clock = base.Add(-time.Minute)
	b, err := store.Insert(ctx, event.Point{})
	require.NoError(t, err)

	assert.Equal(t, a.CreatedAt, b.CreatedAt)
}

func TestSelectBoundingBox(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	cities := []event.Point{
		{Lon: -122.4194, Lat: 37.7749}, // San Francisco
		{Lon: -118.2437, Lat: 34.0522}, // Los Angeles
		{Lon: -117.1611, Lat: 32.7157}, // San Diego
		{Lon: -74.0060, Lat: 40.7128},  // New York (outside)
		{Lon: -87.6298, Lat: 41.8781},  // Chicago (outside)
	}
	for _, p := range cities {
		_, err := store.Insert(ctx, p)
		require.NoError(t, err)
	}

	california := event.BoundingBox{West: -125, South: 32, East: -114, North: 42}
	results, err := store.Select(ctx, event.Filter{BBox: &california}, 100)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// most recent first
	assert.Equal(t, int64(3), results[0].ID)
	assert.Equal(t, int64(2), results[1].ID)
	assert.Equal(t, int64(1), results[2].ID)

	n, err := store.Count(ctx, event.Filter{BBox: &california})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSelectIncludesPointsOnEdges(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	for _, p := range []event.Point{
		{Lon: 10, Lat: 10},    // corner
		{Lon: 0, Lat: 10},     // west edge
		{Lon: 5, Lat: 0},      // south edge
		{Lon: 10.001, Lat: 5}, // just outside
	} {
		_, err := store.Insert(ctx, p)
		require.NoError(t, err)
	}

	bbox := event.BoundingBox{West: 0, South: 0, East: 10, North: 10}
	n, err := store.Count(ctx, event.Filter{BBox: &bbox})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// a degenerate box is still a closed rectangle
	point := event.BoundingBox{West: 10, South: 10, East: 10, North: 10}
	n, err = store.Count(ctx, event.Filter{BBox: &point})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSelectTimeWindowAndLimit(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	store := NewEventStore(WithClock(func() time.Time { return clock }))

	for i := 0; i < 10; i++ {
		clock = base.Add(time.Duration(i) * time.Minute)
		_, err := store.Insert(ctx, event.Point{Lon: 1, Lat: 1})
		require.NoError(t, err)
	}

	window := event.TimeWindow{Start: base.Add(2 * time.Minute), End: base.Add(6 * time.Minute)}
	results, err := store.Select(ctx, event.Filter{Window: &window}, 100)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, int64(6), results[0].ID)
	assert.Equal(t, int64(3), results[3].ID)

	limited, err := store.Select(ctx, event.Filter{}, 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, []int64{10, 9, 8}, []int64{limited[0].ID, limited[1].ID, limited[2].ID})
}

func TestConcurrentInsertsGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	ids := make(chan int64, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				e, err := store.Insert(ctx, event.Point{Lon: float64(w), Lat: float64(i % 90)})
				if err == nil {
					ids <- e.ID
				}
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewEventStore()
	_, err := store.Insert(ctx, event.Point{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Len())
}
