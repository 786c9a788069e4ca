// internal/domain/event/model.go

package event

import (
	"fmt"
	"math"
	"time"
)

// SRID is the spatial reference of every stored location (WGS84)
const SRID = 4326

// Point is a WGS84 longitude/latitude pair
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Validate checks that the point lies in the WGS84 coordinate ranges
func (p Point) Validate() error {
	if err := checkAxis("longitude", p.Lon, 180); err != nil {
		return err
	}
	return checkAxis("latitude", p.Lat, 90)
}

// Event is a single located occurrence. Events are insert-only.
type Event struct {
	ID        int64
	Location  Point
	CreatedAt time.Time
}

// BoundingBox is an axis-aligned rectangle in the same reference system as Point.
// Bounds are used as given; west > east is not treated as crossing the antimeridian.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Validate checks every bound is a finite coordinate in range
func (b BoundingBox) Validate() error {
	if err := checkAxis("west", b.West, 180); err != nil {
		return err
	}
	if err := checkAxis("south", b.South, 90); err != nil {
		return err
	}
	if err := checkAxis("east", b.East, 180); err != nil {
		return err
	}
	return checkAxis("north", b.North, 90)
}

// Contains reports whether p lies on or inside the envelope spanned by the bounds.
// Edges are closed, matching ST_Intersects against ST_MakeEnvelope.
func (b BoundingBox) Contains(p Point) bool {
	minX, maxX := math.Min(b.West, b.East), math.Max(b.West, b.East)
	minY, maxY := math.Min(b.South, b.North), math.Max(b.South, b.North)
	return p.Lon >= minX && p.Lon <= maxX && p.Lat >= minY && p.Lat <= maxY
}

// TimeWindow is the half-open interval [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Validate rejects windows whose end precedes their start
func (w TimeWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: time window requires start and end", ErrValidation)
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrValidation,
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls in [Start, End)
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns End - Start
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Filter selects events by location and, optionally, creation time.
// A nil BBox matches every location.
type Filter struct {
	BBox   *BoundingBox
	Window *TimeWindow
}

// Matches applies the filter to a single event
func (f Filter) Matches(e Event) bool {
	if f.BBox != nil && !f.BBox.Contains(e.Location) {
		return false
	}
	if f.Window != nil && !f.Window.Contains(e.CreatedAt) {
		return false
	}
	return true
}

func checkAxis(name string, v, limit float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrValidation, name)
	}
	if v < -limit || v > limit {
		return fmt.Errorf("%w: %s %g out of range [-%g, %g]", ErrValidation, name, v, limit, limit)
	}
	return nil
}
