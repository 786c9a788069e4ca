// Package listing renders events as GeoJSON feature collections.
package listing

import (
	"time"

	"spatialintel/internal/domain/event"
)

// Geometry is a GeoJSON point geometry
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Properties carries the event identifier and, for time-aware listings, its creation time
type Properties struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Feature is one event
type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// FeatureCollection is the listing response body
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// FromEvents maps events to features in the given order.
// withTimestamp adds created_at to each feature's properties.
func FromEvents(events []event.Event, withTimestamp bool) FeatureCollection {
	features := make([]Feature, 0, len(events))
	for _, e := range events {
		props := Properties{ID: e.ID}
		if withTimestamp {
			props.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339Nano)
		}

		features = append(features, Feature{
			Type:       "Feature",
			Properties: props,
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{e.Location.Lon, e.Location.Lat},
			},
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
