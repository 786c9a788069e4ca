// internal/domain/trend/detector.go

package trend

import (
	"context"
	"time"

	"spatialintel/internal/domain/event"
)

// Analyzer defines the interface for windowed trend analysis
type Analyzer interface {
	// Analyze compares the last windowMinutes against the window before it, ending now
	Analyze(ctx context.Context, bbox event.BoundingBox, windowMinutes int) (*Result, error)

	// AnalyzeAt is Analyze with an explicit end instant
	AnalyzeAt(ctx context.Context, bbox event.BoundingBox, windowMinutes int, now time.Time) (*Result, error)
}

// Publisher receives every computed result
type Publisher interface {
	PublishResult(ctx context.Context, r Result) error
}
