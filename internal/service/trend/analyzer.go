// internal/service/trend/analyzer.go

package trend

import (
	"context"
	"fmt"
	"time"

	"spatialintel/internal/domain/event"
	"spatialintel/internal/domain/trend"
	"spatialintel/internal/logger"
	"spatialintel/internal/metrics"
)

// Counter is the part of the event gateway the analyzer needs
type Counter interface {
	Count(ctx context.Context, bbox event.BoundingBox, window event.TimeWindow) (int64, error)
}

// Analyzer implements trend.Analyzer over two adjacent counting windows
type Analyzer struct {
	counter   Counter
	publisher trend.Publisher
	now       func() time.Time
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithClock replaces time.Now as the source of "now"
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithPublisher forwards every computed result to p
func WithPublisher(p trend.Publisher) Option {
	return func(a *Analyzer) {
		a.publisher = p
	}
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(counter Counter, opts ...Option) *Analyzer {
	a := &Analyzer{
		counter: counter,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze compares the last windowMinutes against the preceding window of equal length
func (a *Analyzer) Analyze(ctx context.Context, bbox event.BoundingBox, windowMinutes int) (*trend.Result, error) {
	return a.AnalyzeAt(ctx, bbox, windowMinutes, a.now())
}

// AnalyzeAt runs the analysis with the windows ending at now
func (a *Analyzer) AnalyzeAt(ctx context.Context, bbox event.BoundingBox, windowMinutes int, now time.Time) (*trend.Result, error) {
	if err := ValidateWindow(windowMinutes); err != nil {
		return nil, err
	}
	if err := bbox.Validate(); err != nil {
		return nil, err
	}

	now = now.UTC()
	current, previous := trend.Windows(now, time.Duration(windowMinutes)*time.Minute)

	currentCount, err := a.counter.Count(ctx, bbox, current)
	if err != nil {
		return nil, fmt.Errorf("error counting current window: %w", err)
	}

	previousCount, err := a.counter.Count(ctx, bbox, previous)
	if err != nil {
		return nil, fmt.Errorf("error counting previous window: %w", err)
	}

	delta, pct, label := trend.Classify(currentCount, previousCount)

	result := &trend.Result{
		BBox:          bbox,
		WindowMinutes: windowMinutes,
		Current:       trend.WindowCount{Start: current.Start, End: current.End, Count: currentCount},
		Previous:      trend.WindowCount{Start: previous.Start, End: previous.End, Count: previousCount},
		Delta:         delta,
		PctChange:     pct,
		Trend:         label,
	}

	metrics.TrendResultsTotal.WithLabelValues(string(label)).Inc()

	if a.publisher != nil {
		if err := a.publisher.PublishResult(ctx, *result); err != nil {
			logger.L().Warn("trend_publish_failed", "trend", label, "error", err)
		}
	}

	return result, nil
}

// ValidateWindow requires 1 <= windowMinutes <= trend.MaxWindowMinutes
func ValidateWindow(windowMinutes int) error {
	if windowMinutes <= 0 {
		return fmt.Errorf("%w: window_minutes must be a positive integer", event.ErrValidation)
	}
	if windowMinutes > trend.MaxWindowMinutes {
		return fmt.Errorf("%w: window_minutes must not exceed %d", event.ErrValidation, trend.MaxWindowMinutes)
	}
	return nil
}
