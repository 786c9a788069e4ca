package trend

import (
	"time"

	"spatialintel/internal/domain/event"
)

// Label classifies the change between two adjacent windows
type Label string

const (
	LabelNew  Label = "new"
	LabelUp   Label = "up"
	LabelDown Label = "down"
	LabelFlat Label = "flat"
)

// DefaultWindowMinutes is used when the caller does not pick a window
const DefaultWindowMinutes = 60

// MaxWindowMinutes bounds the window to one year
const MaxWindowMinutes = 365 * 24 * 60

// WindowCount is the event count of one half-open window
type WindowCount struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int64     `json:"count"`
}

// Result compares the current window against the one immediately before it
type Result struct {
	BBox          event.BoundingBox `json:"bbox"`
	WindowMinutes int               `json:"window_minutes"`
	Current       WindowCount       `json:"current"`
	Previous      WindowCount       `json:"previous"`
	Delta         int64             `json:"delta"`
	// PctChange is a signed fraction (0.25 = +25%). Nil when the previous count is zero.
	PctChange *float64 `json:"pct_change"`
	Trend     Label    `json:"trend"`
}

// Windows returns the current and previous intervals ending at now.
// previous.End == current.Start and both span window.
func Windows(now time.Time, window time.Duration) (current, previous event.TimeWindow) {
	current = event.TimeWindow{Start: now.Add(-window), End: now}
	previous = event.TimeWindow{Start: now.Add(-2 * window), End: current.Start}
	return current, previous
}

// Classify derives delta, percent change and label from the two counts
func Classify(currentCount, previousCount int64) (delta int64, pctChange *float64, label Label) {
	delta = currentCount - previousCount

	switch {
	case previousCount == 0 && currentCount > 0:
		label = LabelNew
	case delta > 0:
		label = LabelUp
	case delta < 0:
		label = LabelDown
	default:
		label = LabelFlat
	}

	if previousCount > 0 {
		pct := float64(delta) / float64(previousCount)
		pctChange = &pct
	}

	return delta, pctChange, label
}
