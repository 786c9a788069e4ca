// internal/server/handlers/params.go

package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"spatialintel/internal/domain/event"
	"spatialintel/internal/service/events"
)

// naive timestamps without an offset are read as UTC
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseFloatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", event.ErrValidation, name)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", event.ErrValidation, name)
	}
	return v, nil
}

func parseBBox(q url.Values) (event.BoundingBox, error) {
	var (
		bbox event.BoundingBox
		err  error
	)

	if bbox.West, err = parseFloatParam(q, "west"); err != nil {
		return bbox, err
	}
	if bbox.South, err = parseFloatParam(q, "south"); err != nil {
		return bbox, err
	}
	if bbox.East, err = parseFloatParam(q, "east"); err != nil {
		return bbox, err
	}
	if bbox.North, err = parseFloatParam(q, "north"); err != nil {
		return bbox, err
	}

	return bbox, bbox.Validate()
}

// parseIntParam returns def when the parameter is absent
func parseIntParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", event.ErrValidation, name)
	}
	return v, nil
}

func parseLimit(q url.Values) (int, error) {
	limit, err := parseIntParam(q, "limit", events.DefaultLimit)
	if err != nil {
		return 0, err
	}
	return limit, events.ValidateLimit(limit)
}

func parseTimeParam(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: missing %s", event.ErrValidation, name)
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be an ISO-8601 timestamp", event.ErrValidation, name)
}

func parseTimeWindow(q url.Values) (event.TimeWindow, error) {
	start, err := parseTimeParam(q, "start")
	if err != nil {
		return event.TimeWindow{}, err
	}

	end, err := parseTimeParam(q, "end")
	if err != nil {
		return event.TimeWindow{}, err
	}

	w := event.TimeWindow{Start: start, End: end}
	return w, w.Validate()
}
