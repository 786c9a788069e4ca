// internal/adapter/storage/event_store.go

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"spatialintel/internal/domain/event"
)

// EventStore implements event.Store on PostGIS
type EventStore struct {
	db *pgxpool.Pool
}

// NewEventStore creates a new event store
func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{
		db: db,
	}
}

// Insert persists a point; id and created_at are assigned by the database
func (s *EventStore) Insert(ctx context.Context, p event.Point) (event.Event, error) {
	query := `
		INSERT INTO events (geom)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326))
		RETURNING id, created_at
	`

	e := event.Event{Location: p}
	if err := s.db.QueryRow(ctx, query, p.Lon, p.Lat).Scan(&e.ID, &e.CreatedAt); err != nil {
		return event.Event{}, fmt.Errorf("error executing query: %w", err)
	}

	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// Select returns events matching f, most recent id first
func (s *EventStore) Select(ctx context.Context, f event.Filter, limit int) ([]event.Event, error) {
	query, args := buildSelect(f, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns the number of events matching f
func (s *EventStore) Count(ctx context.Context, f event.Filter) (int64, error) {
	query, args := buildCount(f)

	var n int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return n, nil
}

// Ping runs a trivial query against the pool
func (s *EventStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("error pinging database: %w", err)
	}
	return nil
}

func scanEvents(rows pgx.Rows) ([]event.Event, error) {
	events := []event.Event{}
	for rows.Next() {
		var e event.Event

		if err := rows.Scan(&e.ID, &e.Location.Lon, &e.Location.Lat, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}

		e.CreatedAt = e.CreatedAt.UTC()
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// buildWhere composes the spatial and time predicates shared by select and count
func buildWhere(f event.Filter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	argIndex := 1

	if f.BBox != nil {
		clauses = append(clauses, fmt.Sprintf(
			"ST_Intersects(geom, ST_MakeEnvelope($%d, $%d, $%d, $%d, 4326))",
			argIndex, argIndex+1, argIndex+2, argIndex+3,
		))
		args = append(args, f.BBox.West, f.BBox.South, f.BBox.East, f.BBox.North)
		argIndex += 4
	}

	if f.Window != nil {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d AND created_at < $%d", argIndex, argIndex+1))
		args = append(args, f.Window.Start, f.Window.End)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildSelect(f event.Filter, limit int) (string, []interface{}) {
	where, args := buildWhere(f)

	query := "SELECT id, ST_X(geom), ST_Y(geom), created_at FROM events" + where
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return query, args
}

func buildCount(f event.Filter) (string, []interface{}) {
	where, args := buildWhere(f)
	return "SELECT COUNT(*) FROM events" + where, args
}
