package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spatialintel/internal/domain/event"
)

func TestBuildSelectWithoutFilter(t *testing.T) {
	query, args := buildSelect(event.Filter{}, 100)

	assert.Equal(t, "SELECT id, ST_X(geom), ST_Y(geom), created_at FROM events ORDER BY id DESC LIMIT $1", query)
	assert.Equal(t, []interface{}{100}, args)
}

func TestBuildSelectWithBBox(t *testing.T) {
	bbox := event.BoundingBox{West: -10, South: -5, East: 10, North: 5}
	query, args := buildSelect(event.Filter{BBox: &bbox}, 100)

	assert.Equal(t,
		"SELECT id, ST_X(geom), ST_Y(geom), created_at FROM events"+
			" WHERE ST_Intersects(geom, ST_MakeEnvelope($1, $2, $3, $4, 4326))"+
			" ORDER BY id DESC LIMIT $5",
		query,
	)
	assert.Equal(t, []interface{}{-10.0, -5.0, 10.0, 5.0, 100}, args)
}

func TestBuildSelectWithBBoxAndWindow(t *testing.T) {
	bbox := event.BoundingBox{West: 0, South: 0, East: 1, North: 1}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	window := event.TimeWindow{Start: start, End: start.Add(time.Hour)}

	query, args := buildSelect(event.Filter{BBox: &bbox, Window: &window}, 200)

	assert.Contains(t, query, "ST_Intersects(geom, ST_MakeEnvelope($1, $2, $3, $4, 4326)) AND created_at >= $5 AND created_at < $6")
	assert.Contains(t, query, "LIMIT $7")
	assert.Len(t, args, 7)
	assert.Equal(t, window.Start, args[4])
	assert.Equal(t, window.End, args[5])
	assert.Equal(t, 200, args[6])
}

func TestBuildCountSharesPredicate(t *testing.T) {
	bbox := event.BoundingBox{West: 0, South: 0, East: 1, North: 1}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	window := event.TimeWindow{Start: start, End: start.Add(time.Hour)}
	f := event.Filter{BBox: &bbox, Window: &window}

	countQuery, countArgs := buildCount(f)
	where, whereArgs := buildWhere(f)

	assert.Equal(t, "SELECT COUNT(*) FROM events"+where, countQuery)
	assert.Equal(t, whereArgs, countArgs)

	selectQuery, _ := buildSelect(f, 10)
	assert.Contains(t, selectQuery, where)
}

func TestBuildWhereTimeOnly(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	window := event.TimeWindow{Start: start, End: start.Add(time.Hour)}

	where, args := buildWhere(event.Filter{Window: &window})
	assert.Equal(t, " WHERE created_at >= $1 AND created_at < $2", where)
	assert.Len(t, args, 2)
}
