package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spatialintel/internal/domain/event"
	"spatialintel/internal/domain/trend"
)

type captureConn struct {
	msgs []*nats.Msg
	err  error
}

func (c *captureConn) PublishMsg(m *nats.Msg) error {
	c.msgs = append(c.msgs, m)
	return c.err
}

func sampleResult(pct *float64, label trend.Label) trend.Result {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	current, previous := trend.Windows(now, time.Hour)
	return trend.Result{
		BBox:          event.BoundingBox{West: -1, South: 51, East: 1, North: 52},
		WindowMinutes: 60,
		Current:       trend.WindowCount{Start: current.Start, End: current.End, Count: 3},
		Previous:      trend.WindowCount{Start: previous.Start, End: previous.End, Count: 1},
		Delta:         2,
		PctChange:     pct,
		Trend:         label,
	}
}

func TestPublishResult(t *testing.T) {
	conn := &captureConn{}
	publisher := NewTrendPublisher(conn, "trend")
	pct := 2.0

	require.NoError(t, publisher.PublishResult(context.Background(), sampleResult(&pct, trend.LabelUp)))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "trend.computed", msg.Subject)
	assert.NotEmpty(t, msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "up", msg.Header.Get("Trend"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Data, &body))
	assert.Equal(t, "up", body["trend"])
	assert.Equal(t, 2.0, body["pct_change"])
	assert.Equal(t, 2.0, body["delta"])
}

func TestPublishResultWithoutPctChange(t *testing.T) {
	conn := &captureConn{}
	publisher := NewTrendPublisher(conn, "spatial")

	require.NoError(t, publisher.PublishResult(context.Background(), sampleResult(nil, trend.LabelNew)))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(conn.msgs[0].Data, &body))
	v, ok := body["pct_change"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, "spatial.computed", conn.msgs[0].Subject)
}

func TestPublishResultUniqueIDs(t *testing.T) {
	conn := &captureConn{}
	publisher := NewTrendPublisher(conn, "trend")

	for i := 0; i < 3; i++ {
		require.NoError(t, publisher.PublishResult(context.Background(), sampleResult(nil, trend.LabelFlat)))
	}

	ids := map[string]bool{}
	for _, m := range conn.msgs {
		ids[m.Header.Get(nats.MsgIdHdr)] = true
	}
	assert.Len(t, ids, 3)
}

func TestPublishResultErrors(t *testing.T) {
	boom := errors.New("no responders")
	publisher := NewTrendPublisher(&captureConn{err: boom}, "trend")
	assert.ErrorIs(t, publisher.PublishResult(context.Background(), sampleResult(nil, trend.LabelFlat)), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn := &captureConn{}
	err := NewTrendPublisher(conn, "trend").PublishResult(ctx, sampleResult(nil, trend.LabelFlat))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.msgs)
}
