// internal/adapter/messaging/trend_publisher.go

package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"spatialintel/internal/config"
	"spatialintel/internal/domain/trend"
	"spatialintel/internal/logger"
)

// Conn is the subset of *nats.Conn used for publishing
type Conn interface {
	PublishMsg(m *nats.Msg) error
}

// TrendPublisher publishes trend results to "<topic>.computed"
type TrendPublisher struct {
	conn  Conn
	topic string
}

// NewTrendPublisher creates a new publisher
func NewTrendPublisher(conn Conn, topic string) *TrendPublisher {
	return &TrendPublisher{
		conn:  conn,
		topic: topic,
	}
}

// Subject returns the subject results are published on
func (p *TrendPublisher) Subject() string {
	return fmt.Sprintf("%s.computed", p.topic)
}

// PublishResult serializes r and publishes it with a unique message id
func (p *TrendPublisher) PublishResult(ctx context.Context, r trend.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := p.message(r)
	if err != nil {
		return err
	}

	return p.conn.PublishMsg(msg)
}

func (p *TrendPublisher) message(r trend.Result) (*nats.Msg, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("error marshaling trend result: %w", err)
	}

	msg := nats.NewMsg(p.Subject())
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, uuid.New().String())
	msg.Header.Set("Trend", string(r.Trend))
	return msg, nil
}

// Connect opens a NATS connection with reconnect logging
func Connect(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("spatial-intel"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.L().Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.L().Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.L().Info("nats_closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
