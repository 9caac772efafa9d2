package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Client holds the NATS connection and its JetStream context.
type Client struct {
	Conn   *nats.Conn
	JS     nats.JetStreamContext
	logger *slog.Logger
}

// Connect dials NATS with unlimited reconnects and initializes JetStream.
func Connect(url, name string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("[NATS] disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("[NATS] reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("[NATS] connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	logger.Info("[NATS] connected and JetStream initialized", "url", url)
	return &Client{Conn: conn, JS: js, logger: logger}, nil
}

// EnsureStream creates the stream if it doesn't exist.
func (c *Client) EnsureStream(name string, subjects []string) error {
	_, err := c.JS.StreamInfo(name)
	if err == nil {
		c.logger.Debug("[NATS] stream already exists", "stream", name)
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info %s: %w", name, err)
	}

	_, err = c.JS.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  subjects,
		Storage:   nats.FileStorage,
		Retention: nats.WorkQueuePolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", name, err)
	}
	c.logger.Info("[NATS] stream created", "stream", name, "subjects", subjects)
	return nil
}

// ConsumerSettings are shared by every durable consumer of the process.
type ConsumerSettings struct {
	MaxDeliver int
	AckWait    time.Duration
}

// SubscribeAll binds every route to a durable manual-ack consumer. Each
// consumer has at most one unacknowledged message, so jobs run one at a time.
func (c *Client) SubscribeAll(ctx context.Context, routes []Route, settings ConsumerSettings) ([]*nats.Subscription, error) {
	subs := make([]*nats.Subscription, 0, len(routes))
	for _, route := range routes {
		sub, err := c.JS.Subscribe(route.Subject, func(msg *nats.Msg) {
			delivered := uint64(1)
			if meta, err := msg.Metadata(); err == nil {
				delivered = meta.NumDelivered
			}
			handleMessage(ctx, msg.Data, delivered, msg, route.Handler, c.logger)
		},
			nats.Durable(route.Durable),
			nats.ManualAck(),
			nats.MaxDeliver(settings.MaxDeliver),
			nats.AckWait(settings.AckWait),
			nats.MaxAckPending(1),
		)
		if err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, fmt.Errorf("subscribe %s: %w", route.Subject, err)
		}
		c.logger.Info("[NATS] subscribed (jetstream)", "subject", route.Subject, "durable", route.Durable)
		subs = append(subs, sub)
	}
	return subs, nil
}

// Close drains pending messages before closing the connection.
func (c *Client) Close() {
	if c == nil || c.Conn == nil {
		return
	}
	if err := c.Conn.Drain(); err != nil {
		c.logger.Warn("[NATS] drain failed", "error", err)
		c.Conn.Close()
	}
}

// Alive reports whether the connection is up.
func (c *Client) Alive() bool {
	return c != nil && c.Conn != nil && c.Conn.IsConnected()
}
