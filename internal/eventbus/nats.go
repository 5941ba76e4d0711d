package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// Forwarder republishes every bus event on NATS as JSON, one subject per
// event type.
type Forwarder struct {
	bus    *Bus
	conn   *nats.Conn
	prefix string
}

func NewForwarder(bus *Bus, conn *nats.Conn, prefix string) *Forwarder {
	return &Forwarder{
		bus:    bus,
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
	}
}

// Connect dials url with reconnects enabled.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}

func (f *Forwarder) Subject(t EventType) string {
	return f.prefix + "." + string(t)
}

func (f *Forwarder) Start(ctx context.Context) error {
	subID, ch := f.bus.Subscribe(256)
	defer f.bus.Unsubscribe(subID)

	slog.Info("nats forwarder started", "prefix", f.prefix)
	for {
		select {
		case <-ctx.Done():
			slog.Info("nats forwarder stopped")
			return f.conn.Drain()
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("nats forwarder: failed to marshal event", "id", event.ID, "error", err)
				continue
			}
			if err := f.conn.Publish(f.Subject(event.Type), data); err != nil {
				slog.Error("nats forwarder: failed to publish", "subject", f.Subject(event.Type), "error", err)
			}
		}
	}
}
