package ipc

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
)

// NATSTransport maps channels to subjects "<prefix>.<channel>" on a NATS server.
type NATSTransport struct {
	url    string
	prefix string
	opts   []nats.Option
	logger *slog.Logger

	mu   sync.RWMutex
	conn *nats.Conn
}

// NewNATSTransport creates a transport; the connection is opened by Start.
func NewNATSTransport(url, prefix string, opts ...nats.Option) *NATSTransport {
	if prefix == "" {
		prefix = "vpndesk"
	}
	return &NATSTransport{
		url:    url,
		prefix: strings.TrimSuffix(prefix, "."),
		opts:   opts,
		logger: slog.Default().With(logfields.Service("ipc")),
	}
}

// Subject returns the NATS subject used for channel.
func (t *NATSTransport) Subject(channel string) string {
	return t.prefix + "." + channel
}

// Start connects to the server.
func (t *NATSTransport) Start(ctx context.Context) error {
	opts := append([]nats.Option{
		nats.Name("vpndesk"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				t.logger.Warn("IPC transport disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			t.logger.Info("IPC transport reconnected", "url", c.ConnectedUrl())
		}),
	}, t.opts...)

	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}

	conn, err := nats.Connect(t.url, opts...)
	if err != nil {
		return ferrors.IPCError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", t.url).
			Build()
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	t.logger.Info("IPC transport connected", "url", t.url, "prefix", t.prefix)
	return nil
}

// Stop drains subscriptions and closes the connection.
func (t *NATSTransport) Stop(context.Context) error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Drain(); err != nil {
		conn.Close()
		return ferrors.IPCError("failed to drain NATS connection").WithCause(err).Build()
	}
	return nil
}

func (t *NATSTransport) connection() (*nats.Conn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.conn == nil {
		return nil, ferrors.IPCError("NATS transport not connected").
			WithRetry(ferrors.RetryNever).
			Build()
	}
	return t.conn, nil
}

// Subscribe delivers payloads published on channel to fn.
func (t *NATSTransport) Subscribe(channel string, fn func(payload []byte)) (func(), error) {
	conn, err := t.connection()
	if err != nil {
		return nil, err
	}
	sub, err := conn.Subscribe(t.Subject(channel), func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, ferrors.IPCError("failed to subscribe").
			WithCause(err).
			WithContext("subject", t.Subject(channel)).
			Build()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil && conn.IsConnected() {
				t.logger.Debug("IPC unsubscribe failed", logfields.Channel(channel), logfields.Error(err))
			}
		})
	}, nil
}

// Publish sends payload on channel and flushes so the server has it on return.
func (t *NATSTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	conn, err := t.connection()
	if err != nil {
		return err
	}
	if err := conn.Publish(t.Subject(channel), payload); err != nil {
		return ferrors.IPCError("failed to publish").
			WithCause(err).
			WithContext("subject", t.Subject(channel)).
			Build()
	}
	if err := conn.FlushWithContext(ctx); err != nil {
		return ferrors.IPCError("failed to flush publish").
			WithCause(err).
			WithContext("subject", t.Subject(channel)).
			Build()
	}
	return nil
}
