package ipc

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/vpndesk/internal/events"
	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// LocalTransport routes channel messages through an events.Bus. It is used
// when the daemon shares the process, and in tests.
type LocalTransport struct {
	bus *events.Bus
	wg  sync.WaitGroup
}

// NewLocalTransport creates a transport on bus.
func NewLocalTransport(bus *events.Bus) *LocalTransport {
	return &LocalTransport{bus: bus}
}

func (t *LocalTransport) Start(context.Context) error { return nil }

// Stop waits for delivery goroutines of subscriptions that were already released.
func (t *LocalTransport) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe delivers payloads published on channel to fn from a dedicated goroutine.
func (t *LocalTransport) Subscribe(channel string, fn func(payload []byte)) (func(), error) {
	if t.bus == nil {
		return nil, ferrors.IPCError("local transport has no bus").WithRetry(ferrors.RetryNever).Build()
	}
	ch, unsubscribe := events.Subscribe[events.IPCMessage](t.bus, 16)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for msg := range ch {
			if msg.Channel == channel {
				fn(msg.Payload)
			}
		}
	}()
	return unsubscribe, nil
}

// Publish blocks until every subscriber accepted the message or ctx is done.
func (t *LocalTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if t.bus == nil {
		return ferrors.IPCError("local transport has no bus").WithRetry(ferrors.RetryNever).Build()
	}
	return t.bus.Publish(ctx, events.IPCMessage{Channel: channel, Payload: payload})
}
