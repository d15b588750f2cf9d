// Package analytics journals app-state events published on the event bus.
package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/vpndesk/internal/events"
	"git.home.luguber.info/inful/vpndesk/internal/eventstore"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
)

// Tracker appends every events.AppState event to a journal under one session id.
type Tracker struct {
	bus       *events.Bus
	store     eventstore.Store
	sessionID string
	logger    *slog.Logger

	mu     sync.Mutex
	cancel func()
	done   chan struct{}
}

// NewTracker creates a tracker with a fresh session id.
func NewTracker(bus *events.Bus, store eventstore.Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		bus:       bus,
		store:     store,
		sessionID: uuid.NewString(),
		logger:    logger.With(logfields.Service("analytics")),
	}
}

// SessionID identifies this process run in the journal.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Start subscribes to the bus and journals events until Stop.
func (t *Tracker) Start(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return nil
	}

	ch, unsubscribe := events.Subscribe[events.AppState](t.bus, 64)
	t.cancel = unsubscribe
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		for evt := range ch {
			t.record(evt)
		}
	}()

	t.logger.Info("Analytics session started", "session_id", t.sessionID)
	return nil
}

// Stop unsubscribes and waits until queued events are written or ctx is done.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) record(evt events.AppState) {
	rec := eventstore.Record{
		SessionID: t.sessionID,
		Action:    evt.AppStateAction(),
		Value:     evt.AppStateValue(),
	}
	if p, ok := evt.(events.IdentityProgressChanged); ok && p.AttemptID != "" {
		rec.Metadata = map[string]string{logfields.KeyAttemptID: p.AttemptID}
	}
	// Journal writes must not depend on the producer's lifetime.
	if err := t.store.Append(context.Background(), rec); err != nil {
		t.logger.Warn("Failed to journal app state event", logfields.Action(rec.Action), logfields.Error(err))
	}
}
