// Package storetest provides a scripted storeapi.Root and collaborator fakes
// for testing sub-stores in isolation.
package storetest

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/metrics"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Root is a storeapi.Root whose capabilities are fakes. Replace any field
// with a real store to exercise it against the rest of the fakes.
type Root struct {
	RouterCap     storeapi.Router
	NavigatorCap  storeapi.Navigator
	DaemonCap     storeapi.DaemonState
	ConfigCap     storeapi.ConfigState
	FiltersCap    storeapi.FilterState
	IdentityCap   storeapi.IdentityState
	ConnectionCap storeapi.ConnectionState
	RecorderImpl  metrics.Recorder

	Router     *Router
	Navigator  *Navigator
	Daemon     *Daemon
	Config     *Config
	Filters    *Filters
	Ident      *Identity
	Connection *Connection
	Logs       *LogSink

	logger *slog.Logger
	group  *reactive.Group

	mu     sync.Mutex
	events []any
}

// NewRoot returns a root wired to fresh fakes.
func NewRoot() *Root {
	r := &Root{
		Router:     NewRouter(),
		Navigator:  &Navigator{},
		Daemon:     NewDaemon(),
		Config:     NewConfig(),
		Filters:    NewFilters(),
		Ident:      NewIdentity(),
		Connection: NewConnection(),
		Logs:       NewLogSink(),
		group:      reactive.NewGroup(context.Background()),
	}
	r.RouterCap = r.Router
	r.NavigatorCap = r.Navigator
	r.DaemonCap = r.Daemon
	r.ConfigCap = r.Config
	r.FiltersCap = r.Filters
	r.IdentityCap = r.Ident
	r.ConnectionCap = r.Connection
	r.RecorderImpl = metrics.NoopRecorder{}
	r.logger = slog.New(r.Logs)
	return r
}

func (r *Root) Router() storeapi.Router              { return r.RouterCap }
func (r *Root) Navigation() storeapi.Navigator       { return r.NavigatorCap }
func (r *Root) Daemon() storeapi.DaemonState         { return r.DaemonCap }
func (r *Root) Config() storeapi.ConfigState         { return r.ConfigCap }
func (r *Root) Filters() storeapi.FilterState        { return r.FiltersCap }
func (r *Root) Identity() storeapi.IdentityState     { return r.IdentityCap }
func (r *Root) Connection() storeapi.ConnectionState { return r.ConnectionCap }
func (r *Root) Recorder() metrics.Recorder           { return r.RecorderImpl }

func (r *Root) Logger(store string) *slog.Logger {
	return r.logger.With(logfields.Store(store))
}

func (r *Root) Spawn(fn func(ctx context.Context)) {
	r.group.Go(fn)
}

func (r *Root) Emit(evt any) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Wait blocks until every spawned effect has returned.
func (r *Root) Wait() {
	r.group.Wait()
}

// Events returns every emitted event.
func (r *Root) Events() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.events))
	copy(out, r.events)
	return out
}

var _ storeapi.Root = (*Root)(nil)
