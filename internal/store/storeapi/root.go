package storeapi

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/vpndesk/internal/metrics"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
)

// Router pushes navigation targets.
type Router interface {
	// Push synchronously records loc as the current location.
	Push(loc Location)
	Location() reactive.Observable[Location]
}

// Navigator recomputes the route from the overall state.
type Navigator interface {
	DetermineRoute() Location
}

// DaemonState exposes the daemon status signal.
type DaemonState interface {
	Status() reactive.Observable[DaemonStatus]
}

// ConfigState is the persisted user configuration as seen by the stores.
type ConfigState interface {
	LoadConfig(ctx context.Context) error
	SetOnboarded(ctx context.Context) error
	Onboarded() bool
	Snapshot() reactive.Observable[ConfigSnapshot]
}

// FilterState exposes the active proposal filter.
type FilterState interface {
	Filters() reactive.Observable[FilterConfig]
}

// IdentityState is the identity collaborator. Identity returns the current
// handle, nil when none is loaded.
type IdentityState interface {
	IdentityExists() bool
	Identity() *Identity
	Current() reactive.Observable[*Identity]
	Create(ctx context.Context) error
	LoadIdentity(ctx context.Context) error
	Register(ctx context.Context, id *Identity, code string) error
}

// ConnectionState is the connection collaborator.
type ConnectionState interface {
	Status() reactive.Observable[ConnectionStatus]
	Disconnect(ctx context.Context) error
}

// Root is the non-owning handle every sub-store receives. Accessors return
// capability interfaces, never the concrete stores.
type Root interface {
	Router() Router
	Navigation() Navigator
	Daemon() DaemonState
	Config() ConfigState
	Filters() FilterState
	Identity() IdentityState
	Connection() ConnectionState

	// Logger returns the root logger tagged with the store name.
	Logger(store string) *slog.Logger
	// Spawn runs a reaction effect in the root's tracked effect group.
	Spawn(fn func(ctx context.Context))
	// Emit publishes an application event without blocking.
	Emit(evt any)
	Recorder() metrics.Recorder
}

// Reactor is implemented by sub-stores that register reactions once the whole graph exists.
type Reactor interface {
	SetupReactions()
	DisposeReactions()
}
