// Package navigation owns the current location and the route decision.
package navigation

import (
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/vpndesk/internal/events"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

const historyLimit = 32

// Router records pushed locations. The view layer observes Location.
type Router struct {
	root     storeapi.Root
	logger   *slog.Logger
	location *reactive.Value[storeapi.Location]

	mu      sync.Mutex
	history []storeapi.Location
}

// NewRouter creates a router starting at the loading screen.
func NewRouter(root storeapi.Root) *Router {
	return &Router{
		root:     root,
		logger:   root.Logger("router"),
		location: reactive.NewValue(storeapi.LocationLoading),
	}
}

// Push makes loc the current location. Pushing the current location again is
// recorded in the history but does not notify observers.
func (r *Router) Push(loc storeapi.Location) {
	r.mu.Lock()
	r.history = append(r.history, loc)
	if len(r.history) > historyLimit {
		r.history = r.history[len(r.history)-historyLimit:]
	}
	r.mu.Unlock()

	r.logger.Debug("Navigating", logfields.Location(string(loc)))
	r.root.Recorder().IncNavigation(string(loc))
	r.root.Emit(events.Navigated{Location: string(loc), At: time.Now()})
	r.location.Set(loc)
}

// Location is the current location.
func (r *Router) Location() reactive.Observable[storeapi.Location] {
	return r.location
}

// History returns the most recent pushes, oldest first.
func (r *Router) History() []storeapi.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]storeapi.Location, len(r.history))
	copy(out, r.history)
	return out
}

var _ storeapi.Router = (*Router)(nil)
