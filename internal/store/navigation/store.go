package navigation

import (
	"log/slog"

	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store decides where the application should be from the overall state.
type Store struct {
	root      storeapi.Root
	logger    *slog.Logger
	reactions reactive.Reactions
}

// New creates the navigation store.
func New(root storeapi.Root) *Store {
	return &Store{root: root, logger: root.Logger("navigation")}
}

// Route computes the location for the current state without navigating.
func (s *Store) Route() storeapi.Location {
	if s.root.Daemon().Status().Get() != storeapi.DaemonUp {
		return storeapi.LocationLoading
	}
	if !s.root.Config().Onboarded() {
		return storeapi.LocationWelcome
	}
	if s.root.Identity().Identity() == nil {
		return storeapi.LocationIdentitySetup
	}
	if s.root.Connection().Status().Get() == storeapi.ConnectionConnected {
		return storeapi.LocationConnection
	}
	return storeapi.LocationProposals
}

// DetermineRoute computes the route and pushes it.
func (s *Store) DetermineRoute() storeapi.Location {
	loc := s.Route()
	s.logger.Info("Route determined", logfields.Location(string(loc)))
	s.root.Recorder().IncRouteDetermination(string(loc))
	s.root.Router().Push(loc)
	return loc
}

// SetupReactions sends the user back to the loading screen whenever the
// daemon stops being Up. Route recomputation on Up belongs to the root.
func (s *Store) SetupReactions() {
	s.reactions.Add(s.root.Daemon().Status().Observe(func(status storeapi.DaemonStatus) {
		if status == storeapi.DaemonUp {
			return
		}
		if s.root.Router().Location().Get() != storeapi.LocationLoading {
			s.root.Router().Push(storeapi.LocationLoading)
		}
	}))
}

// DisposeReactions unregisters everything SetupReactions registered.
func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

var (
	_ storeapi.Navigator = (*Store)(nil)
	_ storeapi.Reactor   = (*Store)(nil)
)
