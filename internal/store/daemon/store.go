// Package daemon owns the daemon connectivity signal.
package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"

	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store holds the observed daemon status.
type Store struct {
	root      storeapi.Root
	logger    *slog.Logger
	signals   storeapi.Signals
	autostart bool
	status    *reactive.Value[storeapi.DaemonStatus]
	starting  atomic.Bool
	reactions reactive.Reactions
}

// New creates the daemon store. signals may be nil when autostart is off.
func New(root storeapi.Root, signals storeapi.Signals, autostart bool) *Store {
	return &Store{
		root:      root,
		logger:    root.Logger("daemon"),
		signals:   signals,
		autostart: autostart && signals != nil,
		status:    reactive.NewValue(storeapi.DaemonStarting),
	}
}

// Status is the daemon connectivity signal.
func (s *Store) Status() reactive.Observable[storeapi.DaemonStatus] {
	return s.status
}

// SetStatus records a new observation. Repeated observations of the same
// status do not notify.
func (s *Store) SetStatus(status storeapi.DaemonStatus) {
	if s.status.Set(status) {
		s.logger.Info("Daemon status changed", logfields.DaemonStatus(string(status)))
	}
}

// SetupReactions asks the transport to start the daemon whenever it goes Down.
func (s *Store) SetupReactions() {
	if !s.autostart {
		return
	}
	s.reactions.Add(s.status.Observe(func(status storeapi.DaemonStatus) {
		if status != storeapi.DaemonDown || !s.starting.CompareAndSwap(false, true) {
			return
		}
		s.root.Spawn(func(ctx context.Context) {
			defer s.starting.Store(false)
			s.requestStart(ctx)
		})
	}))
}

// DisposeReactions unregisters everything SetupReactions registered.
func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

func (s *Store) requestStart(ctx context.Context) {
	s.logger.Info("Requesting daemon start")
	if err := s.signals.Publish(ctx, storeapi.ChannelDaemonStart, nil); err != nil {
		s.logger.Warn("Daemon start request failed", logfields.Error(err))
		return
	}
	// Only move to Starting if nothing newer was observed meanwhile.
	s.status.Update(func(cur storeapi.DaemonStatus) storeapi.DaemonStatus {
		if cur == storeapi.DaemonDown {
			return storeapi.DaemonStarting
		}
		return cur
	})
}

var (
	_ storeapi.DaemonState = (*Store)(nil)
	_ storeapi.Reactor     = (*Store)(nil)
)
