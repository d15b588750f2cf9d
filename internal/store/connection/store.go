// Package connection tracks the VPN tunnel state.
package connection

import (
	"context"
	"log/slog"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store holds the connection status.
type Store struct {
	root      storeapi.Root
	api       storeapi.ConnectionService
	logger    *slog.Logger
	status    *reactive.Value[storeapi.ConnectionStatus]
	reactions reactive.Reactions
}

func New(root storeapi.Root, api storeapi.ConnectionService) (*Store, error) {
	if api == nil {
		return nil, ferrors.ConfigError("connection service is required").Build()
	}
	return &Store{
		root:   root,
		api:    api,
		logger: root.Logger("connection"),
		status: reactive.NewValue(storeapi.ConnectionNotConnected),
	}, nil
}

func (s *Store) Status() reactive.Observable[storeapi.ConnectionStatus] {
	return s.status
}

// Refresh asks the daemon for the tunnel state.
func (s *Store) Refresh(ctx context.Context) error {
	status, err := s.api.ConnectionStatus(ctx)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to get connection status").Build()
	}
	if s.status.Set(status) {
		s.logger.Info("Connection status changed", slog.String("status", string(status)))
	}
	return nil
}

// Disconnect tears the tunnel down. On failure the previous status is restored.
func (s *Store) Disconnect(ctx context.Context) error {
	prev := s.status.Get()
	s.status.Set(storeapi.ConnectionDisconnecting)
	if err := s.api.Disconnect(ctx); err != nil {
		s.status.Set(prev)
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to disconnect").Build()
	}
	s.status.Set(storeapi.ConnectionNotConnected)
	s.logger.Info("Disconnected")
	return nil
}

// SetupReactions refreshes the status on daemon Up and resets it when the daemon goes away.
func (s *Store) SetupReactions() {
	s.reactions.Add(s.root.Daemon().Status().Observe(func(status storeapi.DaemonStatus) {
		switch status {
		case storeapi.DaemonUp:
			s.root.Spawn(func(ctx context.Context) {
				if err := s.Refresh(ctx); err != nil {
					s.logger.Warn("Could not refresh connection status", logfields.Error(err))
				}
			})
		case storeapi.DaemonDown:
			s.status.Set(storeapi.ConnectionNotConnected)
		}
	}))
}

func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

var (
	_ storeapi.ConnectionState = (*Store)(nil)
	_ storeapi.Reactor         = (*Store)(nil)
)
