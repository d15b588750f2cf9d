// Package payment tracks the current identity's balance.
package payment

import (
	"context"
	"log/slog"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store holds the balance of the current identity.
type Store struct {
	root      storeapi.Root
	api       storeapi.IdentityService
	logger    *slog.Logger
	balance   *reactive.Value[uint64]
	gen       atomic.Uint64
	reactions reactive.Reactions
}

func New(root storeapi.Root, api storeapi.IdentityService) (*Store, error) {
	if api == nil {
		return nil, ferrors.ConfigError("identity service is required").Build()
	}
	return &Store{
		root:    root,
		api:     api,
		logger:  root.Logger("payment"),
		balance: reactive.NewValue[uint64](0),
	}, nil
}

// Balance is the current identity's balance in the smallest token unit.
func (s *Store) Balance() reactive.Observable[uint64] {
	return s.balance
}

// Refresh reads the balance of id.
func (s *Store) Refresh(ctx context.Context, id string) error {
	return s.refresh(ctx, id, s.gen.Load())
}

func (s *Store) refresh(ctx context.Context, id string, gen uint64) error {
	status, err := s.api.IdentityStatus(ctx, id)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to get balance").
			WithContext("identity", id).
			Build()
	}
	// A newer identity change supersedes this result.
	if s.gen.Load() != gen {
		return nil
	}
	s.balance.Set(status.Balance)
	return nil
}

// SetupReactions refreshes the balance whenever the current identity changes.
func (s *Store) SetupReactions() {
	s.reactions.Add(s.root.Identity().Current().Observe(func(id *storeapi.Identity) {
		gen := s.gen.Add(1)
		if id == nil {
			s.balance.Set(0)
			return
		}
		idv := id.ID
		s.root.Spawn(func(ctx context.Context) {
			if err := s.refresh(ctx, idv, gen); err != nil {
				s.logger.Warn("Could not refresh balance", logfields.Identity(idv), logfields.Error(err))
			}
		})
	}))
}

func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

var _ storeapi.Reactor = (*Store)(nil)
