// Package referral fetches the referral token of the current identity.
package referral

import (
	"context"
	"log/slog"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store holds the referral token.
type Store struct {
	root      storeapi.Root
	api       storeapi.ReferralService
	logger    *slog.Logger
	token     *reactive.Value[string]
	gen       atomic.Uint64
	reactions reactive.Reactions
}

func New(root storeapi.Root, api storeapi.ReferralService) (*Store, error) {
	if api == nil {
		return nil, ferrors.ConfigError("referral service is required").Build()
	}
	return &Store{
		root:   root,
		api:    api,
		logger: root.Logger("referral"),
		token:  reactive.NewValue(""),
	}, nil
}

// Token is the referral token of the current identity, "" when unknown.
func (s *Store) Token() reactive.Observable[string] {
	return s.token
}

// SetupReactions fetches the token whenever the current identity changes.
func (s *Store) SetupReactions() {
	s.reactions.Add(s.root.Identity().Current().Observe(func(id *storeapi.Identity) {
		gen := s.gen.Add(1)
		s.token.Set("")
		if id == nil {
			return
		}
		idv := id.ID
		s.root.Spawn(func(ctx context.Context) {
			if err := s.fetch(ctx, idv, gen); err != nil {
				s.logger.Warn("Could not fetch referral token", logfields.Identity(idv), logfields.Error(err))
			}
		})
	}))
}

func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

func (s *Store) fetch(ctx context.Context, id string, gen uint64) error {
	token, err := s.api.ReferralToken(ctx, id)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to fetch referral token").Build()
	}
	if s.gen.Load() == gen {
		s.token.Set(token)
	}
	return nil
}

var _ storeapi.Reactor = (*Store)(nil)
