// Package proposals keeps the provider offer list and its filtered view.
package proposals

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/filters"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store holds the fetched proposals.
type Store struct {
	root      storeapi.Root
	api       storeapi.ProposalService
	logger    *slog.Logger
	all       *reactive.Value[[]storeapi.Proposal]
	filtered  *reactive.Value[[]storeapi.Proposal]
	fetching  atomic.Bool
	reactions reactive.Reactions
}

func New(root storeapi.Root, api storeapi.ProposalService) (*Store, error) {
	if api == nil {
		return nil, ferrors.ConfigError("proposal service is required").Build()
	}
	return &Store{
		root:     root,
		api:      api,
		logger:   root.Logger("proposals"),
		all:      reactive.NewValueFunc[[]storeapi.Proposal](nil, slices.Equal),
		filtered: reactive.NewValueFunc[[]storeapi.Proposal](nil, slices.Equal),
	}, nil
}

// All is every proposal returned by the daemon.
func (s *Store) All() reactive.Observable[[]storeapi.Proposal] {
	return s.all
}

// Filtered is All narrowed by the active filter.
func (s *Store) Filtered() reactive.Observable[[]storeapi.Proposal] {
	return s.filtered
}

// Fetch reloads the proposal list.
func (s *Store) Fetch(ctx context.Context) error {
	ps, err := s.api.Proposals(ctx)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to fetch proposals").Build()
	}
	s.logger.Debug("Proposals fetched", slog.Int("count", len(ps)))
	s.all.Set(ps)
	return nil
}

// SetupReactions fetches on daemon Up and re-filters on list or filter changes.
func (s *Store) SetupReactions() {
	s.reactions.Add(s.root.Daemon().Status().Observe(func(status storeapi.DaemonStatus) {
		if status != storeapi.DaemonUp || !s.fetching.CompareAndSwap(false, true) {
			return
		}
		s.root.Spawn(func(ctx context.Context) {
			defer s.fetching.Store(false)
			if err := s.Fetch(ctx); err != nil {
				s.logger.Warn("Could not fetch proposals", logfields.Error(err))
			}
		})
	}))
	s.reactions.Add(s.all.Observe(func([]storeapi.Proposal) { s.refilter() }))
	s.reactions.Add(s.root.Filters().Filters().Observe(func(storeapi.FilterConfig) { s.refilter() }))
}

func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

func (s *Store) refilter() {
	s.filtered.Set(filters.Apply(s.root.Filters().Filters().Get(), s.all.Get()))
}

var _ storeapi.Reactor = (*Store)(nil)
