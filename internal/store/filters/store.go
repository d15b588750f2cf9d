// Package filters derives the active proposal filter from the user config
// and applies it to proposal lists.
package filters

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store holds the active filter.
type Store struct {
	root      storeapi.Root
	logger    *slog.Logger
	value     *reactive.Value[storeapi.FilterConfig]
	reactions reactive.Reactions
}

func New(root storeapi.Root) *Store {
	return &Store{
		root:   root,
		logger: root.Logger("filters"),
		value:  reactive.NewValue(storeapi.FilterConfig{}),
	}
}

func (s *Store) Filters() reactive.Observable[storeapi.FilterConfig] {
	return s.value
}

// SetupReactions syncs the filter with the config snapshot, now and on every change.
func (s *Store) SetupReactions() {
	snapshot := s.root.Config().Snapshot()
	s.apply(snapshot.Get())
	s.reactions.Add(snapshot.Observe(s.apply))
}

func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

func (s *Store) apply(snap storeapi.ConfigSnapshot) {
	if s.value.Set(snap.Filters) {
		s.logger.Debug("Proposal filter changed",
			slog.Float64("max_price_per_hour", snap.Filters.MaxPricePerHour),
			slog.Int("min_quality", snap.Filters.MinQuality))
	}
}

// Match reports whether p passes f. Zero-valued limits do not filter.
func Match(f storeapi.FilterConfig, p storeapi.Proposal) bool {
	if f.MaxPricePerHour > 0 && p.PricePerHour > f.MaxPricePerHour {
		return false
	}
	if f.MaxPricePerGiB > 0 && p.PricePerGiB > f.MaxPricePerGiB {
		return false
	}
	if p.Quality < f.MinQuality {
		return false
	}
	if f.Country != "" && !strings.EqualFold(f.Country, p.Country) {
		return false
	}
	return true
}

// Apply returns the proposals in ps that pass f, preserving order.
func Apply(f storeapi.FilterConfig, ps []storeapi.Proposal) []storeapi.Proposal {
	out := make([]storeapi.Proposal, 0, len(ps))
	for _, p := range ps {
		if Match(f, p) {
			out = append(out, p)
		}
	}
	return out
}

var (
	_ storeapi.FilterState = (*Store)(nil)
	_ storeapi.Reactor     = (*Store)(nil)
)
