// Package config is the store-graph view of the persisted user configuration.
//
// It is distinct from internal/config, which holds the process settings.
package config

import (
	"context"
	"log/slog"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
	"git.home.luguber.info/inful/vpndesk/internal/userconfig"
)

// Filter keys below userconfig.KeyFilters.
const (
	KeyMaxPricePerHour = userconfig.KeyFilters + ".max_price_per_hour"
	KeyMaxPricePerGiB  = userconfig.KeyFilters + ".max_price_per_gib"
	KeyMinQuality      = userconfig.KeyFilters + ".min_quality"
	KeyCountry         = userconfig.KeyFilters + ".country"
)

// Store owns the config snapshot.
type Store struct {
	service  storeapi.UserConfigService
	logger   *slog.Logger
	snapshot *reactive.Value[storeapi.ConfigSnapshot]

	// writes counts completed persists so a load that read the document
	// before one of them does not publish stale values.
	writes atomic.Uint64
}

// New creates the config store backed by service.
func New(root storeapi.Root, service storeapi.UserConfigService) (*Store, error) {
	if service == nil {
		return nil, ferrors.ConfigError("user config service is required").Build()
	}
	return &Store{
		service:  service,
		logger:   root.Logger("config"),
		snapshot: reactive.NewValue(storeapi.ConfigSnapshot{}),
	}, nil
}

// LoadConfig reads the whole document and replaces the snapshot. Onboarded
// never goes back to false once published, and filters written while the
// document was being read are kept.
func (s *Store) LoadConfig(ctx context.Context) error {
	gen := s.writes.Load()
	doc, err := s.service.Load(ctx)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to load user config").Build()
	}
	snap := storeapi.ConfigSnapshot{
		Loaded:    true,
		Onboarded: userconfig.Bool(doc, userconfig.KeyOnboarded),
		Filters: storeapi.FilterConfig{
			MaxPricePerHour: userconfig.Float(doc, KeyMaxPricePerHour),
			MaxPricePerGiB:  userconfig.Float(doc, KeyMaxPricePerGiB),
			MinQuality:      userconfig.Int(doc, KeyMinQuality),
			Country:         userconfig.String(doc, KeyCountry),
		},
	}
	changed := s.snapshot.Update(func(cur storeapi.ConfigSnapshot) storeapi.ConfigSnapshot {
		snap.Onboarded = snap.Onboarded || cur.Onboarded
		if s.writes.Load() != gen {
			snap.Filters = cur.Filters
		}
		return snap
	})
	if changed {
		s.logger.Debug("User config loaded", slog.Bool("onboarded", snap.Onboarded))
	}
	return nil
}

// Reload is LoadConfig with the error logged, for file watchers.
func (s *Store) Reload(ctx context.Context) {
	if err := s.LoadConfig(ctx); err != nil {
		s.logger.Warn("Could not reload user config", logfields.Error(err))
	}
}

// SetOnboarded persists the onboarded flag.
func (s *Store) SetOnboarded(ctx context.Context) error {
	if err := s.service.Set(ctx, userconfig.KeyOnboarded, true); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to persist onboarded flag").Build()
	}
	s.writes.Add(1)
	s.snapshot.Update(func(cur storeapi.ConfigSnapshot) storeapi.ConfigSnapshot {
		cur.Onboarded = true
		return cur
	})
	s.logger.Info("Onboarding marked complete")
	return nil
}

// SetFilters persists f and publishes it.
func (s *Store) SetFilters(ctx context.Context, f storeapi.FilterConfig) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyMaxPricePerHour, f.MaxPricePerHour},
		{KeyMaxPricePerGiB, f.MaxPricePerGiB},
		{KeyMinQuality, f.MinQuality},
		{KeyCountry, f.Country},
	}
	for _, kv := range values {
		if err := s.service.Set(ctx, kv.key, kv.value); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to persist filter").
				WithContext("key", kv.key).
				Build()
		}
	}
	s.writes.Add(1)
	s.snapshot.Update(func(cur storeapi.ConfigSnapshot) storeapi.ConfigSnapshot {
		cur.Filters = f
		return cur
	})
	return nil
}

func (s *Store) Onboarded() bool {
	return s.snapshot.Get().Onboarded
}

func (s *Store) Snapshot() reactive.Observable[storeapi.ConfigSnapshot] {
	return s.snapshot
}

var _ storeapi.ConfigState = (*Store)(nil)
