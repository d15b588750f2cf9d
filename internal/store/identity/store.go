// Package identity tracks the identity the daemon currently acts as.
package identity

import (
	"context"
	"log/slog"
	"sync"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store holds the current identity handle.
type Store struct {
	root    storeapi.Root
	api     storeapi.IdentityService
	logger  *slog.Logger
	current *reactive.Value[*storeapi.Identity]

	mu        sync.Mutex
	lastID    string
	reactions reactive.Reactions
}

// New creates the identity store.
func New(root storeapi.Root, api storeapi.IdentityService) (*Store, error) {
	if api == nil {
		return nil, ferrors.ConfigError("identity service is required").Build()
	}
	return &Store{
		root:    root,
		api:     api,
		logger:  root.Logger("identity"),
		current: reactive.NewValueFunc[*storeapi.Identity](nil, equal),
	}, nil
}

func equal(a, b *storeapi.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IdentityExists reports whether a current identity is loaded.
func (s *Store) IdentityExists() bool {
	return s.current.Get() != nil
}

// Identity returns a copy of the current identity, nil when none is loaded.
func (s *Store) Identity() *storeapi.Identity {
	cur := s.current.Get()
	if cur == nil {
		return nil
	}
	cp := *cur
	return &cp
}

func (s *Store) Current() reactive.Observable[*storeapi.Identity] {
	return s.current
}

// Create asks the daemon for a new identity. It does not select it; call
// LoadIdentity afterwards.
func (s *Store) Create(ctx context.Context) error {
	id, err := s.api.CreateIdentity(ctx, "")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIdentity, "failed to create identity").Build()
	}
	s.logger.Info("Identity created", logfields.Identity(id.ID))
	return nil
}

// LoadIdentity selects the daemon's first identity as current. With no
// identities the current handle becomes nil and no error is returned.
func (s *Store) LoadIdentity(ctx context.Context) error {
	ids, err := s.api.ListIdentities(ctx)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIdentity, "failed to list identities").Build()
	}
	if len(ids) == 0 {
		s.logger.Info("No identities found")
		s.current.Set(nil)
		return nil
	}

	selected, err := s.api.SetCurrentIdentity(ctx, ids[0].ID)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIdentity, "failed to select identity").
			WithContext("identity", ids[0].ID).
			Build()
	}
	s.logger.Info("Identity loaded",
		logfields.Identity(selected.ID),
		slog.String("registration_status", string(selected.RegistrationStatus)))
	s.current.Set(&selected)
	return nil
}

// Register registers id with the referral code and refreshes its status.
func (s *Store) Register(ctx context.Context, id *storeapi.Identity, code string) error {
	if id == nil {
		return ferrors.ValidationError("identity is required for registration").Build()
	}
	if err := s.api.RegisterIdentity(ctx, id.ID, code); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIdentity, "failed to register identity").
			WithContext("identity", id.ID).
			Build()
	}
	s.logger.Info("Identity registration requested", logfields.Identity(id.ID))
	s.refresh(ctx, id.ID)
	return nil
}

// SetupReactions refreshes the registration status whenever a different identity becomes current.
func (s *Store) SetupReactions() {
	s.reactions.Add(s.current.Observe(func(cur *storeapi.Identity) {
		if cur == nil {
			s.setLastID("")
			return
		}
		if !s.setLastID(cur.ID) {
			return
		}
		id := cur.ID
		s.root.Spawn(func(ctx context.Context) {
			s.refresh(ctx, id)
		})
	}))
}

func (s *Store) DisposeReactions() {
	s.reactions.DisposeAll()
}

// setLastID reports whether id differs from the previously observed one.
func (s *Store) setLastID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastID == id {
		return false
	}
	s.lastID = id
	return true
}

func (s *Store) refresh(ctx context.Context, id string) {
	status, err := s.api.IdentityStatus(ctx, id)
	if err != nil {
		s.logger.Warn("Could not refresh identity status", logfields.Identity(id), logfields.Error(err))
		return
	}
	// Drop the result if another identity became current meanwhile.
	s.current.Update(func(cur *storeapi.Identity) *storeapi.Identity {
		if cur == nil || cur.ID != id {
			return cur
		}
		return &status
	})
}

var (
	_ storeapi.IdentityState = (*Store)(nil)
	_ storeapi.Reactor       = (*Store)(nil)
)
