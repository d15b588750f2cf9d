// Package onboarding drives the first-run flow: identity creation, optional
// referral registration, and the hand-off to top-up or proposals.
//
// Progress is a forward-only marker. Every change goes through one mutator
// that validates the transition, logs it, records it, and emits an
// events.IdentityProgressChanged. Only one creation sequence runs at a
// time; a second one is rejected with ErrAttemptInProgress.
//
// When no identity is current after loading, the sequence ends without
// navigating and progress stays at Loading. That condition is published
// through Stranded until the next attempt starts.
package onboarding

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/vpndesk/internal/events"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/metrics"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store is the onboarding state machine.
type Store struct {
	root     storeapi.Root
	logger   *slog.Logger
	progress *reactive.Value[Progress]
	stranded *reactive.Value[error]
	inFlight atomic.Bool

	// mu serializes progress transitions and guards attemptID.
	mu        sync.Mutex
	attemptID string
}

func New(root storeapi.Root) *Store {
	return &Store{
		root:     root,
		logger:   root.Logger("onboarding"),
		progress: reactive.NewValue(ProgressNotStarted),
		stranded: reactive.NewValueFunc[error](nil, func(a, b error) bool { return a == b }),
	}
}

// Progress is the observable progress marker. Observers run while the
// transition lock is held and must not call SetProgress.
func (s *Store) Progress() reactive.Observable[Progress] {
	return s.progress
}

// Stranded holds ErrIdentityNotFound after a sequence dead-ended, nil otherwise.
func (s *Store) Stranded() reactive.Observable[error] {
	return s.stranded
}

// AttemptID returns the id of the latest attempt, "" before the first one.
func (s *Store) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

// InFlight reports whether a creation sequence is running.
func (s *Store) InFlight() bool {
	return s.inFlight.Load()
}

// GetStarted moves to the terms screen.
func (s *Store) GetStarted() {
	s.root.Router().Push(storeapi.LocationTerms)
}

// SetupMyID routes to the backup screen when an identity exists, otherwise to identity setup.
func (s *Store) SetupMyID() {
	if s.root.Identity().IdentityExists() {
		s.root.Router().Push(storeapi.LocationIdentityBackup)
		return
	}
	s.root.Router().Push(storeapi.LocationIdentitySetup)
}

// CreateNewID creates and loads an identity, then moves to the backup
// screen. Progress is left at Loading.
func (s *Store) CreateNewID(ctx context.Context) error {
	return s.run(ctx, "", false)
}

// CreateNewIDWithReferralCode is CreateNewID plus registration of the loaded
// identity with code. Progress ends at Complete.
func (s *Store) CreateNewIDWithReferralCode(ctx context.Context, code string) error {
	return s.run(ctx, code, true)
}

func (s *Store) run(ctx context.Context, code string, register bool) error {
	attemptID, err := s.begin()
	if err != nil {
		return err
	}
	outcome := metrics.OutcomeFailed
	defer func() {
		s.inFlight.Store(false)
		s.root.Recorder().IncOnboardingOutcome(outcome)
	}()

	identities := s.root.Identity()
	if err := identities.Create(ctx); err != nil {
		return err
	}
	s.mustAdvance(attemptID, ProgressLoading)
	if err := identities.LoadIdentity(ctx); err != nil {
		return err
	}

	id := identities.Identity()
	if id == nil {
		s.logger.Error("ID not found, exiting", logfields.AttemptID(attemptID))
		s.stranded.Set(ErrIdentityNotFound)
		outcome = metrics.OutcomeStranded
		return nil
	}

	if register {
		s.mustAdvance(attemptID, ProgressRegistering)
		if err := identities.Register(ctx, id, code); err != nil {
			return err
		}
		s.mustAdvance(attemptID, ProgressComplete)
	}

	s.root.Router().Push(storeapi.LocationIdentityBackup)
	outcome = metrics.OutcomeSuccess
	return nil
}

// begin claims the in-flight slot and restarts progress at Creating.
func (s *Store) begin() (string, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Onboarding attempt rejected", logfields.AttemptID(s.AttemptID()))
		s.root.Recorder().IncOnboardingOutcome(metrics.OutcomeRejected)
		return "", ErrAttemptInProgress
	}

	attemptID := uuid.NewString()
	s.stranded.Set(nil)

	s.mu.Lock()
	s.attemptID = attemptID
	s.mu.Unlock()

	if err := s.transition(attemptID, ProgressCreating, true); err != nil {
		s.inFlight.Store(false)
		return "", err
	}
	return attemptID, nil
}

// SetProgress advances progress by one stage, or Loading to Complete.
// Setting the current value is a no-op. Anything else returns ErrProgressRegression.
func (s *Store) SetProgress(p Progress) error {
	s.mu.Lock()
	attemptID := s.attemptID
	s.mu.Unlock()
	return s.advance(attemptID, p)
}

func (s *Store) advance(attemptID string, next Progress) error {
	return s.transition(attemptID, next, false)
}

// transition is the only writer of progress. A restart moves any stage back
// to Creating and is only taken when a new attempt begins; every other move
// must satisfy canAdvance.
func (s *Store) transition(attemptID string, next Progress, restart bool) error {
	s.mu.Lock()
	cur := s.progress.Get()
	switch {
	case restart:
		if next != ProgressCreating {
			s.mu.Unlock()
			return progressRegression(cur, next)
		}
	case cur == next:
		s.mu.Unlock()
		return nil
	case !canAdvance(cur, next):
		s.mu.Unlock()
		return progressRegression(cur, next)
	}
	s.progress.Set(next)
	s.mu.Unlock()

	s.transitioned(attemptID, next)
	return nil
}

// mustAdvance is advance for the steps of a running sequence, which only
// ever take valid forward steps.
func (s *Store) mustAdvance(attemptID string, next Progress) {
	if err := s.advance(attemptID, next); err != nil {
		s.logger.Error("Unexpected onboarding transition", logfields.AttemptID(attemptID), logfields.Error(err))
	}
}

func (s *Store) transitioned(attemptID string, p Progress) {
	s.logger.Info("Identity creation progress", logfields.Progress(p.String()), logfields.AttemptID(attemptID))
	s.root.Recorder().IncOnboardingProgress(p.String())
	s.root.Emit(events.IdentityProgressChanged{
		AttemptID: attemptID,
		Progress:  p.String(),
		ChangedAt: time.Now(),
	})
}

// FinishIDSetup marks onboarding done, then skips top-up when progress is
// Complete or the current identity is already registered.
func (s *Store) FinishIDSetup(ctx context.Context) {
	if err := s.Complete(ctx); err != nil {
		s.logger.Warn("Could not persist onboarding completion", logfields.Error(err))
	}
	if s.progress.Get() == ProgressComplete || storeapi.Registered(s.root.Identity().Identity()) {
		s.SkipTopup()
		return
	}
	s.root.Router().Push(storeapi.LocationTopupPrompt)
}

// Complete persists the onboarded flag.
func (s *Store) Complete(ctx context.Context) error {
	return s.root.Config().SetOnboarded(ctx)
}

// SkipTopup moves to the proposals screen.
func (s *Store) SkipTopup() {
	s.root.Router().Push(storeapi.LocationProposals)
}
