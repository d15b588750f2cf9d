package onboarding

import (
	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// ErrAttemptInProgress rejects an onboarding sequence started while another is running.
var ErrAttemptInProgress = ferrors.OnboardingError("an onboarding attempt is already in progress").Warning().Build()

// ErrIdentityNotFound is the stranded state: the identity was created but
// none was current after loading it.
var ErrIdentityNotFound = ferrors.IdentityError("identity not found after load").UserAction().Build()

// ErrProgressRegression rejects a progress change that moves backwards or skips a stage.
var ErrProgressRegression = ferrors.ValidationError("onboarding progress cannot move backwards or skip a stage").Build()

func progressRegression(from, to Progress) error {
	return ferrors.ValidationError(ErrProgressRegression.Message()).
		WithContext("from", from.String()).
		WithContext("to", to.String()).
		Build()
}
