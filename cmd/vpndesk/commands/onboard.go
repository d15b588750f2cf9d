package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"git.home.luguber.info/inful/vpndesk/internal/app"
	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/store/onboarding"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// OnboardCmd implements the 'onboard' command.
type OnboardCmd struct {
	ReferralCode string        `name:"referral-code" help:"Register the new identity with this referral code"`
	Timeout      time.Duration `help:"How long to wait for the daemon" default:"2m"`
}

func (o *OnboardCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadSettings(g, root, os.Stderr)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, g.Logger)
	if err != nil {
		return err
	}
	return withApp(context.Background(), a, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, o.Timeout)
		defer cancel()
		return Onboard(ctx, a, o.ReferralCode, os.Stdout)
	})
}

// Onboard waits for the first route, creates an identity, and finishes
// onboarding. A stranded attempt returns its error.
func Onboard(ctx context.Context, a *app.App, code string, out io.Writer) error {
	root := a.Root()
	if err := waitForRoute(ctx, a); err != nil {
		return err
	}

	ob := root.Onboarding()
	var err error
	if code == "" {
		err = ob.CreateNewID(ctx)
	} else {
		err = ob.CreateNewIDWithReferralCode(ctx, code)
	}
	if err != nil {
		return err
	}
	if stranded := ob.Stranded().Get(); stranded != nil {
		_, _ = fmt.Fprintf(out, "progress: %s\n", ob.Progress().Get())
		return stranded
	}

	ob.FinishIDSetup(ctx)

	printOnboarded(out, root.Identity().Identity(), ob.Progress().Get(), root.Location())
	return nil
}

// printOnboarded writes the onboarding summary. id may be nil when a daemon
// restart reloaded the identities in the meantime.
func printOnboarded(out io.Writer, id *storeapi.Identity, progress onboarding.Progress, loc storeapi.Location) {
	if id == nil {
		_, _ = fmt.Fprintln(out, "identity: -")
	} else {
		_, _ = fmt.Fprintf(out, "identity: %s\n", id.ID)
		_, _ = fmt.Fprintf(out, "registration: %s\n", id.RegistrationStatus)
	}
	_, _ = fmt.Fprintf(out, "progress: %s\n", progress)
	_, _ = fmt.Fprintf(out, "location: %s\n", loc)
}

// waitForRoute blocks until the daemon is Up and the first route after it was determined.
func waitForRoute(ctx context.Context, a *app.App) error {
	root := a.Root()
	if _, err := app.WaitFor(ctx, root.Daemon().Status(), func(s storeapi.DaemonStatus) bool {
		return s == storeapi.DaemonUp
	}); err != nil {
		return ferrors.DaemonError("daemon did not come up").
			WithCause(err).
			WithContext("url", a.Settings().Daemon.URL).
			Build()
	}
	if _, err := app.WaitFor(ctx, root.Router().Location(), func(l storeapi.Location) bool {
		return l != storeapi.LocationLoading
	}); err != nil {
		return ferrors.RuntimeError("route was not determined").WithCause(err).Build()
	}
	return nil
}

// withApp starts a, runs fn, and stops a again.
func withApp(ctx context.Context, a *app.App, fn func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		_ = a.Stop(context.Background())
		return err
	}
	runErr := fn(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
