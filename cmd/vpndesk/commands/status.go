package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"git.home.luguber.info/inful/vpndesk/internal/app"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	Timeout time.Duration `help:"How long to wait for the daemon" default:"5s"`
	JSON    bool          `name:"json" help:"Print the report as JSON"`
}

// StatusReport is the one-shot state summary.
type StatusReport struct {
	Daemon       storeapi.DaemonStatus       `json:"daemon"`
	Identity     string                      `json:"identity,omitempty"`
	Registration storeapi.RegistrationStatus `json:"registration,omitempty"`
	Onboarded    bool                        `json:"onboarded"`
	Connection   storeapi.ConnectionStatus   `json:"connection"`
	Location     storeapi.Location           `json:"location"`
}

func (s *StatusCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadSettings(g, root, os.Stderr)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, g.Logger)
	if err != nil {
		return err
	}
	return withApp(context.Background(), a, func(ctx context.Context) error {
		report := Report(ctx, a, s.Timeout)
		return PrintReport(os.Stdout, report, s.JSON)
	})
}

// Report waits up to timeout for the first route and summarizes the graph.
// A daemon that never comes up is reported, not returned as an error.
func Report(ctx context.Context, a *app.App, timeout time.Duration) StatusReport {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_ = waitForRoute(ctx, a)

	root := a.Root()
	r := StatusReport{
		Daemon:     root.Daemon().Status().Get(),
		Onboarded:  root.Config().Onboarded(),
		Connection: root.Connection().Status().Get(),
		Location:   root.Location(),
	}
	if id := root.Identity().Identity(); id != nil {
		r.Identity = id.ID
		r.Registration = id.RegistrationStatus
	}
	return r
}

// PrintReport writes r as aligned text or JSON.
func PrintReport(w io.Writer, r StatusReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	identity := r.Identity
	if identity == "" {
		identity = "-"
	}
	_, err := fmt.Fprintf(w, "daemon:     %s\nidentity:   %s %s\nonboarded:  %t\nconnection: %s\nlocation:   %s\n",
		r.Daemon, identity, r.Registration, r.Onboarded, r.Connection, r.Location)
	return err
}
