package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"git.home.luguber.info/inful/vpndesk/internal/app"
	"git.home.luguber.info/inful/vpndesk/internal/config"
	"git.home.luguber.info/inful/vpndesk/internal/input"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	NoKeys      bool          `help:"Do not read global keys from the terminal"`
	StopTimeout time.Duration `help:"Grace period for in-flight work at shutdown" default:"30s"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	interactive := !r.NoKeys && term.IsTerminal(int(os.Stdin.Fd()))

	var logOut io.Writer = os.Stderr
	if interactive {
		// Raw mode disables output post-processing, so log lines need explicit CRs.
		logOut = input.NewCRLFWriter(os.Stderr)
	}
	cfg, err := loadSettings(g, root, logOut)
	if err != nil {
		return err
	}
	return RunApp(g.Logger, cfg, interactive, r.StopTimeout)
}

// RunApp runs the full application until SIGINT/SIGTERM or Ctrl+C on the terminal.
func RunApp(logger *slog.Logger, cfg *config.Config, interactive bool, stopTimeout time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var opts []app.Option
	if interactive {
		opts = append(opts, app.WithTerminal(os.Stdin, cancel))
	}
	a, err := app.New(cfg, logger, opts...)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		_ = a.Stop(stopCtx)
		return err
	}

	dispose := a.Root().Router().Location().Observe(func(loc storeapi.Location) {
		logger.Info("Location changed", logfields.Location(string(loc)))
	})
	defer dispose()

	logger.Info("vpndesk started, waiting for shutdown signal",
		slog.String("daemon_url", cfg.Daemon.URL),
		slog.Bool("development", cfg.IsDevelopment()),
		slog.Bool("keys", interactive))

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := a.Stop(stopCtx); err != nil {
		return err
	}
	logger.Info("vpndesk stopped")
	return nil
}
