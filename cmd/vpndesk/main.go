package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/vpndesk/cmd/vpndesk/commands"
	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("vpndesk"),
		kong.Description("Headless application state runner for the VPN desktop client"),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	global := &commands.Global{Logger: slog.Default()}
	if err := parser.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
