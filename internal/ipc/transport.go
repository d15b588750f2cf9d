// Package ipc carries out-of-band signals between the client and the daemon
// transport: the daemon's "disconnect" request and the client's
// "daemon.start" request. NATSTransport is used against a running daemon;
// LocalTransport loops messages through the in-process event bus.
package ipc

import (
	"context"

	"git.home.luguber.info/inful/vpndesk/internal/config"
	"git.home.luguber.info/inful/vpndesk/internal/events"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Transport is a closable signal transport.
type Transport interface {
	storeapi.Signals
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// New selects the transport configured in cfg.
func New(cfg config.IPCConfig, bus *events.Bus) Transport {
	if cfg.Transport == config.IPCTransportNATS {
		return NewNATSTransport(cfg.NATSURL, cfg.SubjectPrefix)
	}
	return NewLocalTransport(bus)
}
