package storeapi

import "context"

// IdentityService is the daemon's identity API.
type IdentityService interface {
	ListIdentities(ctx context.Context) ([]Identity, error)
	CreateIdentity(ctx context.Context, passphrase string) (Identity, error)
	SetCurrentIdentity(ctx context.Context, id string) (Identity, error)
	IdentityStatus(ctx context.Context, id string) (Identity, error)
	RegisterIdentity(ctx context.Context, id, referralToken string) error
}

// ProposalService lists provider offers.
type ProposalService interface {
	Proposals(ctx context.Context) ([]Proposal, error)
}

// ConnectionService controls the tunnel.
type ConnectionService interface {
	ConnectionStatus(ctx context.Context) (ConnectionStatus, error)
	Disconnect(ctx context.Context) error
}

// ReferralService fetches an identity's referral token.
type ReferralService interface {
	ReferralToken(ctx context.Context, id string) (string, error)
}

// FeedbackService files issue reports.
type FeedbackService interface {
	ReportIssue(ctx context.Context, issue Issue) error
}

// HealthService probes daemon liveness.
type HealthService interface {
	Healthcheck(ctx context.Context) error
}

// DaemonAPI is every daemon endpoint the store graph calls.
type DaemonAPI interface {
	HealthService
	IdentityService
	ProposalService
	ConnectionService
	ReferralService
	FeedbackService
}

// UserConfigService is the async key-value store behind the config store.
// Keys are dotted paths such as "desktop.onboarded".
type UserConfigService interface {
	Load(ctx context.Context) (map[string]any, error)
	Set(ctx context.Context, key string, value any) error
}

// Signals carries out-of-band messages on the daemon transport.
type Signals interface {
	// Subscribe calls fn for every message on channel until the returned func is called.
	Subscribe(channel string, fn func(payload []byte)) (unsubscribe func(), err error)
	Publish(ctx context.Context, channel string, payload []byte) error
}

// KeySource delivers global key presses.
type KeySource interface {
	// OnKey calls fn whenever key is pressed until the returned func is called.
	OnKey(key string, fn func()) (unregister func())
}

// Transport channel names.
const (
	ChannelDisconnect  = "disconnect"
	ChannelDaemonStart = "daemon.start"
)
