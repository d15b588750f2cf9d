package daemonapi

import (
	"context"
	"net/http"
	"net/url"

	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// HealthInfo is the daemon's healthcheck payload.
type HealthInfo struct {
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

type identityDTO struct {
	ID                 string `json:"id"`
	RegistrationStatus string `json:"registration_status,omitempty"`
	Balance            uint64 `json:"balance,omitempty"`
}

func (d identityDTO) toIdentity() storeapi.Identity {
	status := storeapi.RegistrationStatus(d.RegistrationStatus)
	if status == "" {
		status = storeapi.RegistrationUnknown
	}
	return storeapi.Identity{ID: d.ID, RegistrationStatus: status, Balance: d.Balance}
}

type identityListDTO struct {
	Identities []identityDTO `json:"identities"`
}

type passphraseDTO struct {
	ID         string `json:"id,omitempty"`
	Passphrase string `json:"passphrase"`
}

type registerDTO struct {
	ReferralToken string `json:"referral_token,omitempty"`
}

type referralDTO struct {
	Token string `json:"token"`
}

type proposalListDTO struct {
	Proposals []storeapi.Proposal `json:"proposals"`
}

type connectionDTO struct {
	Status string `json:"status"`
}

// Health returns the daemon's healthcheck payload.
func (c *Client) Health(ctx context.Context) (HealthInfo, error) {
	var info HealthInfo
	err := c.call(ctx, http.MethodGet, "/healthcheck", nil, &info)
	return info, err
}

// Healthcheck reports whether the daemon answers.
func (c *Client) Healthcheck(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// ListIdentities returns every identity the daemon knows.
func (c *Client) ListIdentities(ctx context.Context) ([]storeapi.Identity, error) {
	var out identityListDTO
	if err := c.call(ctx, http.MethodGet, "/identities", nil, &out); err != nil {
		return nil, err
	}
	ids := make([]storeapi.Identity, 0, len(out.Identities))
	for _, d := range out.Identities {
		ids = append(ids, d.toIdentity())
	}
	return ids, nil
}

// CreateIdentity creates a new identity protected by passphrase.
func (c *Client) CreateIdentity(ctx context.Context, passphrase string) (storeapi.Identity, error) {
	var out identityDTO
	if err := c.call(ctx, http.MethodPost, "/identities", passphraseDTO{Passphrase: passphrase}, &out); err != nil {
		return storeapi.Identity{}, err
	}
	return out.toIdentity(), nil
}

// SetCurrentIdentity unlocks id and makes it the daemon's current identity.
func (c *Client) SetCurrentIdentity(ctx context.Context, id string) (storeapi.Identity, error) {
	var out identityDTO
	if err := c.call(ctx, http.MethodPut, "/identities/current", passphraseDTO{ID: id}, &out); err != nil {
		return storeapi.Identity{}, err
	}
	return out.toIdentity(), nil
}

// IdentityStatus returns registration status and balance of id.
func (c *Client) IdentityStatus(ctx context.Context, id string) (storeapi.Identity, error) {
	var out identityDTO
	if err := c.call(ctx, http.MethodGet, "/identities/"+url.PathEscape(id), nil, &out); err != nil {
		return storeapi.Identity{}, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return out.toIdentity(), nil
}

// RegisterIdentity starts registration of id, optionally with a referral token.
func (c *Client) RegisterIdentity(ctx context.Context, id, referralToken string) error {
	return c.call(ctx, http.MethodPost, "/identities/"+url.PathEscape(id)+"/register", registerDTO{ReferralToken: referralToken}, nil)
}

// ReferralToken returns the referral token id can hand out.
func (c *Client) ReferralToken(ctx context.Context, id string) (string, error) {
	var out referralDTO
	if err := c.call(ctx, http.MethodGet, "/identities/"+url.PathEscape(id)+"/referral", nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Proposals lists provider offers.
func (c *Client) Proposals(ctx context.Context) ([]storeapi.Proposal, error) {
	var out proposalListDTO
	if err := c.call(ctx, http.MethodGet, "/proposals", nil, &out); err != nil {
		return nil, err
	}
	return out.Proposals, nil
}

// ConnectionStatus returns the tunnel state.
func (c *Client) ConnectionStatus(ctx context.Context) (storeapi.ConnectionStatus, error) {
	var out connectionDTO
	if err := c.call(ctx, http.MethodGet, "/connection", nil, &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		return storeapi.ConnectionNotConnected, nil
	}
	return storeapi.ConnectionStatus(out.Status), nil
}

// Disconnect tears down the tunnel.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/connection", nil, nil)
}

// ReportIssue files a feedback report.
func (c *Client) ReportIssue(ctx context.Context, issue storeapi.Issue) error {
	return c.call(ctx, http.MethodPost, "/feedback/issue", issue, nil)
}

var _ storeapi.DaemonAPI = (*Client)(nil)
