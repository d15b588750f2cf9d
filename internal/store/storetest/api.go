package storetest

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// API is a scripted storeapi.DaemonAPI. Zero value answers with empty results.
type API struct {
	mu sync.Mutex

	Identities    []storeapi.Identity
	ListErr       error
	ProposalList  []storeapi.Proposal
	ProposalsErr  error
	Conn          storeapi.ConnectionStatus
	ConnErr       error
	DisconnectErr error
	Tokens        map[string]string
	TokenErr      error
	Balances      map[string]uint64
	StatusErr     error
	FeedbackErr   error
	HealthErr     error

	// ListGate, when set, blocks ListIdentities until it is closed.
	ListGate chan struct{}

	calls  map[string]int
	issues []storeapi.Issue
}

func (a *API) record(name string) {
	if a.calls == nil {
		a.calls = map[string]int{}
	}
	a.calls[name]++
}

// Calls returns how often the named method ran.
func (a *API) Calls(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[name]
}

// Issues returns every reported issue.
func (a *API) Issues() []storeapi.Issue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]storeapi.Issue(nil), a.issues...)
}

func (a *API) Healthcheck(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("Healthcheck")
	return a.HealthErr
}

func (a *API) ListIdentities(context.Context) ([]storeapi.Identity, error) {
	a.mu.Lock()
	a.record("ListIdentities")
	gate, err := a.ListGate, a.ListErr
	ids := append([]storeapi.Identity(nil), a.Identities...)
	a.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (a *API) CreateIdentity(context.Context, string) (storeapi.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("CreateIdentity")
	return storeapi.Identity{}, nil
}

func (a *API) SetCurrentIdentity(_ context.Context, id string) (storeapi.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("SetCurrentIdentity")
	for _, ident := range a.Identities {
		if ident.ID == id {
			return ident, nil
		}
	}
	return storeapi.Identity{ID: id}, nil
}

func (a *API) IdentityStatus(_ context.Context, id string) (storeapi.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("IdentityStatus")
	if a.StatusErr != nil {
		return storeapi.Identity{}, a.StatusErr
	}
	out := storeapi.Identity{ID: id}
	for _, ident := range a.Identities {
		if ident.ID == id {
			out = ident
		}
	}
	if b, ok := a.Balances[id]; ok {
		out.Balance = b
	}
	return out, nil
}

func (a *API) RegisterIdentity(context.Context, string, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("RegisterIdentity")
	return nil
}

func (a *API) Proposals(context.Context) ([]storeapi.Proposal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("Proposals")
	if a.ProposalsErr != nil {
		return nil, a.ProposalsErr
	}
	return append([]storeapi.Proposal(nil), a.ProposalList...), nil
}

func (a *API) ConnectionStatus(context.Context) (storeapi.ConnectionStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("ConnectionStatus")
	if a.ConnErr != nil {
		return "", a.ConnErr
	}
	if a.Conn == "" {
		return storeapi.ConnectionNotConnected, nil
	}
	return a.Conn, nil
}

func (a *API) Disconnect(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("Disconnect")
	if a.DisconnectErr == nil {
		a.Conn = storeapi.ConnectionNotConnected
	}
	return a.DisconnectErr
}

func (a *API) ReferralToken(_ context.Context, id string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("ReferralToken")
	if a.TokenErr != nil {
		return "", a.TokenErr
	}
	return a.Tokens[id], nil
}

func (a *API) ReportIssue(_ context.Context, issue storeapi.Issue) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("ReportIssue")
	if a.FeedbackErr != nil {
		return a.FeedbackErr
	}
	a.issues = append(a.issues, issue)
	return nil
}

var _ storeapi.DaemonAPI = (*API)(nil)
