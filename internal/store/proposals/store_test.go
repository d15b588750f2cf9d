package proposals

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
	"git.home.luguber.info/inful/vpndesk/internal/store/storetest"
)

var offers = []storeapi.Proposal{
	{ProviderID: "0x1", Country: "DE", PricePerHour: 0.1, Quality: 2},
	{ProviderID: "0x2", Country: "US", PricePerHour: 0.9, Quality: 1},
}

func ids(ps []storeapi.Proposal) []string {
	out := []string{}
	for _, p := range ps {
		out = append(out, p.ProviderID)
	}
	return out
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(storetest.NewRoot(), nil)
	require.Error(t, err)
}

func TestFetchOnDaemonUp(t *testing.T) {
	root := storetest.NewRoot()
	api := &storetest.API{ProposalList: offers}
	s, err := New(root, api)
	require.NoError(t, err)
	s.SetupReactions()

	root.Daemon.Value.Set(storeapi.DaemonDown)
	root.Wait()
	assert.Zero(t, api.Calls("Proposals"))

	root.Daemon.Value.Set(storeapi.DaemonUp)
	root.Wait()
	assert.Equal(t, 1, api.Calls("Proposals"))
	assert.Equal(t, []string{"0x1", "0x2"}, ids(s.All().Get()))
	assert.Equal(t, []string{"0x1", "0x2"}, ids(s.Filtered().Get()))
}

func TestFilterChangeRefilters(t *testing.T) {
	root := storetest.NewRoot()
	s, err := New(root, &storetest.API{ProposalList: offers})
	require.NoError(t, err)
	s.SetupReactions()
	require.NoError(t, s.Fetch(context.Background()))

	root.Filters.Value.Set(storeapi.FilterConfig{MaxPricePerHour: 0.5})
	assert.Equal(t, []string{"0x1"}, ids(s.Filtered().Get()))
	assert.Len(t, s.All().Get(), 2)

	s.DisposeReactions()
	root.Filters.Value.Set(storeapi.FilterConfig{})
	assert.Equal(t, []string{"0x1"}, ids(s.Filtered().Get()))
}

func TestFetchFailureIsLogged(t *testing.T) {
	root := storetest.NewRoot()
	s, err := New(root, &storetest.API{ProposalsErr: errors.New("timeout")})
	require.NoError(t, err)
	s.SetupReactions()

	root.Daemon.Value.Set(storeapi.DaemonUp)
	root.Wait()
	assert.Empty(t, s.All().Get())
	assert.Len(t, root.Logs.AtLevel(slog.LevelWarn), 1)
}
