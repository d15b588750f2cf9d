package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
	"git.home.luguber.info/inful/vpndesk/internal/store/storetest"
)

func TestRefreshOnDaemonUpAndResetOnDown(t *testing.T) {
	root := storetest.NewRoot()
	api := &storetest.API{Conn: storeapi.ConnectionConnected}
	s, err := New(root, api)
	require.NoError(t, err)
	s.SetupReactions()

	root.Daemon.Value.Set(storeapi.DaemonUp)
	root.Wait()
	assert.Equal(t, storeapi.ConnectionConnected, s.Status().Get())

	root.Daemon.Value.Set(storeapi.DaemonDown)
	assert.Equal(t, storeapi.ConnectionNotConnected, s.Status().Get())
	assert.Equal(t, 1, api.Calls("ConnectionStatus"))
}

func TestDisconnect(t *testing.T) {
	root := storetest.NewRoot()
	api := &storetest.API{Conn: storeapi.ConnectionConnected}
	s, err := New(root, api)
	require.NoError(t, err)
	require.NoError(t, s.Refresh(context.Background()))

	var seen []storeapi.ConnectionStatus
	s.Status().Observe(func(st storeapi.ConnectionStatus) { seen = append(seen, st) })

	require.NoError(t, s.Disconnect(context.Background()))
	assert.Equal(t, []storeapi.ConnectionStatus{storeapi.ConnectionDisconnecting, storeapi.ConnectionNotConnected}, seen)
}

func TestDisconnectFailureRestoresStatus(t *testing.T) {
	root := storetest.NewRoot()
	api := &storetest.API{Conn: storeapi.ConnectionConnected, DisconnectErr: errors.New("busy")}
	s, err := New(root, api)
	require.NoError(t, err)
	require.NoError(t, s.Refresh(context.Background()))

	err = s.Disconnect(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryDaemon))
	assert.Equal(t, storeapi.ConnectionConnected, s.Status().Get())
}
