package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
	"git.home.luguber.info/inful/vpndesk/internal/store/storetest"
)

type fakeAPI struct {
	mu         sync.Mutex
	identities []storeapi.Identity
	statuses   map[string]storeapi.RegistrationStatus
	registered []string
	statusCall int

	listErr     error
	createErr   error
	registerErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{statuses: map[string]storeapi.RegistrationStatus{}}
}

func (f *fakeAPI) ListIdentities(context.Context) ([]storeapi.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]storeapi.Identity(nil), f.identities...), nil
}

func (f *fakeAPI) CreateIdentity(context.Context, string) (storeapi.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return storeapi.Identity{}, f.createErr
	}
	id := storeapi.Identity{ID: "0xnew", RegistrationStatus: storeapi.RegistrationUnregistered}
	f.identities = append(f.identities, id)
	f.statuses[id.ID] = id.RegistrationStatus
	return id, nil
}

func (f *fakeAPI) SetCurrentIdentity(ctx context.Context, id string) (storeapi.Identity, error) {
	return f.IdentityStatus(ctx, id)
}

func (f *fakeAPI) IdentityStatus(_ context.Context, id string) (storeapi.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCall++
	return storeapi.Identity{ID: id, RegistrationStatus: f.statuses[id]}, nil
}

func (f *fakeAPI) RegisterIdentity(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, id)
	f.statuses[id] = storeapi.RegistrationInProgress
	return nil
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(storetest.NewRoot(), nil)
	require.Error(t, err)
}

func TestCreateThenLoad(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	s, err := New(storetest.NewRoot(), api)
	require.NoError(t, err)

	require.NoError(t, s.LoadIdentity(ctx))
	assert.False(t, s.IdentityExists())
	assert.Nil(t, s.Identity())

	require.NoError(t, s.Create(ctx))
	assert.False(t, s.IdentityExists(), "create does not select")

	require.NoError(t, s.LoadIdentity(ctx))
	require.True(t, s.IdentityExists())
	assert.Equal(t, "0xnew", s.Identity().ID)
	assert.Equal(t, storeapi.RegistrationUnregistered, s.Identity().RegistrationStatus)
}

func TestIdentity_ReturnsCopy(t *testing.T) {
	api := newFakeAPI()
	api.identities = []storeapi.Identity{{ID: "0xabc"}}
	s, err := New(storetest.NewRoot(), api)
	require.NoError(t, err)
	require.NoError(t, s.LoadIdentity(context.Background()))

	s.Identity().ID = "mutated"
	assert.Equal(t, "0xabc", s.Identity().ID)
}

func TestErrorsAreIdentityCategory(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.listErr = errors.New("daemon unreachable")
	api.createErr = errors.New("keystore locked")
	api.registerErr = errors.New("bad code")
	s, err := New(storetest.NewRoot(), api)
	require.NoError(t, err)

	for _, err := range []error{
		s.LoadIdentity(ctx),
		s.Create(ctx),
		s.Register(ctx, &storeapi.Identity{ID: "0x1"}, "CODE"),
	} {
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryIdentity), err.Error())
	}

	err = s.Register(ctx, nil, "CODE")
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestRegister_RefreshesStatus(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.identities = []storeapi.Identity{{ID: "0xabc"}}
	api.statuses["0xabc"] = storeapi.RegistrationUnregistered
	s, err := New(storetest.NewRoot(), api)
	require.NoError(t, err)
	require.NoError(t, s.LoadIdentity(ctx))

	require.NoError(t, s.Register(ctx, s.Identity(), "REF"))
	assert.Equal(t, []string{"0xabc"}, api.registered)
	assert.Equal(t, storeapi.RegistrationInProgress, s.Identity().RegistrationStatus)
}

func TestReaction_RefreshesOnNewIdentityOnly(t *testing.T) {
	root := storetest.NewRoot()
	api := newFakeAPI()
	api.statuses["0xabc"] = storeapi.RegistrationRegistered
	s, err := New(root, api)
	require.NoError(t, err)
	s.SetupReactions()

	s.current.Set(&storeapi.Identity{ID: "0xabc", RegistrationStatus: storeapi.RegistrationUnknown})
	root.Wait()
	assert.True(t, storeapi.Registered(s.Identity()))
	assert.Equal(t, 1, api.statusCall)

	s.current.Set(&storeapi.Identity{ID: "0xabc", RegistrationStatus: storeapi.RegistrationUnknown})
	root.Wait()
	assert.Equal(t, 1, api.statusCall)

	s.DisposeReactions()
	s.current.Set(&storeapi.Identity{ID: "0xdef"})
	root.Wait()
	assert.Equal(t, 1, api.statusCall)
}
