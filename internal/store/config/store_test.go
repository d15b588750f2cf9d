package config

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
	"git.home.luguber.info/inful/vpndesk/internal/store/storetest"
	"git.home.luguber.info/inful/vpndesk/internal/userconfig"
)

type failingService struct{ err error }

func (f failingService) Load(context.Context) (map[string]any, error) { return nil, f.err }
func (f failingService) Set(context.Context, string, any) error       { return f.err }

func TestNew_RequiresService(t *testing.T) {
	_, err := New(storetest.NewRoot(), nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoadConfig_ParsesDocument(t *testing.T) {
	ctx := context.Background()
	mem := userconfig.NewMemory()
	require.NoError(t, mem.Set(ctx, userconfig.KeyOnboarded, true))
	require.NoError(t, mem.Set(ctx, KeyMaxPricePerHour, 0.5))
	require.NoError(t, mem.Set(ctx, KeyMinQuality, 2))
	require.NoError(t, mem.Set(ctx, KeyCountry, "CH"))

	s, err := New(storetest.NewRoot(), mem)
	require.NoError(t, err)
	assert.False(t, s.Snapshot().Get().Loaded)

	require.NoError(t, s.LoadConfig(ctx))
	snap := s.Snapshot().Get()
	assert.True(t, snap.Loaded)
	assert.True(t, s.Onboarded())
	assert.Equal(t, storeapi.FilterConfig{MaxPricePerHour: 0.5, MinQuality: 2, Country: "CH"}, snap.Filters)
}

func TestLoadConfig_FailureIsStorageError(t *testing.T) {
	s, err := New(storetest.NewRoot(), failingService{err: errors.New("disk gone")})
	require.NoError(t, err)

	err = s.LoadConfig(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStorage))
	assert.False(t, s.Snapshot().Get().Loaded)
}

func TestReload_LogsFailure(t *testing.T) {
	root := storetest.NewRoot()
	s, err := New(root, failingService{err: errors.New("disk gone")})
	require.NoError(t, err)

	s.Reload(context.Background())
	assert.Len(t, root.Logs.AtLevel(slog.LevelWarn), 1)
}

func TestSetOnboarded_PersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	mem := userconfig.NewMemory()
	s, err := New(storetest.NewRoot(), mem)
	require.NoError(t, err)

	var notified int
	s.Snapshot().Observe(func(storeapi.ConfigSnapshot) { notified++ })
	require.NoError(t, s.SetOnboarded(ctx))
	require.NoError(t, s.SetOnboarded(ctx))

	assert.True(t, s.Onboarded())
	assert.Equal(t, 1, notified)
	doc, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.True(t, userconfig.Bool(doc, userconfig.KeyOnboarded))
}

func TestSetOnboarded_Failure(t *testing.T) {
	s, err := New(storetest.NewRoot(), failingService{err: errors.New("read-only")})
	require.NoError(t, err)
	require.Error(t, s.SetOnboarded(context.Background()))
	assert.False(t, s.Onboarded())
}

func TestSetFilters_RoundTripsThroughLoad(t *testing.T) {
	ctx := context.Background()
	mem := userconfig.NewMemory()
	s, err := New(storetest.NewRoot(), mem)
	require.NoError(t, err)

	f := storeapi.FilterConfig{MaxPricePerHour: 1.25, MaxPricePerGiB: 0.1, MinQuality: 1}
	require.NoError(t, s.SetFilters(ctx, f))
	assert.Equal(t, f, s.Snapshot().Get().Filters)

	other, err := New(storetest.NewRoot(), mem)
	require.NoError(t, err)
	require.NoError(t, other.LoadConfig(ctx))
	assert.Equal(t, f, other.Snapshot().Get().Filters)
}

// gatedService returns the document it read when Load was called, but only
// after release is closed.
type gatedService struct {
	*userconfig.Memory
	loading chan struct{}
	release chan struct{}
}

func (g *gatedService) Load(ctx context.Context) (map[string]any, error) {
	doc, err := g.Memory.Load(ctx)
	close(g.loading)
	<-g.release
	return doc, err
}

func TestLoadConfig_StaleReadDoesNotUndoWrites(t *testing.T) {
	ctx := context.Background()
	svc := &gatedService{Memory: userconfig.NewMemory(), loading: make(chan struct{}), release: make(chan struct{})}
	s, err := New(storetest.NewRoot(), svc)
	require.NoError(t, err)

	loaded := make(chan error, 1)
	go func() { loaded <- s.LoadConfig(ctx) }()
	<-svc.loading

	require.NoError(t, s.SetOnboarded(ctx))
	filters := storeapi.FilterConfig{Country: "SE", MinQuality: 1}
	require.NoError(t, s.SetFilters(ctx, filters))

	close(svc.release)
	require.NoError(t, <-loaded)

	snap := s.Snapshot().Get()
	assert.True(t, snap.Loaded)
	assert.True(t, snap.Onboarded)
	assert.Equal(t, filters, snap.Filters)
}
