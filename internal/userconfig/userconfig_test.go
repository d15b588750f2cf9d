package userconfig

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

func TestFileStore_LoadMissingIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "user.yaml"))
	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestFileStore_SetPersistsDottedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user.yaml")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyOnboarded, true))
	require.NoError(t, s.Set(ctx, "desktop.filters.min_quality", 2))

	reopened := NewFileStore(path)
	doc, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.True(t, Bool(doc, KeyOnboarded))
	assert.Equal(t, 2, Int(doc, "desktop.filters.min_quality"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "onboarded: true")
}

func TestFileStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	require.NoError(t, os.WriteFile(path, []byte("desktop: [unterminated"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStorage))
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "desktop.filters.country", "NL"))

	doc, err := m.Load(ctx)
	require.NoError(t, err)
	filters, ok := Lookup(doc, KeyFilters)
	require.True(t, ok)
	filters.(map[string]any)["country"] = "DE"

	again, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NL", String(again, "desktop.filters.country"))
}

func TestSet_EmptyKey(t *testing.T) {
	err := NewMemory().Set(context.Background(), "", 1)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestLookup_ThroughScalar(t *testing.T) {
	doc := map[string]any{"desktop": true}
	_, ok := Lookup(doc, KeyOnboarded)
	assert.False(t, ok)
	assert.Equal(t, 0.0, Float(doc, "missing"))
}

func TestWatcher_ReportsExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	var changes atomic.Int32
	w, err := NewWatcher(path, func() { changes.Add(1) }, nil)
	require.NoError(t, err)
	w.WithDebounce(10 * time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop(context.Background()) })

	require.NoError(t, os.WriteFile(path, []byte("desktop:\n  onboarded: true\n"), 0o600))
	require.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
}
