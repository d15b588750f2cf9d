package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("data_dir: /tmp/vpndesk\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:44050", cfg.Daemon.URL)
	assert.Equal(t, 2*time.Second, cfg.Daemon.HealthInterval)
	assert.True(t, cfg.Daemon.AutostartEnabled())
	assert.Equal(t, RetryBackoffLinear, cfg.Daemon.Retry.Mode)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, IPCTransportLocal, cfg.IPC.Transport)
	assert.Equal(t, EnvironmentProduction, cfg.Environment)
}

func TestParseFullDocument(t *testing.T) {
	doc := `
environment: DEV
data_dir: /var/lib/vpndesk
daemon:
  url: http://localhost:4050
  health_interval: 500ms
  autostart: false
  retry:
    mode: Exponential
    initial: 100ms
    max: 1s
    max_retries: 3
logging:
  level: debug
  format: json
ipc:
  transport: nats
metrics:
  enabled: true
analytics:
  enabled: true
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, EnvironmentDevelopment, cfg.Environment)
	assert.Equal(t, 500*time.Millisecond, cfg.Daemon.HealthInterval)
	assert.False(t, cfg.Daemon.AutostartEnabled())
	assert.Equal(t, RetryBackoffExponential, cfg.Daemon.Retry.Mode)
	assert.Equal(t, 3, cfg.Daemon.Retry.MaxRetries)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.IPC.NATSURL)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Address)
	assert.Equal(t, filepath.Join("/var/lib/vpndesk", "analytics.db"), cfg.Analytics.Database)
}

func TestParseRejectsBadDaemonURL(t *testing.T) {
	_, err := Parse([]byte("daemon:\n  url: \"not a url\"\n"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestParseRejectsUnknownRetryMode(t *testing.T) {
	_, err := Parse([]byte("daemon:\n  retry:\n    mode: random\n"))
	require.Error(t, err)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("VPNDESK_TEST_DAEMON", "http://10.0.0.1:4050")
	path := filepath.Join(t.TempDir(), "vpndesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("daemon:\n  url: ${VPNDESK_TEST_DAEMON}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:4050", cfg.Daemon.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestInitRoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vpndesk.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Daemon.Retry.MaxRetries)

	require.Error(t, Init(path, false), "existing file is kept without --force")
	require.NoError(t, Init(path, true))
}

func TestIsDevelopmentHonoursEnvironmentVariable(t *testing.T) {
	cfg := &Config{Environment: EnvironmentProduction}
	assert.False(t, cfg.IsDevelopment())

	t.Setenv("VPNDESK_ENV", "development")
	assert.True(t, cfg.IsDevelopment())
}
