package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// Init writes an example settings file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	autostart := true
	example := Config{
		Environment: EnvironmentProduction,
		Daemon: DaemonConfig{
			URL:            "http://127.0.0.1:44050",
			HealthInterval: 2 * time.Second,
			Autostart:      &autostart,
			Retry: RetryConfig{
				Mode:       RetryBackoffLinear,
				Initial:    500 * time.Millisecond,
				Max:        5 * time.Second,
				MaxRetries: 2,
			},
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		IPC:     IPCConfig{Transport: IPCTransportLocal, SubjectPrefix: "vpndesk"},
		Metrics: MetricsConfig{Enabled: false, Address: "127.0.0.1:9464"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal example configuration").Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to create configuration directory").Build()
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
