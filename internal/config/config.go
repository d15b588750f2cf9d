package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// Config represents the vpndesk application settings.
type Config struct {
	Environment Environment     `yaml:"environment"`
	DataDir     string          `yaml:"data_dir"`
	Daemon      DaemonConfig    `yaml:"daemon"`
	Logging     LoggingConfig   `yaml:"logging"`
	IPC         IPCConfig       `yaml:"ipc"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Analytics   AnalyticsConfig `yaml:"analytics"`
}

// DaemonConfig describes how to reach and supervise the VPN daemon.
type DaemonConfig struct {
	URL            string        `yaml:"url"`
	HealthInterval time.Duration `yaml:"health_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Autostart      *bool         `yaml:"autostart,omitempty"`
	Retry          RetryConfig   `yaml:"retry"`
}

// AutostartEnabled reports whether a Down daemon should be started automatically.
func (d DaemonConfig) AutostartEnabled() bool {
	return d.Autostart == nil || *d.Autostart
}

// RetryConfig holds backoff settings for idempotent daemon requests.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// IPCConfig selects the daemon transport used for out-of-band signals.
type IPCConfig struct {
	Transport     IPCTransport `yaml:"transport"`
	NATSURL       string       `yaml:"nats_url,omitempty"`
	SubjectPrefix string       `yaml:"subject_prefix,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address,omitempty"`
}

// AnalyticsConfig controls the local app-state event journal.
type AnalyticsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Database string `yaml:"database,omitempty"`
}

// IsDevelopment reports whether development-only behaviour (debug grid) is allowed.
// VPNDESK_ENV overrides the file setting.
func (c *Config) IsDevelopment() bool {
	if env := os.Getenv("VPNDESK_ENV"); env != "" {
		return NormalizeEnvironment(env) == EnvironmentDevelopment
	}
	return c.Environment == EnvironmentDevelopment
}

// Load reads, expands, defaults and validates the settings file at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration").
			WithContext("path", path).
			Build()
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML settings, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").Fatal().Build()
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
