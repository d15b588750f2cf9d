package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		&generalDefaults{},
		&daemonDefaults{},
		&loggingDefaults{},
		&ipcDefaults{},
		&observabilityDefaults{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

type generalDefaults struct{}

func (generalDefaults) Domain() string { return "general" }

func (generalDefaults) ApplyDefaults(cfg *Config) error {
	cfg.Environment = NormalizeEnvironment(string(cfg.Environment))
	if cfg.DataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.DataDir = filepath.Join(dir, "vpndesk")
		} else {
			cfg.DataDir = ".vpndesk"
		}
	}
	return nil
}

type daemonDefaults struct{}

func (daemonDefaults) Domain() string { return "daemon" }

func (daemonDefaults) ApplyDefaults(cfg *Config) error {
	d := &cfg.Daemon
	if d.URL == "" {
		d.URL = "http://127.0.0.1:44050"
	}
	if d.HealthInterval <= 0 {
		d.HealthInterval = 2 * time.Second
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	if d.Retry.Mode == "" {
		d.Retry.Mode = RetryBackoffLinear
	} else if m := NormalizeRetryBackoff(string(d.Retry.Mode)); m != "" {
		d.Retry.Mode = m
	}
	if d.Retry.Initial <= 0 {
		d.Retry.Initial = 500 * time.Millisecond
	}
	if d.Retry.Max <= 0 {
		d.Retry.Max = 5 * time.Second
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

type ipcDefaults struct{}

func (ipcDefaults) Domain() string { return "ipc" }

func (ipcDefaults) ApplyDefaults(cfg *Config) error {
	cfg.IPC.Transport = NormalizeIPCTransport(string(cfg.IPC.Transport))
	if cfg.IPC.SubjectPrefix == "" {
		cfg.IPC.SubjectPrefix = "vpndesk"
	}
	if cfg.IPC.Transport == IPCTransportNATS && cfg.IPC.NATSURL == "" {
		cfg.IPC.NATSURL = "nats://127.0.0.1:4222"
	}
	return nil
}

type observabilityDefaults struct{}

func (observabilityDefaults) Domain() string { return "observability" }

func (observabilityDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		cfg.Metrics.Address = "127.0.0.1:9464"
	}
	if cfg.Analytics.Enabled && cfg.Analytics.Database == "" {
		cfg.Analytics.Database = filepath.Join(cfg.DataDir, "analytics.db")
	}
	return nil
}
