package config

import (
	"net/url"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// Validate checks settings that defaults cannot repair.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.Daemon.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ferrors.ConfigError("daemon.url must be an absolute URL").
			WithContext("value", cfg.Daemon.URL).
			Build()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ferrors.ConfigError("daemon.url must use http or https").
			WithContext("value", cfg.Daemon.URL).
			Build()
	}
	if cfg.Daemon.Retry.MaxRetries < 0 {
		return ferrors.ConfigError("daemon.retry.max_retries cannot be negative").Build()
	}
	if NormalizeRetryBackoff(string(cfg.Daemon.Retry.Mode)) == "" {
		return ferrors.ConfigError("unknown daemon.retry.mode").
			WithContext("value", string(cfg.Daemon.Retry.Mode)).
			Build()
	}
	if cfg.IPC.Transport == IPCTransportNATS {
		if _, err := url.Parse(cfg.IPC.NATSURL); err != nil {
			return ferrors.ConfigError("ipc.nats_url is not a valid URL").
				WithContext("value", cfg.IPC.NATSURL).
				Build()
		}
	}
	return nil
}
