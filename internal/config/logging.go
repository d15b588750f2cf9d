package config

import (
	"log/slog"

	"git.home.luguber.info/inful/vpndesk/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel maps the configured level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// Environment distinguishes development builds from production ones.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
)

var environmentNormalizer = normalization.NewNormalizer(map[string]Environment{
	"development": EnvironmentDevelopment,
	"dev":         EnvironmentDevelopment,
	"production":  EnvironmentProduction,
	"prod":        EnvironmentProduction,
}, EnvironmentProduction)

func NormalizeEnvironment(raw string) Environment {
	return environmentNormalizer.Normalize(raw)
}

// IPCTransport selects the daemon signal transport.
type IPCTransport string

const (
	IPCTransportLocal IPCTransport = "local"
	IPCTransportNATS  IPCTransport = "nats"
)

var ipcTransportNormalizer = normalization.NewNormalizer(map[string]IPCTransport{
	"local": IPCTransportLocal,
	"nats":  IPCTransportNATS,
}, IPCTransportLocal)

func NormalizeIPCTransport(raw string) IPCTransport {
	return ipcTransportNormalizer.Normalize(raw)
}
