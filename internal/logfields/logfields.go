package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStore        = "store"
	KeyDaemonStatus = "daemon_status"
	KeyLocation     = "location"
	KeyProgress     = "progress"
	KeyIdentity     = "identity"
	KeyAttemptID    = "attempt_id"
	KeyChannel      = "channel"
	KeyKeyCode      = "key_code"
	KeyAction       = "action"
	KeyService      = "service"
	KeyDurationMS   = "duration_ms"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Store(name string) slog.Attr          { return slog.String(KeyStore, name) }
func DaemonStatus(s string) slog.Attr      { return slog.String(KeyDaemonStatus, s) }
func Location(l string) slog.Attr          { return slog.String(KeyLocation, l) }
func Progress(p string) slog.Attr          { return slog.String(KeyProgress, p) }
func Identity(id string) slog.Attr         { return slog.String(KeyIdentity, id) }
func AttemptID(id string) slog.Attr        { return slog.String(KeyAttemptID, id) }
func Channel(c string) slog.Attr           { return slog.String(KeyChannel, c) }
func KeyCode(code string) slog.Attr        { return slog.String(KeyKeyCode, code) }
func Action(a string) slog.Attr            { return slog.String(KeyAction, a) }
func Service(name string) slog.Attr        { return slog.String(KeyService, name) }
func Duration(d time.Duration) slog.Attr   { return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
