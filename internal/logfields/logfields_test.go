package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Store", KeyStore, "onboarding", Store("onboarding")},
		{"DaemonStatus", KeyDaemonStatus, "Up", DaemonStatus("Up")},
		{"Location", KeyLocation, "proposals", Location("proposals")},
		{"Progress", KeyProgress, "Loading", Progress("Loading")},
		{"Identity", KeyIdentity, "0x1", Identity("0x1")},
		{"AttemptID", KeyAttemptID, "a1", AttemptID("a1")},
		{"Channel", KeyChannel, "disconnect", Channel("disconnect")},
		{"KeyCode", KeyKeyCode, "F5", KeyCode("F5")},
		{"Action", KeyAction, "daemon_status", Action("daemon_status")},
		{"Service", KeyService, "monitor", Service("monitor")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.attrKey, c.attr.Key)
			assert.Equal(t, c.attrVal, c.attr.Value.String())
		})
	}
}

func TestDurationAndError(t *testing.T) {
	d := Duration(1500 * time.Microsecond)
	assert.Equal(t, KeyDurationMS, d.Key)
	assert.InDelta(t, 1.5, d.Value.Float64(), 0.0001)

	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
