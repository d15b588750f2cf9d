package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/vpndesk/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, 500*time.Millisecond, p.Initial)
	assert.Equal(t, 5*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
	require.NoError(t, p.Validate())
}

func TestFromConfigClampsInitial(t *testing.T) {
	p := FromConfig(config.RetryConfig{Mode: "FIXED", Initial: 5 * time.Second, Max: 2 * time.Second, MaxRetries: 5})
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 5, p.MaxRetries)
}

func TestDelayModes(t *testing.T) {
	fixed := Policy{Mode: config.RetryBackoffFixed, Initial: 100 * time.Millisecond, Max: time.Second}
	linear := Policy{Mode: config.RetryBackoffLinear, Initial: 100 * time.Millisecond, Max: 250 * time.Millisecond}
	expo := Policy{Mode: config.RetryBackoffExponential, Initial: 100 * time.Millisecond, Max: 350 * time.Millisecond}

	cases := []struct {
		name    string
		p       Policy
		attempt int
		want    time.Duration
	}{
		{"no retry", linear, 0, 0},
		{"fixed", fixed, 3, 100 * time.Millisecond},
		{"linear first", linear, 1, 100 * time.Millisecond},
		{"linear second", linear, 2, 200 * time.Millisecond},
		{"linear capped", linear, 3, 250 * time.Millisecond},
		{"exponential third", expo, 2, 200 * time.Millisecond},
		{"exponential capped", expo, 3, 350 * time.Millisecond},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.p.Delay(c.attempt))
		})
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 3}
	transient := errors.New("transient")

	calls := 0
	err := p.Do(context.Background(), func(error) bool { return true }, func(context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentFailure(t *testing.T) {
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 3}
	permanent := errors.New("permanent")

	calls := 0
	err := p.Do(context.Background(), func(error) bool { return false }, func(context.Context) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 2}

	calls := 0
	err := p.Do(context.Background(), func(error) bool { return true }, func(context.Context) error {
		calls++
		return errors.New("still down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
