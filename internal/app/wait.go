package app

import (
	"context"

	"git.home.luguber.info/inful/vpndesk/internal/reactive"
)

// WaitFor blocks until obs holds a value satisfying cond or ctx is done.
// It returns the last value seen.
func WaitFor[T any](ctx context.Context, obs reactive.Observable[T], cond func(T) bool) (T, error) {
	changed := make(chan struct{}, 1)
	dispose := obs.Observe(func(T) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer dispose()

	for {
		cur := obs.Get()
		if cond(cur) {
			return cur, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return obs.Get(), ctx.Err()
		}
	}
}
