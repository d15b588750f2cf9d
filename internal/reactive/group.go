package reactive

import (
	"context"
	"sync"
)

// Group runs reaction effects in goroutines and lets the owner wait for them.
//
// Effects receive the group's context. It is only canceled by Cancel, so an
// effect started before shutdown runs to completion unless the owner gives up
// waiting.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGroup creates a Group whose effects inherit values (not cancellation) from parent.
func NewGroup(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	return &Group{ctx: ctx, cancel: cancel}
}

// Go starts fn in its own goroutine.
func (g *Group) Go(fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn(g.ctx)
	}()
}

// Wait blocks until every started effect has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

// WaitContext waits for effects or until ctx is done, whichever comes first.
func (g *Group) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel cancels the context handed to effects.
func (g *Group) Cancel() {
	g.cancel()
}
