package services

import (
	"context"
	"sync/atomic"
)

// Runner is the shape shared by the daemon monitor, the settings watcher,
// the IPC transport and the terminal listener.
type Runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// RunnerService registers a Runner under a name.
type RunnerService struct {
	name    string
	runner  Runner
	deps    []string
	running atomic.Bool
}

func NewRunnerService(name string, runner Runner, deps ...string) *RunnerService {
	return &RunnerService{name: name, runner: runner, deps: deps}
}

func (r *RunnerService) Name() string           { return r.name }
func (r *RunnerService) Dependencies() []string { return r.deps }
func (r *RunnerService) Running() bool          { return r.running.Load() }

func (r *RunnerService) Start(ctx context.Context) error {
	if err := r.runner.Start(ctx); err != nil {
		return err
	}
	r.running.Store(true)
	return nil
}

func (r *RunnerService) Stop(ctx context.Context) error {
	r.running.Store(false)
	return r.runner.Stop(ctx)
}

type funcs struct {
	start, stop func(ctx context.Context) error
}

func (f funcs) Start(ctx context.Context) error {
	if f.start == nil {
		return nil
	}
	return f.start(ctx)
}

func (f funcs) Stop(ctx context.Context) error {
	if f.stop == nil {
		return nil
	}
	return f.stop(ctx)
}

// NewFuncService builds a service from plain start and stop functions; either may be nil.
func NewFuncService(name string, start, stop func(ctx context.Context) error, deps ...string) *RunnerService {
	return NewRunnerService(name, funcs{start: start, stop: stop}, deps...)
}
