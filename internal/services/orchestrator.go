// Package services manages the lifecycle of the background components the
// headless client runs next to the store graph (daemon monitor, settings
// watcher, metrics endpoint, analytics journal, IPC transport).
package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
)

// ServiceStatus is the lifecycle state of one component.
type ServiceStatus string

const (
	StatusNotStarted ServiceStatus = "not_started"
	StatusRunning    ServiceStatus = "running"
	StatusStopped    ServiceStatus = "stopped"
	StatusFailed     ServiceStatus = "failed"
)

// ManagedService is a component with a start/stop lifecycle and named
// prerequisites.
type ManagedService interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Dependencies() []string
}

// ServiceInfo is a snapshot of one registered component.
type ServiceInfo struct {
	Name         string        `json:"name"`
	Status       ServiceStatus `json:"status"`
	Dependencies []string      `json:"dependencies"`
	LastError    string        `json:"last_error,omitempty"`
}

type entry struct {
	svc     ManagedService
	status  ServiceStatus
	lastErr error
}

// ServiceOrchestrator starts components after their dependencies and stops
// them in reverse.
type ServiceOrchestrator struct {
	mu      sync.Mutex
	entries map[string]*entry
	started []string

	startTimeout time.Duration
	stopTimeout  time.Duration
	logger       *slog.Logger
}

func NewServiceOrchestrator() *ServiceOrchestrator {
	return &ServiceOrchestrator{
		entries:      make(map[string]*entry),
		startTimeout: 30 * time.Second,
		stopTimeout:  10 * time.Second,
		logger:       slog.Default(),
	}
}

// WithTimeouts bounds each Start and Stop call.
func (so *ServiceOrchestrator) WithTimeouts(start, stop time.Duration) *ServiceOrchestrator {
	so.startTimeout = start
	so.stopTimeout = stop
	return so
}

func (so *ServiceOrchestrator) WithLogger(logger *slog.Logger) *ServiceOrchestrator {
	if logger != nil {
		so.logger = logger
	}
	return so
}

// RegisterService adds svc. Names must be unique and non-empty.
func (so *ServiceOrchestrator) RegisterService(svc ManagedService) error {
	name := svc.Name()
	if name == "" {
		return ferrors.ValidationError("service name cannot be empty").Build()
	}

	so.mu.Lock()
	defer so.mu.Unlock()
	if _, exists := so.entries[name]; exists {
		return ferrors.NewError(ferrors.CategoryAlreadyExists, "service already registered").
			WithContext("service", name).
			Build()
	}
	so.entries[name] = &entry{svc: svc, status: StatusNotStarted}
	so.logger.Debug("Service registered", logfields.Service(name), slog.Any("dependencies", svc.Dependencies()))
	return nil
}

// StartAll starts every registered component in dependency order. When one
// fails, the ones already running are stopped again.
func (so *ServiceOrchestrator) StartAll(ctx context.Context) error {
	so.mu.Lock()
	defer so.mu.Unlock()

	order, err := so.order()
	if err != nil {
		return err
	}
	so.logger.Info("Starting services", slog.Any("order", order))

	for _, name := range order {
		e := so.entries[name]
		if e.status == StatusRunning {
			continue
		}
		if err := so.start(ctx, name, e); err != nil {
			so.stopStarted(ctx)
			return err
		}
	}
	return nil
}

func (so *ServiceOrchestrator) start(ctx context.Context, name string, e *entry) error {
	ctx, cancel := context.WithTimeout(ctx, so.startTimeout)
	defer cancel()

	begin := time.Now()
	if err := e.svc.Start(ctx); err != nil {
		e.status = StatusFailed
		e.lastErr = err
		return ferrors.RuntimeError("failed to start service").
			WithCause(err).
			WithContext("service", name).
			Build()
	}
	e.status = StatusRunning
	e.lastErr = nil
	so.started = append(so.started, name)
	so.logger.Info("Service started", logfields.Service(name), logfields.Duration(time.Since(begin)))
	return nil
}

// StopAll stops running components in reverse start order. Every component
// gets its Stop call even when an earlier one fails.
func (so *ServiceOrchestrator) StopAll(ctx context.Context) error {
	so.mu.Lock()
	defer so.mu.Unlock()
	if failed := so.stopStarted(ctx); failed != nil {
		return ferrors.RuntimeError("some services failed to stop gracefully").
			WithCause(failed).
			Build()
	}
	return nil
}

func (so *ServiceOrchestrator) stopStarted(ctx context.Context) error {
	var failed error
	for i := len(so.started) - 1; i >= 0; i-- {
		name := so.started[i]
		e := so.entries[name]

		stopCtx, cancel := context.WithTimeout(ctx, so.stopTimeout)
		err := e.svc.Stop(stopCtx)
		cancel()

		if err != nil {
			e.status = StatusFailed
			e.lastErr = err
			failed = err
			so.logger.Error("Error stopping service", logfields.Service(name), logfields.Error(err))
			continue
		}
		e.status = StatusStopped
		so.logger.Debug("Service stopped", logfields.Service(name))
	}
	so.started = nil
	return failed
}

// GetServiceInfo reports the named component.
func (so *ServiceOrchestrator) GetServiceInfo(name string) (ServiceInfo, bool) {
	so.mu.Lock()
	defer so.mu.Unlock()
	e, ok := so.entries[name]
	if !ok {
		return ServiceInfo{}, false
	}
	return e.info(name), true
}

// GetAllServiceInfo reports every component sorted by name.
func (so *ServiceOrchestrator) GetAllServiceInfo() []ServiceInfo {
	so.mu.Lock()
	defer so.mu.Unlock()
	infos := make([]ServiceInfo, 0, len(so.entries))
	for _, name := range so.names() {
		infos = append(infos, so.entries[name].info(name))
	}
	return infos
}

func (e *entry) info(name string) ServiceInfo {
	info := ServiceInfo{Name: name, Status: e.status, Dependencies: e.svc.Dependencies()}
	if e.lastErr != nil {
		info.LastError = e.lastErr.Error()
	}
	return info
}

func (so *ServiceOrchestrator) names() []string {
	names := make([]string, 0, len(so.entries))
	for name := range so.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// order is a depth-first topological sort; independent components keep name order.
func (so *ServiceOrchestrator) order() ([]string, error) {
	const (
		unseen = iota
		active
		done
	)
	state := make(map[string]int, len(so.entries))
	order := make([]string, 0, len(so.entries))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case active:
			return ferrors.InternalError("circular service dependency").WithContext("service", name).Build()
		case done:
			return nil
		}
		e, ok := so.entries[name]
		if !ok {
			return ferrors.NotFoundError(fmt.Sprintf("unknown service dependency %q", name)).Build()
		}
		state[name] = active
		for _, dep := range e.svc.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range so.names() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
