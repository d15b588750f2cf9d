// Package app is the single construction point of a vpndesk process: it
// turns settings into transports, services, and the store graph, and runs
// them under one service orchestrator.
package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/vpndesk/internal/analytics"
	"git.home.luguber.info/inful/vpndesk/internal/config"
	"git.home.luguber.info/inful/vpndesk/internal/daemonapi"
	"git.home.luguber.info/inful/vpndesk/internal/events"
	"git.home.luguber.info/inful/vpndesk/internal/eventstore"
	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/input"
	"git.home.luguber.info/inful/vpndesk/internal/ipc"
	"git.home.luguber.info/inful/vpndesk/internal/metrics"
	"git.home.luguber.info/inful/vpndesk/internal/retry"
	"git.home.luguber.info/inful/vpndesk/internal/services"
	"git.home.luguber.info/inful/vpndesk/internal/store"
	"git.home.luguber.info/inful/vpndesk/internal/store/daemon"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
	"git.home.luguber.info/inful/vpndesk/internal/userconfig"
)

// Service names.
const (
	ServiceIPC       = "ipc"
	ServiceMetrics   = "metrics"
	ServiceAnalytics = "analytics"
	ServiceStore     = "store"
	ServiceWatcher   = "userconfig-watcher"
	ServiceMonitor   = "daemon-monitor"
	ServiceTerminal  = "terminal"
)

// UserConfigFile is the user config document name inside the data directory.
const UserConfigFile = "user-config.yaml"

// Option customizes an App.
type Option func(*App)

// WithTerminal reads global keys from in. onInterrupt runs on Ctrl+C while in raw mode.
func WithTerminal(in *os.File, onInterrupt func()) Option {
	return func(a *App) {
		a.terminal = input.NewTerminal(in, a.keys, onInterrupt, a.logger)
	}
}

// WithDaemonAPI replaces the HTTP daemon client.
func WithDaemonAPI(api storeapi.DaemonAPI) Option {
	return func(a *App) { a.api = api }
}

// WithUserConfig replaces the file-backed user config. The file watcher is not started.
func WithUserConfig(svc storeapi.UserConfigService) Option {
	return func(a *App) { a.userConfig = svc }
}

// WithoutMonitor leaves the daemon status to the caller, via DaemonStore().SetStatus.
func WithoutMonitor() Option {
	return func(a *App) { a.noMonitor = true }
}

// App owns every long-lived component of the process.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	bus        *events.Bus
	keys       *input.Dispatcher
	api        storeapi.DaemonAPI
	userConfig storeapi.UserConfigService
	transport  ipc.Transport
	recorder   metrics.Recorder
	terminal   *input.Terminal
	noMonitor  bool

	orchestrator *services.ServiceOrchestrator

	mu      sync.Mutex
	root    *store.Root
	monitor *daemon.Monitor
}

// New builds the components described by cfg. Nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, ferrors.ConfigError("settings are required").Fatal().Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		cfg:          cfg,
		logger:       logger,
		bus:          events.NewBus(),
		keys:         input.NewDispatcher(),
		recorder:     metrics.NoopRecorder{},
		orchestrator: services.NewServiceOrchestrator().WithLogger(logger),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.transport = ipc.New(cfg.IPC, a.bus)

	var registry *prom.Registry
	if cfg.Metrics.Enabled {
		registry = prom.NewRegistry()
		a.recorder = metrics.NewPrometheusRecorder(registry)
	}

	if a.api == nil {
		client, err := daemonapi.New(cfg.Daemon.URL,
			daemonapi.WithTimeout(cfg.Daemon.RequestTimeout),
			daemonapi.WithRetryPolicy(retry.FromConfig(cfg.Daemon.Retry)),
			daemonapi.WithRecorder(a.recorder),
		)
		if err != nil {
			return nil, err
		}
		a.api = client
	}

	var watcher *userconfig.Watcher
	if a.userConfig == nil {
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return nil, ferrors.StorageError("failed to create data directory").
				WithCause(err).
				WithContext("path", cfg.DataDir).
				Build()
		}
		fs := userconfig.NewFileStore(filepath.Join(cfg.DataDir, UserConfigFile))
		a.userConfig = fs
		w, err := userconfig.NewWatcher(fs.Path(), a.reloadUserConfig, logger)
		if err != nil {
			return nil, err
		}
		watcher = w
	}

	if err := a.register(registry, watcher); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) register(registry *prom.Registry, watcher *userconfig.Watcher) error {
	storeDeps := []string{ServiceIPC}
	regs := []services.ManagedService{
		services.NewRunnerService(ServiceIPC, a.transport),
	}

	if registry != nil {
		regs = append(regs, services.NewRunnerService(ServiceMetrics,
			metrics.NewServer(a.cfg.Metrics.Address, registry, a.logger)))
	}

	if a.cfg.Analytics.Enabled {
		journal, err := eventstore.NewSQLiteStore(a.cfg.Analytics.Database)
		if err != nil {
			return err
		}
		tracker := analytics.NewTracker(a.bus, journal, a.logger)
		regs = append(regs, services.NewFuncService(ServiceAnalytics,
			tracker.Start,
			func(ctx context.Context) error {
				stopErr := tracker.Stop(ctx)
				if err := journal.Close(); err != nil && stopErr == nil {
					stopErr = err
				}
				return stopErr
			}))
		// Subscribe before the graph emits its first event.
		storeDeps = append(storeDeps, ServiceAnalytics)
	}

	regs = append(regs, services.NewFuncService(ServiceStore, a.startStore, a.stopStore, storeDeps...))

	if watcher != nil {
		regs = append(regs, services.NewRunnerService(ServiceWatcher, watcher, ServiceStore))
	}
	if !a.noMonitor {
		regs = append(regs, services.NewFuncService(ServiceMonitor, a.startMonitor, a.stopMonitor, ServiceStore))
	}
	if a.terminal != nil {
		regs = append(regs, services.NewRunnerService(ServiceTerminal, a.terminal, ServiceStore))
	}

	for _, svc := range regs {
		if err := a.orchestrator.RegisterService(svc); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) startStore(context.Context) error {
	root, err := store.New(store.Dependencies{
		API:         a.api,
		UserConfig:  a.userConfig,
		Signals:     a.transport,
		Keys:        a.keys,
		Bus:         a.bus,
		Recorder:    a.recorder,
		Logger:      a.logger,
		Development: a.cfg.IsDevelopment(),
		Autostart:   a.cfg.Daemon.AutostartEnabled(),
	})
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.root = root
	a.mu.Unlock()
	return nil
}

func (a *App) stopStore(ctx context.Context) error {
	root := a.Root()
	if root == nil {
		return nil
	}
	return root.Shutdown(ctx)
}

func (a *App) startMonitor(ctx context.Context) error {
	root := a.Root()
	if root == nil {
		return ferrors.RuntimeError("store graph is not running").Build()
	}
	m := daemon.NewMonitor(a.api, root.DaemonStore(), a.cfg.Daemon.HealthInterval, a.logger)
	a.mu.Lock()
	a.monitor = m
	a.mu.Unlock()
	return m.Start(ctx)
}

func (a *App) stopMonitor(ctx context.Context) error {
	a.mu.Lock()
	m := a.monitor
	a.mu.Unlock()
	if m == nil {
		return nil
	}
	return m.Stop(ctx)
}

func (a *App) reloadUserConfig() {
	if root := a.Root(); root != nil {
		root.ConfigStore().Reload(context.Background())
	}
}

// Start runs every service in dependency order.
func (a *App) Start(ctx context.Context) error {
	return a.orchestrator.StartAll(ctx)
}

// Stop stops every service in reverse order, then closes the event bus.
func (a *App) Stop(ctx context.Context) error {
	err := a.orchestrator.StopAll(ctx)
	a.bus.Close()
	return err
}

// Root returns the store graph, nil before Start.
func (a *App) Root() *store.Root {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root
}

func (a *App) Bus() *events.Bus                       { return a.bus }
func (a *App) Keys() *input.Dispatcher                { return a.keys }
func (a *App) API() storeapi.DaemonAPI                { return a.api }
func (a *App) UserConfig() storeapi.UserConfigService { return a.userConfig }
func (a *App) Terminal() *input.Terminal              { return a.terminal }
func (a *App) Settings() *config.Config               { return a.cfg }
func (a *App) Recorder() metrics.Recorder             { return a.recorder }

// Services reports the state of every registered service.
func (a *App) Services() []services.ServiceInfo {
	return a.orchestrator.GetAllServiceInfo()
}
