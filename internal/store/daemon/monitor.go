package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// StatusSink receives health observations.
type StatusSink interface {
	SetStatus(status storeapi.DaemonStatus)
}

// Monitor polls the daemon healthcheck on a gocron interval and feeds the
// result into a StatusSink.
type Monitor struct {
	health   storeapi.HealthService
	sink     StatusSink
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
}

// NewMonitor creates a monitor probing every interval.
func NewMonitor(health storeapi.HealthService, sink StatusSink, interval time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Monitor{
		health:   health,
		sink:     sink,
		interval: interval,
		timeout:  interval,
		logger:   logger.With(logfields.Service("daemon-monitor")),
	}
}

// Start schedules the probe, running the first one immediately.
func (m *Monitor) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scheduler != nil {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return ferrors.RuntimeError("failed to create gocron scheduler").WithCause(err).Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(m.Probe),
		gocron.WithName("daemon-healthcheck"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return ferrors.RuntimeError("failed to schedule daemon healthcheck").WithCause(err).Build()
	}

	m.logger.Info("Starting daemon monitor", "interval", m.interval)
	s.Start()
	m.scheduler = s
	return nil
}

// Stop shuts the scheduler down.
func (m *Monitor) Stop(context.Context) error {
	m.mu.Lock()
	s := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()

	if s == nil {
		return nil
	}
	m.logger.Info("Stopping daemon monitor")
	return s.Shutdown()
}

// Probe runs one healthcheck and reports Up or Down.
func (m *Monitor) Probe() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := m.health.Healthcheck(ctx); err != nil {
		m.logger.Debug("Daemon healthcheck failed", logfields.Error(err))
		m.sink.SetStatus(storeapi.DaemonDown)
		return
	}
	m.sink.SetStatus(storeapi.DaemonUp)
}
