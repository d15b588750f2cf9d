package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                sync.Once
	daemonStatus        *prom.CounterVec
	loadFailures        *prom.CounterVec
	routeDeterminations *prom.CounterVec
	navigations         *prom.CounterVec
	onboardingProgress  *prom.CounterVec
	onboardingOutcome   *prom.CounterVec
	apiDuration         *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.daemonStatus = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vpndesk",
			Name:      "daemon_status_changes_total",
			Help:      "Observed daemon status changes by new status",
		}, []string{"status"})
		pr.loadFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vpndesk",
			Name:      "load_failures_total",
			Help:      "Swallowed load failures after the daemon came up",
		}, []string{"load"})
		pr.routeDeterminations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vpndesk",
			Name:      "route_determinations_total",
			Help:      "Route determinations by resulting location",
		}, []string{"location"})
		pr.navigations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vpndesk",
			Name:      "navigations_total",
			Help:      "Router pushes by target location",
		}, []string{"location"})
		pr.onboardingProgress = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vpndesk",
			Name:      "onboarding_progress_total",
			Help:      "Onboarding progress transitions by reached stage",
		}, []string{"progress"})
		pr.onboardingOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vpndesk",
			Name:      "onboarding_outcomes_total",
			Help:      "Onboarding attempts by outcome",
		}, []string{"outcome"})
		pr.apiDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "vpndesk",
			Name:      "daemon_api_request_duration_seconds",
			Help:      "Duration of daemon API requests",
			Buckets:   prom.DefBuckets,
		}, []string{"endpoint", "result"})
		reg.MustRegister(pr.daemonStatus, pr.loadFailures, pr.routeDeterminations, pr.navigations, pr.onboardingProgress, pr.onboardingOutcome, pr.apiDuration)
	})
	return pr
}

func (p *PrometheusRecorder) IncDaemonStatusChange(status string) {
	if p == nil || p.daemonStatus == nil {
		return
	}
	p.daemonStatus.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncLoadFailure(load string) {
	if p == nil || p.loadFailures == nil {
		return
	}
	p.loadFailures.WithLabelValues(load).Inc()
}

func (p *PrometheusRecorder) IncRouteDetermination(location string) {
	if p == nil || p.routeDeterminations == nil {
		return
	}
	p.routeDeterminations.WithLabelValues(location).Inc()
}

func (p *PrometheusRecorder) IncNavigation(location string) {
	if p == nil || p.navigations == nil {
		return
	}
	p.navigations.WithLabelValues(location).Inc()
}

func (p *PrometheusRecorder) IncOnboardingProgress(progress string) {
	if p == nil || p.onboardingProgress == nil {
		return
	}
	p.onboardingProgress.WithLabelValues(progress).Inc()
}

func (p *PrometheusRecorder) IncOnboardingOutcome(outcome OutcomeLabel) {
	if p == nil || p.onboardingOutcome == nil {
		return
	}
	p.onboardingOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveAPIRequest(endpoint string, d time.Duration, success bool) {
	if p == nil || p.apiDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.apiDuration.WithLabelValues(endpoint, res).Observe(d.Seconds())
}
