package metrics

import "time"

// OutcomeLabel enumerates how an onboarding attempt ended.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeStranded OutcomeLabel = "stranded"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeRejected OutcomeLabel = "rejected"
)

// Recorder defines observability hooks for the application state graph. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	IncDaemonStatusChange(status string)
	IncLoadFailure(load string) // load: config|identity
	IncRouteDetermination(location string)
	IncNavigation(location string)
	IncOnboardingProgress(progress string)
	IncOnboardingOutcome(outcome OutcomeLabel)
	ObserveAPIRequest(endpoint string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncDaemonStatusChange(string)                  {}
func (NoopRecorder) IncLoadFailure(string)                         {}
func (NoopRecorder) IncRouteDetermination(string)                  {}
func (NoopRecorder) IncNavigation(string)                          {}
func (NoopRecorder) IncOnboardingProgress(string)                  {}
func (NoopRecorder) IncOnboardingOutcome(OutcomeLabel)             {}
func (NoopRecorder) ObserveAPIRequest(string, time.Duration, bool) {}
