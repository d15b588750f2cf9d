package events

import "time"

// AppState is implemented by every event that the analytics journal records.
type AppState interface {
	AppStateAction() string
	AppStateValue() string
}

// DaemonStatusChanged is emitted by the root reaction whenever the observed
// daemon status changes value.
type DaemonStatusChanged struct {
	Status     string
	ObservedAt time.Time
}

func (e DaemonStatusChanged) AppStateAction() string { return "daemon_status" }
func (e DaemonStatusChanged) AppStateValue() string  { return e.Status }

// IdentityProgressChanged is emitted by the onboarding store on every progress transition.
type IdentityProgressChanged struct {
	AttemptID string
	Progress  string
	ChangedAt time.Time
}

func (e IdentityProgressChanged) AppStateAction() string { return "identity_progress" }
func (e IdentityProgressChanged) AppStateValue() string  { return e.Progress }

// Navigated is emitted by the router after a location push.
type Navigated struct {
	Location string
	At       time.Time
}

func (e Navigated) AppStateAction() string { return "navigated" }
func (e Navigated) AppStateValue() string  { return e.Location }

// IPCMessage carries a daemon transport signal over the in-process transport.
type IPCMessage struct {
	Channel string
	Payload []byte
}
