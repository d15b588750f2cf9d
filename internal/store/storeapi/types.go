// Package storeapi holds the types shared across the store graph and the
// capability interfaces sub-stores use to reach each other through the root.
package storeapi

import "time"

// DaemonStatus is the connectivity state of the background daemon.
type DaemonStatus string

const (
	DaemonStarting DaemonStatus = "Starting"
	DaemonUp       DaemonStatus = "Up"
	DaemonDown     DaemonStatus = "Down"
)

// Location is a named navigation target.
type Location string

const (
	LocationLoading        Location = "loading"
	LocationWelcome        Location = "welcome"
	LocationTerms          Location = "terms"
	LocationIdentitySetup  Location = "onboarding/identity/setup"
	LocationIdentityBackup Location = "onboarding/identity/backup"
	LocationTopupPrompt    Location = "onboarding/topup-prompt"
	LocationProposals      Location = "proposals"
	LocationConnection     Location = "connection"
)

// RegistrationStatus is the on-chain registration state of an identity.
type RegistrationStatus string

const (
	RegistrationUnknown      RegistrationStatus = "Unknown"
	RegistrationUnregistered RegistrationStatus = "Unregistered"
	RegistrationInProgress   RegistrationStatus = "InProgress"
	RegistrationRegistered   RegistrationStatus = "Registered"
	RegistrationFailed       RegistrationStatus = "RegistrationError"
)

// Identity is the account the daemon currently acts as.
type Identity struct {
	ID                 string             `json:"id"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	Balance            uint64             `json:"balance"`
}

// Registered reports whether id is non-nil and registered.
func Registered(id *Identity) bool {
	return id != nil && id.RegistrationStatus == RegistrationRegistered
}

// FilterConfig narrows the proposal list.
type FilterConfig struct {
	MaxPricePerHour float64 `json:"max_price_per_hour" yaml:"max_price_per_hour"`
	MaxPricePerGiB  float64 `json:"max_price_per_gib" yaml:"max_price_per_gib"`
	MinQuality      int     `json:"min_quality" yaml:"min_quality"`
	Country         string  `json:"country,omitempty" yaml:"country,omitempty"`
}

// ConfigSnapshot is the part of the persisted user configuration the stores read.
type ConfigSnapshot struct {
	Loaded    bool
	Onboarded bool
	Filters   FilterConfig
}

// Proposal is a provider offer returned by the daemon.
type Proposal struct {
	ProviderID   string  `json:"provider_id"`
	ServiceType  string  `json:"service_type"`
	Country      string  `json:"country"`
	PricePerHour float64 `json:"price_per_hour"`
	PricePerGiB  float64 `json:"price_per_gib"`
	Quality      int     `json:"quality"`
}

// ConnectionStatus is the VPN tunnel state.
type ConnectionStatus string

const (
	ConnectionNotConnected  ConnectionStatus = "NotConnected"
	ConnectionConnecting    ConnectionStatus = "Connecting"
	ConnectionConnected     ConnectionStatus = "Connected"
	ConnectionDisconnecting ConnectionStatus = "Disconnecting"
)

// Issue is a user feedback report.
type Issue struct {
	Email       string    `json:"email,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"-"`
}
