package storetest

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Router records pushes.
type Router struct {
	mu       sync.Mutex
	pushes   []storeapi.Location
	location *reactive.Value[storeapi.Location]
}

func NewRouter() *Router {
	return &Router{location: reactive.NewValue(storeapi.LocationLoading)}
}

func (r *Router) Push(loc storeapi.Location) {
	r.mu.Lock()
	r.pushes = append(r.pushes, loc)
	r.mu.Unlock()
	r.location.Set(loc)
}

func (r *Router) Location() reactive.Observable[storeapi.Location] { return r.location }

// Pushes returns every pushed location in order.
func (r *Router) Pushes() []storeapi.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]storeapi.Location, len(r.pushes))
	copy(out, r.pushes)
	return out
}

// Navigator counts route determinations.
type Navigator struct {
	mu    sync.Mutex
	calls int

	OnDetermine func()
	Result      storeapi.Location
}

func (n *Navigator) DetermineRoute() storeapi.Location {
	n.mu.Lock()
	n.calls++
	hook := n.OnDetermine
	n.mu.Unlock()
	if hook != nil {
		hook()
	}
	return n.Result
}

// Calls returns the number of DetermineRoute calls.
func (n *Navigator) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// Daemon exposes a settable status.
type Daemon struct {
	Value *reactive.Value[storeapi.DaemonStatus]
}

func NewDaemon() *Daemon {
	return &Daemon{Value: reactive.NewValue(storeapi.DaemonStarting)}
}

func (d *Daemon) Status() reactive.Observable[storeapi.DaemonStatus] { return d.Value }

// Config is a scripted config collaborator.
type Config struct {
	mu              sync.Mutex
	LoadErr         error
	SetOnboardedErr error
	// LoadGate, when set, blocks LoadConfig until it is closed.
	LoadGate chan struct{}

	loads        int
	setOnboarded int
	snapshot     *reactive.Value[storeapi.ConfigSnapshot]
}

func NewConfig() *Config {
	return &Config{snapshot: reactive.NewValue(storeapi.ConfigSnapshot{})}
}

func (c *Config) LoadConfig(ctx context.Context) error {
	c.mu.Lock()
	c.loads++
	gate, err := c.LoadGate, c.LoadErr
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	c.snapshot.Update(func(s storeapi.ConfigSnapshot) storeapi.ConfigSnapshot {
		s.Loaded = true
		return s
	})
	return nil
}

func (c *Config) SetOnboarded(context.Context) error {
	c.mu.Lock()
	c.setOnboarded++
	err := c.SetOnboardedErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.snapshot.Update(func(s storeapi.ConfigSnapshot) storeapi.ConfigSnapshot {
		s.Onboarded = true
		return s
	})
	return nil
}

func (c *Config) Onboarded() bool { return c.snapshot.Get().Onboarded }

func (c *Config) Snapshot() reactive.Observable[storeapi.ConfigSnapshot] { return c.snapshot }

// SetSnapshot replaces the snapshot.
func (c *Config) SetSnapshot(s storeapi.ConfigSnapshot) { c.snapshot.Set(s) }

// Loads returns the number of LoadConfig calls.
func (c *Config) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// SetOnboardedCalls returns the number of SetOnboarded calls.
func (c *Config) SetOnboardedCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOnboarded
}

// Filters exposes a settable filter.
type Filters struct {
	Value *reactive.Value[storeapi.FilterConfig]
}

func NewFilters() *Filters {
	return &Filters{Value: reactive.NewValue(storeapi.FilterConfig{})}
}

func (f *Filters) Filters() reactive.Observable[storeapi.FilterConfig] { return f.Value }

// RegisterCall is one recorded Register invocation.
type RegisterCall struct {
	Identity *storeapi.Identity
	Code     string
}

// Identity is a scripted identity collaborator.
type Identity struct {
	mu sync.Mutex
	// Exists is returned by IdentityExists.
	Exists bool
	// Loaded becomes the current identity on LoadIdentity; nil simulates a missing identity.
	Loaded      *storeapi.Identity
	CreateErr   error
	LoadErr     error
	RegisterErr error
	// CreateGate, when set, blocks Create until it is closed.
	CreateGate chan struct{}
	// LoadGate, when set, blocks LoadIdentity until it is closed.
	LoadGate chan struct{}

	creates   int
	loads     int
	registers []RegisterCall
	current   *reactive.Value[*storeapi.Identity]
}

func NewIdentity() *Identity {
	return &Identity{current: reactive.NewValue[*storeapi.Identity](nil)}
}

func (i *Identity) IdentityExists() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.Exists
}

func (i *Identity) Identity() *storeapi.Identity { return i.current.Get() }

func (i *Identity) Current() reactive.Observable[*storeapi.Identity] { return i.current }

func (i *Identity) Create(context.Context) error {
	i.mu.Lock()
	i.creates++
	gate, err := i.CreateGate, i.CreateErr
	i.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (i *Identity) LoadIdentity(context.Context) error {
	i.mu.Lock()
	i.loads++
	gate, err, loaded := i.LoadGate, i.LoadErr, i.Loaded
	i.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	i.current.Set(loaded)
	return nil
}

func (i *Identity) Register(_ context.Context, id *storeapi.Identity, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.registers = append(i.registers, RegisterCall{Identity: id, Code: code})
	return i.RegisterErr
}

// SetCurrent replaces the current identity.
func (i *Identity) SetCurrent(id *storeapi.Identity) { i.current.Set(id) }

// Creates returns the number of Create calls.
func (i *Identity) Creates() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.creates
}

// Loads returns the number of LoadIdentity calls.
func (i *Identity) Loads() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loads
}

// Registers returns every Register call.
func (i *Identity) Registers() []RegisterCall {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]RegisterCall, len(i.registers))
	copy(out, i.registers)
	return out
}

// Connection is a scripted connection collaborator.
type Connection struct {
	mu          sync.Mutex
	disconnects int
	Value       *reactive.Value[storeapi.ConnectionStatus]
}

func NewConnection() *Connection {
	return &Connection{Value: reactive.NewValue(storeapi.ConnectionNotConnected)}
}

func (c *Connection) Status() reactive.Observable[storeapi.ConnectionStatus] { return c.Value }

func (c *Connection) Disconnect(context.Context) error {
	c.mu.Lock()
	c.disconnects++
	c.mu.Unlock()
	c.Value.Set(storeapi.ConnectionNotConnected)
	return nil
}

// Disconnects returns the number of Disconnect calls.
func (c *Connection) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}
