package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/vpndesk/internal/events"
	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/input"
	"git.home.luguber.info/inful/vpndesk/internal/logfields"
	"git.home.luguber.info/inful/vpndesk/internal/metrics"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/config"
	"git.home.luguber.info/inful/vpndesk/internal/store/connection"
	"git.home.luguber.info/inful/vpndesk/internal/store/daemon"
	"git.home.luguber.info/inful/vpndesk/internal/store/feedback"
	"git.home.luguber.info/inful/vpndesk/internal/store/filters"
	"git.home.luguber.info/inful/vpndesk/internal/store/identity"
	"git.home.luguber.info/inful/vpndesk/internal/store/navigation"
	"git.home.luguber.info/inful/vpndesk/internal/store/onboarding"
	"git.home.luguber.info/inful/vpndesk/internal/store/payment"
	"git.home.luguber.info/inful/vpndesk/internal/store/proposals"
	"git.home.luguber.info/inful/vpndesk/internal/store/referral"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Load names used in logs and metrics.
const (
	LoadConfig   = "config"
	LoadIdentity = "identity"
)

// Dependencies are the collaborators the graph is built from. API and
// UserConfig are required.
type Dependencies struct {
	API        storeapi.DaemonAPI
	UserConfig storeapi.UserConfigService
	Signals    storeapi.Signals
	Keys       storeapi.KeySource
	Bus        *events.Bus
	Recorder   metrics.Recorder
	Logger     *slog.Logger

	// Development enables the debug grid toggle.
	Development bool
	// Autostart asks the transport to start the daemon when it goes Down.
	Autostart bool
}

// Root owns the sub-stores.
type Root struct {
	deps     Dependencies
	logger   *slog.Logger
	recorder metrics.Recorder
	group    *reactive.Group

	navigation *navigation.Store
	router     *navigation.Router
	daemon     *daemon.Store
	config     *config.Store
	filters    *filters.Store
	identity   *identity.Store
	onboarding *onboarding.Store
	proposals  *proposals.Store
	connection *connection.Store
	payment    *payment.Store
	feedback   *feedback.Store
	referral   *referral.Store

	showGrid   *reactive.Value[bool]
	reactions  reactive.Reactions
	listeners  reactive.Reactions
	listenOnce sync.Once
	listenErr  error
	closeOnce  sync.Once
}

// New builds and wires the store graph. Any construction failure is fatal.
func New(deps Dependencies) (*Root, error) {
	if deps.API == nil {
		return nil, ferrors.ConfigError("daemon API is required").Fatal().Build()
	}
	if deps.UserConfig == nil {
		return nil, ferrors.ConfigError("user config service is required").Fatal().Build()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}

	r := &Root{
		deps:     deps,
		logger:   deps.Logger,
		recorder: deps.Recorder,
		group:    reactive.NewGroup(context.Background()),
		showGrid: reactive.NewValue(false),
	}
	if err := r.construct(); err != nil {
		return nil, err
	}

	for _, rc := range r.reactors() {
		rc.SetupReactions()
	}
	r.setupReactions()

	if err := r.registerListeners(); err != nil {
		r.dispose()
		return nil, err
	}
	return r, nil
}

func (r *Root) construct() error {
	var err error
	r.navigation = navigation.New(r)
	r.router = navigation.NewRouter(r)
	r.daemon = daemon.New(r, r.deps.Signals, r.deps.Autostart)
	if r.config, err = config.New(r, r.deps.UserConfig); err != nil {
		return constructionFailed("config", err)
	}
	r.filters = filters.New(r)
	if r.identity, err = identity.New(r, r.deps.API); err != nil {
		return constructionFailed("identity", err)
	}
	r.onboarding = onboarding.New(r)
	if r.proposals, err = proposals.New(r, r.deps.API); err != nil {
		return constructionFailed("proposals", err)
	}
	if r.connection, err = connection.New(r, r.deps.API); err != nil {
		return constructionFailed("connection", err)
	}
	if r.payment, err = payment.New(r, r.deps.API); err != nil {
		return constructionFailed("payment", err)
	}
	if r.feedback, err = feedback.New(r, r.deps.API); err != nil {
		return constructionFailed("feedback", err)
	}
	if r.referral, err = referral.New(r, r.deps.API); err != nil {
		return constructionFailed("referral", err)
	}
	return nil
}

func constructionFailed(name string, err error) error {
	return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to construct store").
		WithContext("store", name).
		Fatal().
		Build()
}

// reactors lists the reacting sub-stores in construction order.
func (r *Root) reactors() []storeapi.Reactor {
	return []storeapi.Reactor{
		r.navigation,
		r.daemon,
		r.filters,
		r.identity,
		r.proposals,
		r.connection,
		r.payment,
		r.referral,
	}
}

func (r *Root) setupReactions() {
	r.reactions.Add(r.daemon.Status().Observe(func(status storeapi.DaemonStatus) {
		r.Spawn(func(ctx context.Context) {
			r.OnDaemonStatusChange(ctx, status)
		})
	}))
}

// OnDaemonStatusChange records the status and, when it is Up, loads config
// and identity concurrently before determining the route once. Load failures
// are logged and never returned.
func (r *Root) OnDaemonStatusChange(ctx context.Context, status storeapi.DaemonStatus) {
	r.recorder.IncDaemonStatusChange(string(status))
	r.Emit(events.DaemonStatusChanged{Status: string(status), ObservedAt: time.Now()})
	if status != storeapi.DaemonUp {
		return
	}

	var wg sync.WaitGroup
	load := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			r.logger.Warn("Could not load "+name, logfields.Action(name), logfields.Error(err))
			r.recorder.IncLoadFailure(name)
		}
	}
	wg.Add(2)
	go load(LoadConfig, r.Config().LoadConfig)
	go load(LoadIdentity, r.Identity().LoadIdentity)
	wg.Wait()

	r.Navigation().DetermineRoute()
}

// ShowGrid is the debug grid flag.
func (r *Root) ShowGrid() reactive.Observable[bool] {
	return r.showGrid
}

// ToggleDebugGrid flips the debug grid in development; otherwise it does nothing.
func (r *Root) ToggleDebugGrid() {
	if !r.deps.Development {
		return
	}
	r.showGrid.Update(func(cur bool) bool { return !cur })
	r.logger.Debug("Debug grid toggled", slog.Bool("show", r.showGrid.Get()))
}

// registerListeners installs the F5 and disconnect listeners. Repeated calls
// register nothing and return the first result.
func (r *Root) registerListeners() error {
	r.listenOnce.Do(func() {
		if r.deps.Keys != nil {
			r.listeners.Add(r.deps.Keys.OnKey(input.KeyF5, r.ToggleDebugGrid))
		}
		if r.deps.Signals == nil {
			return
		}
		unsubscribe, err := r.deps.Signals.Subscribe(storeapi.ChannelDisconnect, func([]byte) {
			r.logger.Info("Disconnect requested by daemon transport", logfields.Channel(storeapi.ChannelDisconnect))
			r.Spawn(func(ctx context.Context) {
				if err := r.connection.Disconnect(ctx); err != nil {
					r.logger.Warn("Disconnect failed", logfields.Error(err))
				}
			})
		})
		if err != nil {
			r.listenErr = ferrors.WrapError(err, ferrors.CategoryIPC, "failed to subscribe to disconnect signal").
				Fatal().
				Build()
			return
		}
		r.listeners.Add(unsubscribe)
	})
	return r.listenErr
}

// Shutdown unregisters every listener and reaction, then waits for running
// effects until ctx is done. Effects still running at that point are canceled.
func (r *Root) Shutdown(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		r.dispose()
		err = r.group.WaitContext(ctx)
		r.group.Cancel()
		if err != nil {
			r.logger.Warn("Store effects still running at shutdown", logfields.Error(err))
		}
	})
	return err
}

func (r *Root) dispose() {
	r.listeners.DisposeAll()
	r.reactions.DisposeAll()
	rs := r.reactors()
	for i := len(rs) - 1; i >= 0; i-- {
		rs[i].DisposeReactions()
	}
}

// storeapi.Root

func (r *Root) Router() storeapi.Router              { return r.router }
func (r *Root) Navigation() storeapi.Navigator       { return r.navigation }
func (r *Root) Daemon() storeapi.DaemonState         { return r.daemon }
func (r *Root) Config() storeapi.ConfigState         { return r.config }
func (r *Root) Filters() storeapi.FilterState        { return r.filters }
func (r *Root) Identity() storeapi.IdentityState     { return r.identity }
func (r *Root) Connection() storeapi.ConnectionState { return r.connection }
func (r *Root) Recorder() metrics.Recorder           { return r.recorder }

func (r *Root) Logger(store string) *slog.Logger {
	return r.logger.With(logfields.Store(store))
}

func (r *Root) Spawn(fn func(ctx context.Context)) {
	r.group.Go(fn)
}

func (r *Root) Emit(evt any) {
	if r.deps.Bus == nil {
		return
	}
	if dropped := r.deps.Bus.TryPublish(evt); dropped > 0 {
		r.logger.Debug("Event dropped by slow subscribers", slog.Int("dropped", dropped))
	}
}

// Concrete stores for the commands and the view layer.

func (r *Root) DaemonStore() *daemon.Store         { return r.daemon }
func (r *Root) ConfigStore() *config.Store         { return r.config }
func (r *Root) Onboarding() *onboarding.Store      { return r.onboarding }
func (r *Root) Proposals() *proposals.Store        { return r.proposals }
func (r *Root) Payment() *payment.Store            { return r.payment }
func (r *Root) Feedback() *feedback.Store          { return r.feedback }
func (r *Root) Referral() *referral.Store          { return r.referral }
func (r *Root) Location() storeapi.Location        { return r.router.Location().Get() }
func (r *Root) RouterHistory() []storeapi.Location { return r.router.History() }

var _ storeapi.Root = (*Root)(nil)
