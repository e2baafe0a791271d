package procflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/internal/runtime"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/adapters/memory"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/ports"
	"github.com/dewakar-s/procflow/pkg/registry"
	"github.com/dewakar-s/procflow/pkg/session"
)

// Engine is the high-level entry point for the procflow library.
// It bundles the action registry, the driver and the suspension controller.
type Engine struct {
	controller *session.Controller
	registry   *registry.Registry
	logger     *slog.Logger
}

type options struct {
	store         ports.StateStore
	locker        ports.DistributedLocker
	source        ports.ActionSource
	actionSet     string
	actions       []domain.ActionDescriptor
	client        action.Doer
	timeout       time.Duration
	maxConcurrent int
	composer      ports.Composer
	hooks         domain.LifecycleHooks
	listeners     []func(context.Context, domain.Outcome)
	logger        *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*options)

// WithStore sets where session snapshots are kept (in memory by default).
func WithStore(s ports.StateStore) Option {
	return func(o *options) { o.store = s }
}

// WithLocker serializes sessions across processes sharing a store.
func WithLocker(l ports.DistributedLocker) Option {
	return func(o *options) { o.locker = l }
}

// WithActionSource loads every descriptor of actionSetID from src when the engine is built.
func WithActionSource(src ports.ActionSource, actionSetID string) Option {
	return func(o *options) {
		o.source = src
		o.actionSet = actionSetID
	}
}

// WithActions registers descriptors directly, in addition to any action source.
func WithActions(descs ...domain.ActionDescriptor) Option {
	return func(o *options) { o.actions = append(o.actions, descs...) }
}

// WithHTTPClient sets the client compiled actions use.
func WithHTTPClient(c action.Doer) Option {
	return func(o *options) { o.client = c }
}

// WithTimeout bounds every action request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxConcurrent caps in-flight action requests across all sessions.
func WithMaxConcurrent(n int) Option {
	return func(o *options) { o.maxConcurrent = n }
}

// WithComposer lets a model phrase RESPOND_FINAL messages.
func WithComposer(c ports.Composer) Option {
	return func(o *options) { o.composer = c }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) { o.hooks = o.hooks.Merge(hooks) }
}

// WithOutcomeListener is called after every successful start or resume.
func WithOutcomeListener(fn func(context.Context, domain.Outcome)) Option {
	return func(o *options) { o.listeners = append(o.listeners, fn) }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New compiles the configured actions and wires the controller.
// A malformed descriptor is reported as a *domain.ConfigurationError.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	o := options{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = memory.NewStore()
	}

	compilerOpts := []action.Option{
		action.WithLogger(o.logger),
		action.WithUserAgent("procflow/" + Version),
	}
	if o.client != nil {
		compilerOpts = append(compilerOpts, action.WithHTTPClient(o.client))
	}
	if o.timeout > 0 {
		compilerOpts = append(compilerOpts, action.WithTimeout(o.timeout))
	}
	if o.maxConcurrent > 0 {
		compilerOpts = append(compilerOpts, action.WithPool(action.NewPool(o.maxConcurrent)))
	}
	compiler := action.NewCompiler(compilerOpts...)

	reg := registry.NewRegistry()
	if o.source != nil {
		loaded, err := registry.Load(ctx, o.source, o.actionSet, compiler, o.logger)
		if err != nil {
			return nil, err
		}
		for _, inv := range loaded.List() {
			reg.Register(inv)
		}
	}
	for i, d := range o.actions {
		inv, err := compiler.Compile(d)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		reg.Register(inv)
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(o.logger),
		runtime.WithLifecycleHooks(o.hooks),
	}
	if o.composer != nil {
		engineOpts = append(engineOpts, runtime.WithComposer(o.composer))
	}

	managerOpts := []session.Option{session.WithLogger(o.logger)}
	if o.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(o.locker))
	}
	ctrlOpts := []session.ControllerOption{session.WithControllerLogger(o.logger)}
	for _, fn := range o.listeners {
		ctrlOpts = append(ctrlOpts, session.WithOutcomeListener(fn))
	}

	return &Engine{
		controller: session.NewController(
			session.NewManager(o.store, managerOpts...),
			runtime.NewEngine(reg, engineOpts...),
			ctrlOpts...,
		),
		registry: reg,
		logger:   o.logger,
	}, nil
}

// Start creates the session (or re-attaches to it) and runs until the first
// question or the end of the procedure. An empty sessionID is generated.
func (e *Engine) Start(ctx context.Context, sessionID string, proc domain.Procedure) (domain.Outcome, error) {
	return e.controller.Start(ctx, sessionID, proc)
}

// Resume answers the pending question and runs until the next one or the end.
func (e *Engine) Resume(ctx context.Context, sessionID, answer string) (domain.Outcome, error) {
	return e.controller.Resume(ctx, sessionID, session.ResumeRequest{Answer: answer})
}

// ResumeOnce is Resume with a delivery token: a token already applied to the
// session returns the current outcome, marked Replayed, without advancing.
func (e *Engine) ResumeOnce(ctx context.Context, sessionID, token, answer string) (domain.Outcome, error) {
	return e.controller.Resume(ctx, sessionID, session.ResumeRequest{Answer: answer, Token: token})
}

// Get returns the stored snapshot of a session.
func (e *Engine) Get(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.controller.Get(ctx, sessionID)
}

// Delete removes a session.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	return e.controller.Delete(ctx, sessionID)
}

// Controller exposes the underlying controller to host adapters (HTTP, MCP, Telegram).
func (e *Engine) Controller() *session.Controller {
	return e.controller
}

// Registry exposes the compiled actions.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}
