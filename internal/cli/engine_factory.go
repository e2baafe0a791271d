package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dewakar-s/procflow/internal/config"
	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/internal/runtime"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/adapters/file"
	"github.com/dewakar-s/procflow/pkg/adapters/loam"
	httpAdapter "github.com/dewakar-s/procflow/pkg/adapters/http"
	"github.com/dewakar-s/procflow/pkg/adapters/llm"
	"github.com/dewakar-s/procflow/pkg/adapters/memory"
	"github.com/dewakar-s/procflow/pkg/adapters/redis"
	"github.com/dewakar-s/procflow/pkg/adapters/sqlite"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/observability"
	"github.com/dewakar-s/procflow/pkg/persistence/middleware"
	"github.com/dewakar-s/procflow/pkg/ports"
	"github.com/dewakar-s/procflow/pkg/registry"
	"github.com/dewakar-s/procflow/pkg/session"
)

// App is the fully wired process: store, action registry, driver and controller.
// It is built once per command invocation.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Store      ports.StateStore
	Source     ports.ActionSource
	Registry   *registry.Registry
	Metrics    *observability.Metrics
	Streams    *httpAdapter.StreamManager
	Engine     *runtime.Engine
	Controller *session.Controller

	closers []func() error
}

// BuildOption adjusts the wiring, mostly for tests.
type BuildOption func(*buildOptions)

type buildOptions struct {
	debug   bool
	store   ports.StateStore
	source  ports.ActionSource
	client  action.Doer
	version string
}

// WithDebug installs debug lifecycle hooks.
func WithDebug(debug bool) BuildOption {
	return func(o *buildOptions) { o.debug = debug }
}

// WithStore overrides the configured store backend.
func WithStore(s ports.StateStore) BuildOption {
	return func(o *buildOptions) { o.store = s }
}

// WithActionSource overrides the configured action source.
func WithActionSource(s ports.ActionSource) BuildOption {
	return func(o *buildOptions) { o.source = s }
}

// WithHTTPClient overrides the client used by compiled actions.
func WithHTTPClient(c action.Doer) BuildOption {
	return func(o *buildOptions) { o.client = c }
}

// WithVersion sets the release reported in the actions' User-Agent.
func WithVersion(v string) BuildOption {
	return func(o *buildOptions) { o.version = v }
}

// Build wires every component from cfg.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...BuildOption) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	app := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	var locker ports.DistributedLocker
	store := o.store
	if store == nil {
		var err error
		store, locker, err = app.openStore(ctx)
		if err != nil {
			return nil, err
		}
	}

	key, err := cfg.Store.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		store = middleware.Chain(store, enc)
		logger.Debug("Snapshot encryption enabled")
	}
	app.Store = store

	source := o.source
	if source == nil {
		source, err = app.openActionSource()
		if err != nil {
			return nil, err
		}
	}
	app.Source = source

	app.Metrics = observability.NewMetrics(nil)
	compilerOpts := []action.Option{
		action.WithLogger(logger),
		action.WithTimeout(cfg.HTTP.Timeout),
		action.WithPool(action.NewPool(cfg.HTTP.MaxConcurrent)),
		action.WithObserver(app.Metrics),
	}
	if o.version != "" {
		compilerOpts = append(compilerOpts, action.WithUserAgent("procflow/"+o.version))
	}
	if o.client != nil {
		compilerOpts = append(compilerOpts, action.WithHTTPClient(o.client))
	}
	reg, err := registry.Load(ctx, source, cfg.Actions.Set, action.NewCompiler(compilerOpts...), logger)
	if err != nil {
		return nil, err
	}
	app.Registry = reg

	hooks := app.Metrics.Hooks().Merge(observability.LogHooks(logger))
	if o.debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}
	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(hooks),
	}
	if cfg.LLM.Enabled {
		composer, err := llm.NewOpenAI(cfg.LLM.Token, cfg.LLM.Model, cfg.LLM.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize composer: %w", err)
		}
		engineOpts = append(engineOpts, runtime.WithComposer(composer))
		logger.Info("Final responses composed by model", "model", cfg.LLM.Model)
	}
	app.Engine = runtime.NewEngine(reg, engineOpts...)

	managerOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}
	app.Streams = httpAdapter.NewStreamManager(logger)
	app.Controller = session.NewController(
		session.NewManager(store, managerOpts...),
		app.Engine,
		session.WithControllerLogger(logger),
		session.WithOutcomeListener(app.Streams.Publish),
	)

	ok = true
	return app, nil
}

func (a *App) openStore(ctx context.Context) (ports.StateStore, ports.DistributedLocker, error) {
	cfg := a.Config
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile:
		return file.New(cfg.Store.Path), nil, nil
	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(cfg.Store.TTL),
			redis.WithPrefix(cfg.Store.Prefix),
		)
		a.closers = append(a.closers, store.Close)
		if err := store.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.Logger.Info("Using redis store", "addr", cfg.Redis.Addr, "ttl", cfg.Store.TTL)
		return store, redis.NewLocker(store.Client(), cfg.Store.Prefix), nil
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil, nil
	}
	return nil, nil, &domain.ConfigurationError{Field: "store.backend", Reason: fmt.Sprintf("unknown backend %q", cfg.Store.Backend)}
}

func (a *App) openActionSource() (ports.ActionSource, error) {
	cfg := a.Config.Actions
	switch cfg.Source {
	case "sqlite":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case "loam":
		return loam.Open(cfg.Path)
	default:
		return file.NewActionSource(cfg.Path)
	}
}

// MetricsHandler exposes the app's Prometheus registry.
func (a *App) MetricsHandler() http.Handler {
	return a.Metrics.Handler()
}

// Close releases store and database connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
