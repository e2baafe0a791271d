package action

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/schema"
)

// DefaultTimeout bounds a single action request.
const DefaultTimeout = 30 * time.Second

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives the outcome of every invocation (e.g. for metrics).
type Observer interface {
	ObserveAction(action string, status domain.ActionStatus, elapsed time.Duration)
}

// Compiler builds Invokers sharing one HTTP client, logger and concurrency pool.
type Compiler struct {
	client    Doer
	logger    *slog.Logger
	timeout   time.Duration
	pool      *Pool
	observer  Observer
	userAgent string
}

// Option configures the Compiler.
type Option func(*Compiler)

// WithHTTPClient sets the client used by every compiled Invoker.
func WithHTTPClient(client Doer) Option {
	return func(c *Compiler) {
		c.client = client
	}
}

// WithLogger configures a logger for compilation and invocation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Compiler) {
		c.timeout = d
	}
}

// WithPool bounds concurrent requests across all Invokers of this Compiler.
func WithPool(p *Pool) Option {
	return func(c *Compiler) {
		c.pool = p
	}
}

// WithObserver registers an invocation observer.
func WithObserver(o Observer) Option {
	return func(c *Compiler) {
		c.observer = o
	}
}

// WithUserAgent overrides the default client identifier.
func WithUserAgent(ua string) Option {
	return func(c *Compiler) {
		c.userAgent = ua
	}
}

// NewCompiler creates a Compiler. Defaults: http.DefaultClient semantics, 30s timeout, unbounded pool.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		client:    &http.Client{},
		logger:    logging.NewNop(),
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile turns a descriptor into an Invoker.
// Only malformed descriptors fail; unknown parameter kinds fall back to string.
func (c *Compiler) Compile(desc domain.ActionDescriptor) (*Invoker, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	name := SanitizeName(desc.Name)
	c.logger.Info("Building action", "action", name)

	for _, p := range desc.Parameters {
		if !schema.Known(p.Type) {
			c.logger.Debug("Unknown parameter kind, using string", "action", name, "param", p.Name, "kind", p.Type)
		}
	}

	method := strings.ToUpper(strings.TrimSpace(desc.HTTPMethod))
	if method == "" {
		method = http.MethodGet
	}
	if !SupportedMethod(method) {
		c.logger.Warn("Action declares an unsupported HTTP method; invocations will fail", "action", name, "method", method)
	}

	return &Invoker{
		name:     name,
		desc:     desc,
		method:   method,
		schema:   schema.Compile(desc.Parameters),
		template: ParseTemplate(desc.URL),
		headers:  buildHeaders(c.userAgent, desc.Headers),
		client:   c.client,
		logger:   c.logger.With("action", name),
		timeout:  c.timeout,
		pool:     c.pool,
		observer: c.observer,
	}, nil
}

// SupportedMethod reports whether m (upper case) can be invoked.
func SupportedMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
