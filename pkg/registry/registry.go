package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/ports"
)

// Registry holds the compiled invokers of one action set, keyed by sanitized name.
type Registry struct {
	mu       sync.RWMutex
	invokers map[string]*action.Invoker
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		invokers: make(map[string]*action.Invoker),
	}
}

// Register adds an invoker to the registry.
// If an invoker with the same name exists, it is overwritten.
func (r *Registry) Register(inv *action.Invoker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invokers[inv.Name()] = inv
}

// Lookup finds an invoker by its sanitized name.
func (r *Registry) Lookup(name string) (*action.Invoker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invokers[name]
	return inv, ok
}

// Resolve implements ports.ActionResolver.
// Names are tried as written first, then sanitized, so steps may use the raw descriptor name.
func (r *Registry) Resolve(name string) (ports.Invoker, bool) {
	if inv, ok := r.Lookup(name); ok {
		return inv, true
	}
	if inv, ok := r.Lookup(action.SanitizeName(name)); ok {
		return inv, true
	}
	return nil, false
}

// Execute looks up an action by name and invokes it.
// An unknown name yields a failed result rather than an error.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) domain.ActionResult {
	inv, ok := r.Resolve(name)
	if !ok {
		return domain.Failed(fmt.Sprintf("action not found: %s", name))
	}
	return inv.Invoke(ctx, args)
}

// List returns all invokers sorted by name.
func (r *Registry) List() []*action.Invoker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*action.Invoker, 0, len(r.invokers))
	for _, inv := range r.invokers {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Len returns the number of registered invokers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.invokers)
}

// Load builds a registry from every descriptor of an action set.
// An empty set yields an empty registry. A malformed descriptor aborts loading.
func Load(ctx context.Context, source ports.ActionSource, actionSetID string, compiler *action.Compiler, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	descs, err := source.ListActions(ctx, actionSetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions for set %q: %w", actionSetID, err)
	}
	logger.Info("Actions fetched", "action_set", actionSetID, "count", len(descs))

	reg := NewRegistry()
	for i, d := range descs {
		inv, err := compiler.Compile(d)
		if err != nil {
			return nil, fmt.Errorf("action %d of set %q: %w", i, actionSetID, err)
		}
		reg.Register(inv)
	}

	if reg.Len() == 0 {
		logger.Warn("No actions available", "action_set", actionSetID)
	}
	return reg, nil
}
