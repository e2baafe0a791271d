package ports

import (
	"context"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// ActionSource supplies action descriptors by action set.
// An empty slice means the set has no actions and is not an error.
type ActionSource interface {
	ListActions(ctx context.Context, actionSetID string) ([]domain.ActionDescriptor, error)
}

// Invoker performs one action and always reports the outcome as a result.
type Invoker interface {
	Name() string
	Invoke(ctx context.Context, args map[string]any) domain.ActionResult
}

// ActionResolver maps an action name, as written in a step, to its Invoker.
type ActionResolver interface {
	Resolve(name string) (Invoker, bool)
}

// Composer produces the final response of a procedure from the accumulated state.
// fallback is the interpolated RESPOND_FINAL message.
type Composer interface {
	Compose(ctx context.Context, state *domain.State, fallback string) (string, error)
}
