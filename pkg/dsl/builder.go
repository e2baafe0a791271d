package dsl

import (
	"github.com/dewakar-s/procflow/pkg/domain"
)

// Builder accumulates steps in order.
type Builder struct {
	id    string
	steps []domain.Step
}

// ParamOption sets one step parameter.
type ParamOption func(map[string]any)

// Param binds name to value. Values written as <token> are back-references
// resolved when the step runs.
func Param(name string, value any) ParamOption {
	return func(m map[string]any) {
		m[name] = value
	}
}

// New creates a builder for a procedure with the given ID.
func New(id string) *Builder {
	return &Builder{id: id}
}

// Ask appends an ASK_USER step. name keys the answer for later back-references.
func (b *Builder) Ask(name, question string) *Builder {
	b.steps = append(b.steps, domain.Step{
		Type:    domain.StepAskUser,
		Action:  name,
		Message: question,
	})
	return b
}

// Call appends an API_CALL step.
func (b *Builder) Call(action string, params ...ParamOption) *Builder {
	step := domain.Step{Type: domain.StepAPICall, Action: action}
	if len(params) > 0 {
		step.Parameters = make(map[string]any, len(params))
		for _, p := range params {
			p(step.Parameters)
		}
	}
	b.steps = append(b.steps, step)
	return b
}

// Respond appends a RESPOND_FINAL step.
func (b *Builder) Respond(message string) *Builder {
	b.steps = append(b.steps, domain.Step{Type: domain.StepRespondFinal, Message: message})
	return b
}

// Steps returns a copy of the steps added so far.
func (b *Builder) Steps() []domain.Step {
	return append([]domain.Step(nil), b.steps...)
}

// Build validates and returns the procedure.
func (b *Builder) Build() (domain.Procedure, error) {
	p := domain.Procedure{ID: b.id, Steps: b.Steps()}
	if err := p.Validate(); err != nil {
		return domain.Procedure{}, err
	}
	return p, nil
}

// MustBuild is like Build but panics on an invalid procedure.
func (b *Builder) MustBuild() domain.Procedure {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
