package schema

import (
	"encoding/json"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// Field is one declared parameter bound to its kind.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the ordered list of declared parameters of an action.
type Schema []Field

// Compile binds each ParameterSpec to a kind from the registry.
func Compile(specs []domain.ParameterSpec) Schema {
	s := make(Schema, 0, len(specs))
	for _, p := range specs {
		s = append(s, Field{Name: p.Name, Kind: Lookup(p.Type)})
	}
	return s
}

// Names returns the declared field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Kind returns the kind of a declared field.
func (s Schema) Kind(name string) (Kind, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return nil, false
}

// Apply validates data and returns the coerced arguments.
// Every declared field is required. Undeclared keys are dropped.
func (s Schema) Apply(data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s))
	var errs []error

	for _, f := range s {
		value, exists := data[f.Name]
		if !exists || value == nil {
			errs = append(errs, &ValidationError{Key: f.Name, Reason: "required"})
			continue
		}
		coerced, err := f.Kind.Coerce(value)
		if err != nil {
			errs = append(errs, &ValidationError{Key: f.Name, Reason: err.Error(), Value: value})
			continue
		}
		out[f.Name] = coerced
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}

// MarshalJSON serializes the schema as a list of {name, type} pairs.
func (s Schema) MarshalJSON() ([]byte, error) {
	raw := make([]domain.ParameterSpec, len(s))
	for i, f := range s {
		raw[i] = domain.ParameterSpec{Name: f.Name, Type: f.Kind.Name()}
	}
	return json.Marshal(raw)
}
