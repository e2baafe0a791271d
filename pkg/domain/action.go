package domain

import (
	"fmt"
	"strings"
)

// Header is a static request header declared by an action.
type Header struct {
	Key   string `json:"key" yaml:"key" mapstructure:"key"`
	Value string `json:"value" yaml:"value" mapstructure:"value"`
}

// ParameterSpec declares one named argument and its kind ("string", "integer", "float", "boolean").
type ParameterSpec struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Type string `json:"type" yaml:"type" mapstructure:"type"`
}

// ActionDescriptor is the declarative definition of an HTTP-backed action.
// It is treated as an immutable value once loaded.
type ActionDescriptor struct {
	ID          string          `json:"_id,omitempty" yaml:"_id,omitempty" mapstructure:"_id"`
	Name        string          `json:"name" yaml:"name" mapstructure:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	HTTPMethod  string          `json:"httpMethod" yaml:"httpMethod" mapstructure:"httpMethod"`
	URL         string          `json:"url" yaml:"url" mapstructure:"url"`
	Headers     []Header        `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`
	Parameters  []ParameterSpec `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// Validate checks the fields an action cannot be compiled without.
// The HTTP method is checked at invocation time so unsupported methods fail as results.
func (d ActionDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ConfigurationError{Field: "action.name", Reason: "required"}
	}
	if strings.TrimSpace(d.URL) == "" {
		return &ConfigurationError{Field: fmt.Sprintf("action %q url", d.Name), Reason: "required"}
	}
	for i, p := range d.Parameters {
		if p.Name == "" {
			return &ConfigurationError{Field: fmt.Sprintf("action %q parameters[%d].name", d.Name, i), Reason: "required"}
		}
	}
	return nil
}

// ActionStatus is the outcome of an action invocation.
type ActionStatus string

const (
	ActionSuccess ActionStatus = "success"
	ActionFailed  ActionStatus = "failed"
)

// ActionResult is the structured value produced by every action invocation.
type ActionResult struct {
	Status  ActionStatus `json:"status"`
	Message string       `json:"message"`
	Data    any          `json:"data"`
}

// Failed builds a failed result with empty data.
func Failed(message string) ActionResult {
	return ActionResult{Status: ActionFailed, Message: message, Data: []any{}}
}

// Succeeded builds a success result.
func Succeeded(message string, data any) ActionResult {
	return ActionResult{Status: ActionSuccess, Message: message, Data: data}
}

// OK reports whether the invocation succeeded.
func (r ActionResult) OK() bool { return r.Status == ActionSuccess }
