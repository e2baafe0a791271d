package domain

import "fmt"

// StepType is the closed set of step kinds a procedure may contain.
type StepType string

const (
	StepAskUser      StepType = "ASK_USER"
	StepAPICall      StepType = "API_CALL"
	StepRespondFinal StepType = "RESPOND_FINAL"
)

// Known reports whether t is one of the recognized step types.
func (t StepType) Known() bool {
	switch t {
	case StepAskUser, StepAPICall, StepRespondFinal:
		return true
	}
	return false
}

// Step is a single unit of work inside a Procedure.
type Step struct {
	Type StepType `json:"type" yaml:"type" mapstructure:"type"`

	// Action names the action to invoke for API_CALL steps.
	// ASK_USER steps may also carry a name, which keys the answer in State.Answers.
	Action string `json:"action,omitempty" yaml:"action,omitempty" mapstructure:"action"`

	// Message is the question (ASK_USER) or the final text template (RESPOND_FINAL).
	Message string `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`

	// Parameters maps argument names to literals or back-reference tokens ("<last_user_input>").
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// Validate checks the field requirements of the step's type.
// Steps with an unknown type pass validation; the driver terminates on them.
func (s Step) Validate(index int) error {
	switch s.Type {
	case StepAPICall:
		if s.Action == "" {
			return &ConfigurationError{Field: fmt.Sprintf("steps[%d].action", index), Reason: "required for API_CALL"}
		}
	case StepAskUser, StepRespondFinal:
		if s.Message == "" {
			return &ConfigurationError{Field: fmt.Sprintf("steps[%d].message", index), Reason: fmt.Sprintf("required for %s", s.Type)}
		}
	case "":
		return &ConfigurationError{Field: fmt.Sprintf("steps[%d].type", index), Reason: "missing step type"}
	}
	return nil
}
