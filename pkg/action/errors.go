package action

import "fmt"

// FailureKind classifies an ActionInvocationError.
type FailureKind string

const (
	FailureMethod    FailureKind = "method"
	FailureArguments FailureKind = "arguments"
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
)

// ActionInvocationError describes why an invocation failed.
// Invokers never return it; its text becomes the message of a failed ActionResult.
type ActionInvocationError struct {
	Action     string
	Kind       FailureKind
	StatusCode int
	Status     string
	URL        string
	Err        error
}

func (e *ActionInvocationError) Error() string {
	switch e.Kind {
	case FailureStatus:
		return fmt.Sprintf("%d %s for url: %s", e.StatusCode, e.Status, e.URL)
	case FailureMethod, FailureArguments:
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s error calling %s: %v", e.Kind, e.URL, e.Err)
	}
}

func (e *ActionInvocationError) Unwrap() error { return e.Err }
