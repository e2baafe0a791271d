package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionNotSuspended is returned when a resume targets a session that is not awaiting input.
var ErrSessionNotSuspended = errors.New("session is not awaiting input")

// ErrSessionExists is returned when a start reuses a session ID bound to a different procedure.
var ErrSessionExists = errors.New("session already exists with a different procedure")

// ConfigurationError reports a malformed procedure or action descriptor.
// It is always surfaced before any step executes.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// RoutingError describes a step whose type the driver does not recognize.
// It is never returned by the driver; the session terminates and the error is reported to hooks and logs.
type RoutingError struct {
	Index int
	Type  StepType
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("unrecognized step type %q at index %d", e.Type, e.Index)
}

// SuspensionProtocolError rejects a resume that does not target a suspended session.
type SuspensionProtocolError struct {
	SessionID string
	Err       error
}

func (e *SuspensionProtocolError) Error() string {
	return fmt.Sprintf("cannot resume session %q: %v", e.SessionID, e.Err)
}

func (e *SuspensionProtocolError) Unwrap() error { return e.Err }
