package domain

// OutcomeStatus is the surface status returned by start and resume.
type OutcomeStatus string

// OutcomeRunning means the session stopped between steps. Start with the same
// procedure, or a resume retried with its token, drives it on.
const (
	OutcomePaused  OutcomeStatus = "paused"
	OutcomeDone    OutcomeStatus = "done"
	OutcomeRunning OutcomeStatus = "running"
)

// Outcome is what a host sees after driving a session as far as it can go.
type Outcome struct {
	SessionID     string        `json:"session_id"`
	Status        OutcomeStatus `json:"status"`
	Question      string        `json:"question,omitempty"`
	FinalResponse string        `json:"final_response,omitempty"`
	StepIndex     int           `json:"step_index"`

	// Replayed is set when a resume token had already been applied.
	Replayed bool `json:"replayed,omitempty"`
}

// OutcomeOf derives the surface outcome from a snapshot.
func OutcomeOf(s *State) Outcome {
	o := Outcome{SessionID: s.SessionID, StepIndex: s.StepIndex}
	if s.Status == StatusSuspended {
		o.Status = OutcomePaused
		o.Question = s.PendingQuestion
		return o
	}
	if !s.Finished() {
		o.Status = OutcomeRunning
		return o
	}
	o.Status = OutcomeDone
	if s.FinalResponse != nil {
		o.FinalResponse = *s.FinalResponse
	}
	return o
}
