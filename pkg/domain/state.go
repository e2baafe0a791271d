package domain

import (
	"fmt"
	"time"
)

// SessionStatus defines where a session is in its lifecycle.
type SessionStatus string

const (
	StatusRunning    SessionStatus = "running"    // Driver may self-transition
	StatusSuspended  SessionStatus = "suspended"  // Waiting for an answer to PendingQuestion
	StatusDone       SessionStatus = "done"       // RESPOND_FINAL reached
	StatusTerminated SessionStatus = "terminated" // Ran past the last step or hit an unknown step type
)

// maxAppliedTokens bounds the resume tokens remembered per session.
const maxAppliedTokens = 32

// State is the durable snapshot of one session.
// It carries the steps themselves so a restored snapshot fully determines the next transition.
type State struct {
	SessionID string `json:"session_id"`

	// StepIndex is the 0-based cursor into Steps.
	StepIndex int    `json:"step_index"`
	Steps     []Step `json:"steps"`

	// Fingerprint identifies the procedure the session was started with.
	Fingerprint string `json:"fingerprint,omitempty"`

	Status          SessionStatus `json:"status"`
	PendingQuestion string        `json:"pending_question,omitempty"`

	LastUserInput    *string       `json:"last_user_input,omitempty"`
	LastActionOutput *ActionResult `json:"last_action_output,omitempty"`
	FinalResponse    *string       `json:"final_response,omitempty"`

	// Answers holds every ASK_USER answer keyed by the step's action name (or "step_<n>").
	Answers map[string]string `json:"answers,omitempty"`

	// AppliedTokens remembers recent resume tokens so re-delivered resumes are no-ops.
	AppliedTokens []string `json:"applied_tokens,omitempty"`

	// History records every completed step as "<index>:<type>".
	History []string `json:"history,omitempty"`

	// Sealed carries an encrypted copy of the real state when a store middleware is used.
	Sealed string `json:"sealed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a fresh snapshot at step 0 of the procedure.
func NewState(sessionID string, p Procedure) *State {
	now := time.Now().UTC()
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	return &State{
		SessionID:   sessionID,
		Steps:       steps,
		Fingerprint: p.Fingerprint(),
		Status:      StatusRunning,
		Answers:     make(map[string]string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CurrentStep returns the step under the cursor.
func (s *State) CurrentStep() (Step, bool) {
	if s.StepIndex < 0 || s.StepIndex >= len(s.Steps) {
		return Step{}, false
	}
	return s.Steps[s.StepIndex], true
}

// Advance moves the cursor forward by exactly one completed step.
func (s *State) Advance() {
	if s.StepIndex >= len(s.Steps) {
		return
	}
	step := s.Steps[s.StepIndex]
	s.History = append(s.History, fmt.Sprintf("%d:%s", s.StepIndex, step.Type))
	s.StepIndex++
	s.UpdatedAt = time.Now().UTC()
}

// Finished reports whether no further transitions are permitted.
func (s *State) Finished() bool {
	return s.Status == StatusDone || s.Status == StatusTerminated
}

// HasToken reports whether a resume token was already applied.
func (s *State) HasToken(token string) bool {
	if token == "" {
		return false
	}
	for _, t := range s.AppliedTokens {
		if t == token {
			return true
		}
	}
	return false
}

// RememberToken records a resume token, evicting the oldest past the bound.
func (s *State) RememberToken(token string) {
	if token == "" {
		return
	}
	s.AppliedTokens = append(s.AppliedTokens, token)
	if over := len(s.AppliedTokens) - maxAppliedTokens; over > 0 {
		s.AppliedTokens = s.AppliedTokens[over:]
	}
}

// AnswerKey returns the key under which the answer for step index is stored.
func AnswerKey(step Step, index int) string {
	if step.Action != "" {
		return step.Action
	}
	return fmt.Sprintf("step_%d", index)
}

// Clone returns a deep copy so stores and callers never share mutable maps or slices.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Steps = make([]Step, len(s.Steps))
	for i, st := range s.Steps {
		c.Steps[i] = st
		if st.Parameters != nil {
			c.Steps[i].Parameters = make(map[string]any, len(st.Parameters))
			for k, v := range st.Parameters {
				c.Steps[i].Parameters[k] = v
			}
		}
	}
	if s.LastUserInput != nil {
		v := *s.LastUserInput
		c.LastUserInput = &v
	}
	if s.LastActionOutput != nil {
		v := *s.LastActionOutput
		c.LastActionOutput = &v
	}
	if s.FinalResponse != nil {
		v := *s.FinalResponse
		c.FinalResponse = &v
	}
	c.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.AppliedTokens = append([]string(nil), s.AppliedTokens...)
	c.History = append([]string(nil), s.History...)
	return &c
}
