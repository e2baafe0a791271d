package runner

import (
	"context"

	"github.com/dewakar-s/procflow/pkg/session"
)

// PromptKind distinguishes questions from the closing message.
type PromptKind string

const (
	PromptQuestion PromptKind = "question"
	PromptFinal    PromptKind = "final"
)

// Prompt is one message shown to the user.
type Prompt struct {
	Kind      PromptKind `json:"type"`
	SessionID string     `json:"session_id"`
	StepIndex int        `json:"step_index"`
	Text      string     `json:"text"`
}

// IOHandler defines the strategy for interacting with the user.
type IOHandler interface {
	// Output presents a prompt.
	Output(ctx context.Context, p Prompt) error

	// Input reads the reply to the last question.
	Input(ctx context.Context) (session.ResumeRequest, error)

	// SystemOutput presents a meta-message (status, errors) distinct from content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms text before it is written (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)
