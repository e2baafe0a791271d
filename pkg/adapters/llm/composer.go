// Package llm phrases final responses with a language model.
//
// The configured RESPOND_FINAL message is always rendered first and used as the
// fallback; the model only rewrites it using the facts gathered by the session.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultSystemPrompt frames the model as a support agent closing a conversation.
const DefaultSystemPrompt = `You are a customer support assistant closing a conversation.
Rewrite the draft reply so it is friendly and concise. Use only facts present in the
session data. Never invent order numbers, amounts or dates. Reply with the message only.`

// Composer implements ports.Composer.
type Composer struct {
	model       llms.Model
	system      string
	temperature float64
}

// Option configures the Composer.
type Option func(*Composer)

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(p string) Option {
	return func(c *Composer) { c.system = p }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Composer) { c.temperature = t }
}

// New wraps an existing model.
func New(model llms.Model, opts ...Option) *Composer {
	c := &Composer{
		model:       model,
		system:      DefaultSystemPrompt,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewOpenAI connects to an OpenAI-compatible endpoint. An empty baseURL uses the default.
func NewOpenAI(token, model, baseURL string, opts ...Option) (*Composer, error) {
	oaOpts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(model),
	}
	if baseURL != "" {
		oaOpts = append(oaOpts, openai.WithBaseURL(baseURL))
	}
	m, err := openai.New(oaOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return New(m, opts...), nil
}

// Compose asks the model to rewrite fallback. Errors and empty replies leave
// the choice of fallback to the caller.
func (c *Composer) Compose(ctx context.Context, state *domain.State, fallback string) (string, error) {
	facts, err := json.MarshalIndent(sessionFacts(state), "", "  ")
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, c.system),
		llms.TextParts(llms.ChatMessageTypeHuman,
			fmt.Sprintf("Session data:\n%s\n\nDraft reply:\n%s", facts, fallback)),
	}

	resp, err := c.model.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("llm generate failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func sessionFacts(s *domain.State) map[string]any {
	facts := map[string]any{"answers": s.Answers}
	if s.LastActionOutput != nil {
		facts["last_action"] = s.LastActionOutput
	}
	return facts
}
