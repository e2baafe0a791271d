package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dewakar-s/procflow/pkg/adapters/llm"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply    string
	err      error
	messages []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func state() *domain.State {
	s := domain.NewState("s1", domain.Procedure{Steps: []domain.Step{{Type: domain.StepRespondFinal, Message: "x"}}})
	s.Answers["ask_order"] = "42"
	s.LastActionOutput = &domain.ActionResult{Status: domain.ActionSuccess, Message: "ok", Data: map[string]any{"refund": "12.50"}}
	return s
}

func TestComposer_Compose(t *testing.T) {
	model := &fakeModel{reply: "  Your order 42 is cancelled; 12.50 will be refunded.  "}
	c := llm.New(model, llm.WithSystemPrompt("be brief"))

	got, err := c.Compose(context.Background(), state(), "Order 42 cancelled.")
	require.NoError(t, err)
	assert.Equal(t, "Your order 42 is cancelled; 12.50 will be refunded.", got)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	human := model.messages[1].Parts[0].(llms.TextContent).Text
	assert.True(t, strings.Contains(human, `"ask_order": "42"`))
	assert.Contains(t, human, "Order 42 cancelled.")
}

func TestComposer_Error(t *testing.T) {
	c := llm.New(&fakeModel{err: errors.New("quota")})
	_, err := c.Compose(context.Background(), state(), "fallback")
	assert.ErrorContains(t, err, "quota")
}
