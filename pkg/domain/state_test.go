package domain_test

import (
	"fmt"
	"testing"

	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSteps() domain.Procedure {
	return domain.Procedure{Steps: []domain.Step{
		{Type: domain.StepAskUser, Action: "ask_email", Message: "email?"},
		{Type: domain.StepRespondFinal, Message: "bye"},
	}}
}

func TestState_AdvanceNeverExceedsStepCount(t *testing.T) {
	s := domain.NewState("s1", twoSteps())
	for i := 0; i < 5; i++ {
		s.Advance()
	}
	assert.Equal(t, 2, s.StepIndex)
	assert.Equal(t, []string{"0:ASK_USER", "1:RESPOND_FINAL"}, s.History)

	_, ok := s.CurrentStep()
	assert.False(t, ok)
}

func TestState_Tokens(t *testing.T) {
	s := domain.NewState("s1", twoSteps())
	assert.False(t, s.HasToken(""))

	s.RememberToken("")
	assert.Empty(t, s.AppliedTokens)

	for i := 0; i < 40; i++ {
		s.RememberToken(fmt.Sprintf("t%d", i))
	}
	assert.Len(t, s.AppliedTokens, 32)
	assert.False(t, s.HasToken("t0"), "oldest tokens are evicted")
	assert.True(t, s.HasToken("t39"))
}

func TestState_CloneIsDeep(t *testing.T) {
	p := domain.Procedure{Steps: []domain.Step{
		{Type: domain.StepAPICall, Action: "a", Parameters: map[string]any{"k": "v"}},
	}}
	s := domain.NewState("s1", p)
	in := "hello"
	s.LastUserInput = &in
	s.Answers["a"] = "1"

	c := s.Clone()
	*c.LastUserInput = "changed"
	c.Answers["a"] = "2"
	c.Steps[0].Parameters["k"] = "w"

	require.NotNil(t, s.LastUserInput)
	assert.Equal(t, "hello", *s.LastUserInput)
	assert.Equal(t, "1", s.Answers["a"])
	assert.Equal(t, "v", s.Steps[0].Parameters["k"])
}

func TestOutcomeOf(t *testing.T) {
	s := domain.NewState("s1", twoSteps())
	s.Status = domain.StatusSuspended
	s.PendingQuestion = "email?"
	o := domain.OutcomeOf(s)
	assert.Equal(t, domain.OutcomePaused, o.Status)
	assert.Equal(t, "email?", o.Question)

	s.Status = domain.StatusRunning
	s.StepIndex = 1
	o = domain.OutcomeOf(s)
	assert.Equal(t, domain.OutcomeRunning, o.Status)
	assert.Empty(t, o.FinalResponse)

	final := "bye"
	s.Status = domain.StatusDone
	s.FinalResponse = &final
	o = domain.OutcomeOf(s)
	assert.Equal(t, domain.OutcomeDone, o.Status)
	assert.Equal(t, "bye", o.FinalResponse)
}

func TestAnswerKey(t *testing.T) {
	assert.Equal(t, "ask_email", domain.AnswerKey(domain.Step{Action: "ask_email"}, 0))
	assert.Equal(t, "step_3", domain.AnswerKey(domain.Step{}, 3))
}
