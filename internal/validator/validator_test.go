package validator

import (
	"strings"
	"testing"

	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	inv, err := action.NewCompiler().Compile(domain.ActionDescriptor{
		Name:       "fetch_orders",
		URL:        "https://api.example.com/orders/{email_id}",
		Parameters: []domain.ParameterSpec{{Name: "email_id", Type: "str"}},
	})
	require.NoError(t, err)
	reg.Register(inv)
	return reg
}

func messages(r *Report) string {
	var out []string
	for _, i := range r.Issues {
		out = append(out, i.String())
	}
	return strings.Join(out, "\n")
}

func TestValidateProcedure_Clean(t *testing.T) {
	proc := domain.Procedure{Steps: []domain.Step{
		{Type: domain.StepAskUser, Action: "ask_email", Message: "Email?"},
		{Type: domain.StepAPICall, Action: "fetch_orders", Parameters: map[string]any{"email_id": "<ask_email>"}},
		{Type: domain.StepRespondFinal, Message: "Done"},
	}}
	r := ValidateProcedure(proc, catalog(t))
	assert.True(t, r.OK())
	assert.Empty(t, r.Issues, messages(r))
	assert.NoError(t, r.Err())
}

func TestValidateProcedure_Findings(t *testing.T) {
	proc := domain.Procedure{Steps: []domain.Step{
		{Type: domain.StepAPICall, Action: "fetch_orders", Parameters: map[string]any{"note": "<last_action_output.id>"}},
		{Type: domain.StepAPICall, Action: "missing_action", Parameters: map[string]any{"x": "<ask_nothing>"}},
		{Type: "GOTO", Message: "?"},
		{Type: domain.StepAskUser, Action: "ask_more", Message: "More?"},
	}}
	r := ValidateProcedure(proc, catalog(t))
	out := messages(r)

	assert.False(t, r.OK())
	assert.Contains(t, out, `required parameter "email_id" is not bound`)
	assert.Contains(t, out, `parameter "note" is not declared`)
	assert.Contains(t, out, "used before any action has run")
	assert.Contains(t, out, "missing_action: action is not registered")
	assert.Contains(t, out, "falls back to the last user input")
	assert.Contains(t, out, `unknown step type "GOTO"`)
	assert.Contains(t, out, "does not end with RESPOND_FINAL")
	assert.Error(t, r.Err())
}

func TestValidateProcedure_Structural(t *testing.T) {
	r := ValidateProcedure(domain.Procedure{}, nil)
	assert.False(t, r.OK())

	r = ValidateProcedure(domain.Procedure{Steps: []domain.Step{
		{Type: domain.StepAPICall},
		{Type: domain.StepRespondFinal},
	}}, nil)
	assert.False(t, r.OK())
	assert.GreaterOrEqual(t, len(r.Issues), 2)
}

func TestValidateActions(t *testing.T) {
	r := ValidateActions([]domain.ActionDescriptor{
		{Name: "a", URL: "https://x/{id}/{other}", HTTPMethod: "PATCH", Parameters: []domain.ParameterSpec{{Name: "id", Type: "uuid"}}},
		{Name: "a", URL: "https://x"},
		{Name: "no_url"},
	})
	out := messages(r)

	assert.Contains(t, out, "PATCH is not supported")
	assert.Contains(t, out, `unknown type "uuid"`)
	assert.Contains(t, out, "{other} is not a declared parameter")
	assert.Contains(t, out, "duplicate action name")
	assert.False(t, r.OK())
}
