package compiler_test

import (
	"errors"
	"testing"

	"github.com/dewakar-s/procflow/internal/compiler"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const procedureJSON = `{
    "steps": [
        {"type": "ASK_USER", "action": "ask_email", "message": "Please provide your email address."},
        {"type": "API_CALL", "action": "fetch_orders", "parameters": {"email_id": "<user_provided_email>"}},
        {"type": "RESPOND_FINAL", "message": "Done"}
    ]
}`

func TestParseProcedure_JSON(t *testing.T) {
	proc, err := compiler.NewParser().ParseProcedure([]byte(procedureJSON))
	require.NoError(t, err)
	require.Len(t, proc.Steps, 3)
	assert.Equal(t, domain.StepAskUser, proc.Steps[0].Type)
	assert.Equal(t, "fetch_orders", proc.Steps[1].Action)
	assert.Equal(t, "<user_provided_email>", proc.Steps[1].Parameters["email_id"])
	assert.NoError(t, proc.Validate())
}

func TestParseProcedure_YAMLList(t *testing.T) {
	doc := `
- type: API_CALL
  action: cancel_order
  parameters:
    order_id: 7
- type: RESPOND_FINAL
  message: bye
`
	proc, err := compiler.NewParser().ParseProcedure([]byte(doc))
	require.NoError(t, err)
	require.Len(t, proc.Steps, 2)
	assert.Equal(t, 7, proc.Steps[0].Parameters["order_id"])
}

func TestParseProcedure_Malformed(t *testing.T) {
	_, err := compiler.NewParser().ParseProcedure([]byte(`"just a string"`))
	var cfgErr *domain.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = compiler.NewParser().ParseProcedure([]byte("steps: [unclosed"))
	assert.True(t, errors.As(err, &cfgErr))
}

func TestParseActionSets(t *testing.T) {
	doc := `
action_sets:
  orders:
    - name: fetch_orders
      httpMethod: GET
      url: https://api.example.com/orders
      headers:
        X-Api-Key: secret
      parameters:
        - {name: email_id, type: str}
actions:
  - action_set_id: orders
    name: cancel_order
    httpMethod: POST
    url: https://api.example.com/orders/{order_id}/cancel
    headers:
      - {key: X-Api-Key, value: secret}
    parameters:
      - {name: order_id, type: integer}
`
	sets, err := compiler.NewParser().ParseActionSets([]byte(doc))
	require.NoError(t, err)
	require.Len(t, sets["orders"], 2)

	fetch := sets["orders"][0]
	assert.Equal(t, "fetch_orders", fetch.Name)
	assert.Equal(t, []domain.Header{{Key: "X-Api-Key", Value: "secret"}}, fetch.Headers)
	assert.Equal(t, []domain.ParameterSpec{{Name: "email_id", Type: "str"}}, fetch.Parameters)

	cancel := sets["orders"][1]
	assert.Equal(t, "POST", cancel.HTTPMethod)
	assert.Equal(t, []domain.Header{{Key: "X-Api-Key", Value: "secret"}}, cancel.Headers)
}

func TestParseActionSets_Invalid(t *testing.T) {
	_, err := compiler.NewParser().ParseActionSets([]byte("actions:\n  - name: no_url\n"))
	var cfgErr *domain.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
