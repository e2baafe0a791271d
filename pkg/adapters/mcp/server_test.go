package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dewakar-s/procflow/internal/runtime"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/adapters/memory"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/registry"
	"github.com/dewakar-s/procflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orders":[{"id":7}]}`))
	}))
	t.Cleanup(api.Close)

	inv, err := action.NewCompiler().Compile(domain.ActionDescriptor{
		Name:        "fetch_orders",
		Description: "List orders for an email",
		HTTPMethod:  "GET",
		URL:         api.URL + "/orders",
		Parameters:  []domain.ParameterSpec{{Name: "email_id", Type: "str"}},
	})
	require.NoError(t, err)
	reg := registry.NewRegistry()
	reg.Register(inv)

	ctrl := session.NewController(session.NewManager(memory.NewStore()), runtime.NewEngine(reg))
	return NewServer(ctrl, "test", WithCatalog(reg))
}

func call(t *testing.T, s *Server, method string, params any) string {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)
	resp := s.mcpServer.HandleMessage(context.Background(), msg)
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func initialize(t *testing.T, s *Server) {
	call(t, s, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]any{"name": "test", "version": "1"},
		"capabilities":    map[string]any{},
	})
}

func TestServer_ListTools(t *testing.T) {
	s := newTestServer(t)
	initialize(t, s)

	out := call(t, s, "tools/list", map[string]any{})
	for _, name := range []string{"start_procedure", "resume_procedure", "get_session", "fetch_orders"} {
		assert.Contains(t, out, `"name":"`+name+`"`)
	}
}

func TestServer_StartAndResume(t *testing.T) {
	s := newTestServer(t)
	initialize(t, s)

	out := call(t, s, "tools/call", map[string]any{
		"name": "start_procedure",
		"arguments": map[string]any{
			"session_id": "mcp-1",
			"procedure": `steps:
  - {type: ASK_USER, action: ask_email, message: "Email?"}
  - {type: API_CALL, action: fetch_orders, parameters: {email_id: "<ask_email>"}}
  - {type: RESPOND_FINAL, message: "Done"}`,
		},
	})
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "Email?")

	out = call(t, s, "tools/call", map[string]any{
		"name":      "resume_procedure",
		"arguments": map[string]any{"session_id": "mcp-1", "answer": "a@b.c"},
	})
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "Done")

	out = call(t, s, "tools/call", map[string]any{
		"name":      "get_session",
		"arguments": map[string]any{"session_id": "mcp-1"},
	})
	assert.Contains(t, out, "a@b.c")

	out = call(t, s, "tools/call", map[string]any{
		"name":      "get_session",
		"arguments": map[string]any{"session_id": "missing"},
	})
	assert.Contains(t, out, "session not found")
}

func TestServer_ActionToolAndResource(t *testing.T) {
	s := newTestServer(t)
	initialize(t, s)

	out := call(t, s, "tools/call", map[string]any{
		"name":      "fetch_orders",
		"arguments": map[string]any{"email_id": "a@b.c"},
	})
	assert.Contains(t, out, "success")

	out = call(t, s, "resources/read", map[string]any{"uri": ActionsURI})
	assert.Contains(t, out, "fetch_orders")
	assert.Contains(t, out, "email_id")
}
