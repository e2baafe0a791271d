package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_OutputAndInput(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("  alice@example.com \n"), out,
		WithTextHandlerRenderer(func(s string) (string, error) { return "** " + s + " **", nil }))
	ctx := context.Background()

	require.NoError(t, h.Output(ctx, Prompt{Kind: PromptQuestion, Text: "Your <i>email</i>?"}))
	assert.Contains(t, out.String(), "** Your email? **")

	req, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", req.Answer)

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputHonoursCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Input(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestJSONHandler(t *testing.T) {
	in := strings.NewReader("\"7\"\n{\"answer\":\"yes\",\"token\":\"t-1\"}\nplain text\n")
	out := &bytes.Buffer{}
	h := NewJSONHandler(in, out)
	ctx := context.Background()

	require.NoError(t, h.Output(ctx, Prompt{Kind: PromptQuestion, SessionID: "s1", StepIndex: 2, Text: "Which order?"}))
	var p map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Equal(t, "question", p["type"])
	assert.Equal(t, "s1", p["session_id"])
	assert.Equal(t, float64(2), p["step_index"])

	r1, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7", r1.Answer)

	r2, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "yes", r2.Answer)
	assert.Equal(t, "t-1", r2.Token)

	r3, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plain text", r3.Answer)

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestAutoRenderer_NonTerminal(t *testing.T) {
	assert.Nil(t, AutoRenderer(&bytes.Buffer{}))
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
