package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dewakar-s/procflow/pkg/session"
)

// JSONHandler speaks JSON Lines: every prompt is one object on its own line,
// and every reply is one line that is either a JSON string, a
// {"answer": ..., "token": ...} object, or raw text.
type JSONHandler struct {
	Reader *bufio.Reader
	mu     sync.Mutex
	enc    *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader: bufio.NewReader(r),
		enc:    json.NewEncoder(w),
	}
}

func (h *JSONHandler) encode(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enc.Encode(v)
}

func (h *JSONHandler) Output(ctx context.Context, p Prompt) error {
	return h.encode(p)
}

func (h *JSONHandler) Input(ctx context.Context) (session.ResumeRequest, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return session.ResumeRequest{}, err
	}
	return ParseReply(text)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.encode(map[string]string{"type": "system", "text": msg})
}

// ParseReply decodes one reply line.
func ParseReply(line string) (session.ResumeRequest, error) {
	line = strings.TrimSpace(line)

	var req session.ResumeRequest
	switch {
	case strings.HasPrefix(line, "{"):
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			req.Answer = line
		}
	case strings.HasPrefix(line, `"`):
		if err := json.Unmarshal([]byte(line), &req.Answer); err != nil {
			req.Answer = line
		}
	default:
		req.Answer = line
	}

	clean, err := SanitizeInput(req.Answer)
	if err != nil {
		return session.ResumeRequest{}, err
	}
	req.Answer = clean
	return req, nil
}
