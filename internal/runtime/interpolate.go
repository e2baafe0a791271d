package runtime

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// Interpolator renders a step message against the session data.
type Interpolator func(ctx context.Context, text string, data map[string]any) (string, error)

// DefaultInterpolator renders text with text/template.
// Text without "{{" is returned unchanged.
func DefaultInterpolator(_ context.Context, text string, data map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("message").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// templateData exposes the accumulated session values to message templates.
func templateData(s *domain.State) map[string]any {
	data := map[string]any{
		"session_id": s.SessionID,
		"step_index": s.StepIndex,
		"answers":    s.Answers,
	}
	if s.LastUserInput != nil {
		data["last_user_input"] = *s.LastUserInput
	}
	if out := s.LastActionOutput; out != nil {
		data["last_action_output"] = map[string]any{
			"status":  string(out.Status),
			"message": out.Message,
			"data":    out.Data,
		}
	}
	return data
}
