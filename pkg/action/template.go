package action

import (
	"fmt"
	"strings"
)

type segmentKind int

const (
	segLiteral segmentKind = iota
	segPlaceholder
)

type segment struct {
	kind segmentKind
	text string // literal text, or the placeholder name
}

// Template is a parsed URL template.
type Template struct {
	raw      string
	segments []segment
	names    []string
}

// MissingPlaceholderError is returned by a strict render when a placeholder has no value.
type MissingPlaceholderError struct {
	Name string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("missing value for placeholder {%s}", e.Name)
}

// ParseTemplate tokenizes raw into literal text and placeholders.
// "{{x}}" becomes the literal "{x}"; "{x}" with x matching \w+ becomes a placeholder.
// Anything else, including unbalanced braces, stays literal.
func ParseTemplate(raw string) *Template {
	t := &Template{raw: raw}
	var lit strings.Builder
	seen := make(map[string]bool)

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{kind: segLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); {
		if strings.HasPrefix(raw[i:], "{{") {
			if end := strings.Index(raw[i+2:], "}}"); end >= 0 {
				lit.WriteString("{" + raw[i+2:i+2+end] + "}")
				i += end + 4
				continue
			}
		}
		if raw[i] == '{' {
			if n := wordLen(raw[i+1:]); n > 0 && i+1+n < len(raw) && raw[i+1+n] == '}' {
				flush()
				name := raw[i+1 : i+1+n]
				t.segments = append(t.segments, segment{kind: segPlaceholder, text: name})
				if !seen[name] {
					seen[name] = true
					t.names = append(t.names, name)
				}
				i += n + 2
				continue
			}
		}
		lit.WriteByte(raw[i])
		i++
	}
	flush()
	return t
}

// wordLen returns the length of the leading run of [A-Za-z0-9_].
func wordLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			n++
			continue
		}
		break
	}
	return n
}

// Placeholders returns the distinct placeholder names in order of appearance.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.names...)
}

// Has reports whether name is a placeholder of the template.
func (t *Template) Has(name string) bool {
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}

// Render substitutes every placeholder, failing on the first one without a value.
func (t *Template) Render(values map[string]string) (string, error) {
	var b strings.Builder
	for _, s := range t.segments {
		if s.kind == segLiteral {
			b.WriteString(s.text)
			continue
		}
		v, ok := values[s.text]
		if !ok {
			return "", &MissingPlaceholderError{Name: s.text}
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// RenderPartial substitutes the placeholders that have values and leaves the rest as "{name}".
func (t *Template) RenderPartial(values map[string]string) string {
	var b strings.Builder
	for _, s := range t.segments {
		if s.kind == segLiteral {
			b.WriteString(s.text)
			continue
		}
		if v, ok := values[s.text]; ok {
			b.WriteString(v)
			continue
		}
		b.WriteString("{" + s.text + "}")
	}
	return b.String()
}

// String returns the raw template.
func (t *Template) String() string { return t.raw }
