package runtime

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dewakar-s/procflow/pkg/domain"
)

var tokenPattern = regexp.MustCompile(`^<\s*([^<>]+?)\s*>$`)

const (
	tokenLastUserInput    = "last_user_input"
	tokenLastActionOutput = "last_action_output"
	tokenAnswerPrefix     = "answer:"
)

// binding records how one back-reference token was resolved.
type binding struct {
	Param    string
	Token    string
	Fallback bool
}

// bindParameters resolves back-reference tokens in a step's parameters.
// Non-token values are passed through as literals.
func bindParameters(params map[string]any, s *domain.State) (map[string]any, []binding) {
	out := make(map[string]any, len(params))
	var bindings []binding
	for name, v := range params {
		resolved, b := resolveValue(v, s)
		out[name] = resolved
		for _, bb := range b {
			bb.Param = name
			bindings = append(bindings, bb)
		}
	}
	return out, bindings
}

func resolveValue(v any, s *domain.State) (any, []binding) {
	switch x := v.(type) {
	case string:
		m := tokenPattern.FindStringSubmatch(x)
		if m == nil {
			return x, nil
		}
		val, fallback := resolveToken(m[1], s)
		return val, []binding{{Token: m[1], Fallback: fallback}}
	case map[string]any:
		out := make(map[string]any, len(x))
		var all []binding
		for k, item := range x {
			r, b := resolveValue(item, s)
			out[k] = r
			all = append(all, b...)
		}
		return out, all
	case []any:
		out := make([]any, len(x))
		var all []binding
		for i, item := range x {
			r, b := resolveValue(item, s)
			out[i] = r
			all = append(all, b...)
		}
		return out, all
	default:
		return v, nil
	}
}

// resolveToken returns the value a token refers to.
// Unrecognized tokens resolve to the latest user input and report fallback=true.
func resolveToken(token string, s *domain.State) (any, bool) {
	switch {
	case token == tokenLastUserInput:
		return lastInput(s), false
	case token == tokenLastActionOutput:
		if s.LastActionOutput == nil {
			return nil, false
		}
		return s.LastActionOutput.Data, false
	case strings.HasPrefix(token, tokenLastActionOutput+"."):
		if s.LastActionOutput == nil {
			return nil, false
		}
		return lookupPath(s.LastActionOutput.Data, strings.Split(strings.TrimPrefix(token, tokenLastActionOutput+"."), ".")), false
	case strings.HasPrefix(token, tokenAnswerPrefix):
		if v, ok := s.Answers[strings.TrimPrefix(token, tokenAnswerPrefix)]; ok {
			return v, false
		}
		return nil, false
	}
	if v, ok := s.Answers[token]; ok {
		return v, false
	}
	return lastInput(s), true
}

func lastInput(s *domain.State) any {
	if s.LastUserInput == nil {
		return nil
	}
	return *s.LastUserInput
}

// lookupPath walks maps by key and slices by numeric index.
func lookupPath(v any, path []string) any {
	cur := v
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

// TokenRef is a back-reference found in step parameters.
type TokenRef struct {
	Param string
	Token string
}

// Tokens lists the back-references used in params, in parameter name order.
func Tokens(params map[string]any) []TokenRef {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var refs []TokenRef
	for _, name := range names {
		collectTokens(name, params[name], &refs)
	}
	return refs
}

func collectTokens(param string, v any, refs *[]TokenRef) {
	switch x := v.(type) {
	case string:
		if m := tokenPattern.FindStringSubmatch(x); m != nil {
			*refs = append(*refs, TokenRef{Param: param, Token: m[1]})
		}
	case map[string]any:
		for _, item := range x {
			collectTokens(param, item, refs)
		}
	case []any:
		for _, item := range x {
			collectTokens(param, item, refs)
		}
	}
}

// AnswerName returns the answer a token refers to, or "" for
// last_user_input and last_action_output references.
func AnswerName(token string) string {
	switch {
	case token == tokenLastUserInput, token == tokenLastActionOutput,
		strings.HasPrefix(token, tokenLastActionOutput+"."):
		return ""
	case strings.HasPrefix(token, tokenAnswerPrefix):
		return strings.TrimPrefix(token, tokenAnswerPrefix)
	}
	return token
}
