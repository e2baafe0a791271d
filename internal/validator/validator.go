// Package validator statically checks procedures and action descriptors.
package validator

import (
	"fmt"
	"strings"

	"github.com/dewakar-s/procflow/internal/runtime"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/schema"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding. Step is -1 for findings not tied to a step.
type Issue struct {
	Severity Severity `json:"severity"`
	Step     int      `json:"step"`
	Subject  string   `json:"subject,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := ""
	if i.Step >= 0 {
		loc = fmt.Sprintf("step %d: ", i.Step)
	}
	if i.Subject != "" {
		loc += i.Subject + ": "
	}
	return fmt.Sprintf("[%s] %s%s", i.Severity, loc, i.Message)
}

// Report collects the issues of one validation run.
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether no error-level issue was found.
func (r *Report) OK() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Err summarizes the error-level issues, or returns nil.
func (r *Report) Err() error {
	var msgs []string
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			msgs = append(msgs, i.String())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(msgs), strings.Join(msgs, "\n- "))
}

func (r *Report) add(sev Severity, step int, subject, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Step: step, Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// Catalog resolves action names to compiled invokers.
type Catalog interface {
	Lookup(name string) (*action.Invoker, bool)
}

// ValidateProcedure checks proc on its own and, when catalog is not nil,
// against the actions it calls.
func ValidateProcedure(proc domain.Procedure, catalog Catalog) *Report {
	r := &Report{}

	if err := proc.Validate(); err != nil {
		for _, e := range flatten(err) {
			r.add(SeverityError, -1, "", "%v", e)
		}
	}

	answers := map[string]bool{}
	sawCall := false
	for i, step := range proc.Steps {
		switch step.Type {
		case domain.StepAskUser:
			answers[domain.AnswerKey(step, i)] = true
		case domain.StepAPICall:
			checkCall(r, i, step, catalog, answers, sawCall)
			sawCall = true
		case domain.StepRespondFinal:
			if i != len(proc.Steps)-1 {
				r.add(SeverityWarning, i, "", "steps after RESPOND_FINAL are never reached")
			}
		default:
			if step.Type != "" {
				r.add(SeverityWarning, i, "", "unknown step type %q terminates the session", step.Type)
			}
		}
	}

	if n := len(proc.Steps); n > 0 && proc.Steps[n-1].Type != domain.StepRespondFinal {
		r.add(SeverityWarning, n-1, "", "procedure does not end with RESPOND_FINAL and will terminate without a response")
	}
	return r
}

func checkCall(r *Report, i int, step domain.Step, catalog Catalog, answers map[string]bool, sawCall bool) {
	for _, ref := range runtime.Tokens(step.Parameters) {
		name := runtime.AnswerName(ref.Token)
		switch {
		case name == "" && strings.HasPrefix(ref.Token, "last_action_output") && !sawCall:
			r.add(SeverityWarning, i, ref.Param, "<%s> is used before any action has run", ref.Token)
		case name != "" && !answers[name]:
			r.add(SeverityWarning, i, ref.Param, "<%s> does not match an earlier answer and falls back to the last user input", ref.Token)
		}
	}

	if catalog == nil || step.Action == "" {
		return
	}
	inv, ok := catalog.Lookup(step.Action)
	if !ok {
		inv, ok = catalog.Lookup(action.SanitizeName(step.Action))
	}
	if !ok {
		r.add(SeverityWarning, i, step.Action, "action is not registered; the step will record a failed result")
		return
	}

	for _, f := range inv.Schema() {
		if _, ok := step.Parameters[f.Name]; !ok {
			r.add(SeverityError, i, step.Action, "required parameter %q is not bound", f.Name)
		}
	}
	for name := range step.Parameters {
		if _, ok := inv.Schema().Kind(name); !ok {
			r.add(SeverityWarning, i, step.Action, "parameter %q is not declared by the action and will be dropped", name)
		}
	}
}

// ValidateActions checks descriptors before they are compiled.
func ValidateActions(descs []domain.ActionDescriptor) *Report {
	r := &Report{}
	seen := map[string]bool{}

	for _, d := range descs {
		subject := d.Name
		if err := d.Validate(); err != nil {
			r.add(SeverityError, -1, subject, "%v", err)
			continue
		}
		name := action.SanitizeName(d.Name)
		if seen[name] {
			r.add(SeverityError, -1, subject, "duplicate action name")
		}
		seen[name] = true

		method := strings.ToUpper(strings.TrimSpace(d.HTTPMethod))
		if method != "" && !action.SupportedMethod(method) {
			r.add(SeverityWarning, -1, subject, "HTTP method %s is not supported; every call will fail", method)
		}

		declared := map[string]bool{}
		for _, p := range d.Parameters {
			declared[p.Name] = true
			if !schema.Known(p.Type) {
				r.add(SeverityWarning, -1, subject, "parameter %q has unknown type %q and is treated as a string", p.Name, p.Type)
			}
		}
		for _, ph := range action.ParseTemplate(d.URL).Placeholders() {
			if !declared[ph] {
				r.add(SeverityWarning, -1, subject, "URL placeholder {%s} is not a declared parameter and will stay unfilled", ph)
			}
		}
	}
	return r
}

func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
