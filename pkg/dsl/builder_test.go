package dsl

import (
	"errors"
	"testing"

	"github.com/dewakar-s/procflow/pkg/domain"
)

func TestBuilder_CancelOrderFlow(t *testing.T) {
	proc, err := New("cancel-order").
		Ask("ask_email", "What is your email?").
		Call("fetch_orders", Param("email_id", "<ask_email>")).
		Ask("ask_order", "Which order?").
		Call("cancel_order", Param("order_id", "<ask_order>"), Param("reason", "customer request")).
		Respond("Done").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if proc.ID != "cancel-order" {
		t.Errorf("ID = %q", proc.ID)
	}
	if len(proc.Steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(proc.Steps))
	}

	want := []domain.StepType{domain.StepAskUser, domain.StepAPICall, domain.StepAskUser, domain.StepAPICall, domain.StepRespondFinal}
	for i, st := range want {
		if proc.Steps[i].Type != st {
			t.Errorf("step %d type = %s, want %s", i, proc.Steps[i].Type, st)
		}
	}

	cancel := proc.Steps[3]
	if cancel.Parameters["order_id"] != "<ask_order>" || cancel.Parameters["reason"] != "customer request" {
		t.Errorf("unexpected parameters: %v", cancel.Parameters)
	}
	if proc.Steps[0].Parameters != nil {
		t.Errorf("ask step should have no parameters")
	}
}

func TestBuilder_Invalid(t *testing.T) {
	_, err := New("empty").Build()
	var cfg *domain.ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	if _, err := New("bad").Call("").Build(); err == nil {
		t.Error("expected error for API_CALL without action")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustBuild should panic")
		}
	}()
	New("bad").Ask("x", "").MustBuild()
}

func TestBuilder_StepsIsCopy(t *testing.T) {
	b := New("p").Respond("hi")
	steps := b.Steps()
	steps[0].Message = "changed"
	if b.Steps()[0].Message != "hi" {
		t.Error("Steps() must return a copy")
	}
}
