package procflow_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/dewakar-s/procflow"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/dsl"
)

// ExampleNew drives a two-question procedure the way a chat host would:
// start once, then resume with each answer.
func ExampleNew() {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "cancelled"}`)
	}))
	defer api.Close()

	ctx := context.Background()
	eng, err := procflow.New(ctx, procflow.WithActions(domain.ActionDescriptor{
		Name:       "cancel_order",
		HTTPMethod: "POST",
		URL:        api.URL + "/orders/{order_id}/cancel",
		Parameters: []domain.ParameterSpec{{Name: "order_id", Type: "integer"}},
	}))
	if err != nil {
		log.Fatal(err)
	}

	proc := dsl.New("cancel").
		Ask("order_id", "Which order?").
		Call("cancel_order", dsl.Param("order_id", "<answer:order_id>")).
		Respond("Order {{ .answers.order_id }} is {{ .last_action_output.data.status }}.").
		MustBuild()

	out, err := eng.Start(ctx, "demo", proc)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Question)

	out, err = eng.Resume(ctx, "demo", "42")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.FinalResponse, out.StepIndex)

	// Output:
	// Which order?
	// Order 42 is cancelled. 3
}
