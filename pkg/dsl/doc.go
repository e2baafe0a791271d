/*
Package dsl builds procedures in Go instead of JSON or YAML.

	proc, err := dsl.New("cancel-order").
		Ask("ask_email", "What is your email?").
		Call("fetch_orders", dsl.Param("email_id", "<ask_email>")).
		Ask("ask_order", "Which order should be cancelled?").
		Call("cancel_order", dsl.Param("order_id", "<ask_order>")).
		Respond("Order {{ .answers.ask_order }} is cancelled.").
		Build()

Build validates the result, so a built procedure can be started directly.
*/
package dsl
