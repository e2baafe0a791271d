// Package action compiles declarative HTTP action descriptors into Invokers.
//
// A Compiler turns a domain.ActionDescriptor into an *Invoker that validates its
// arguments against the closed kind registry of package schema, renders the URL
// template, and performs exactly one HTTP request. Every failure inside an
// invocation (unsupported method, invalid arguments, transport error, non-2xx
// status, unparsable body) is reported as a failed domain.ActionResult and never
// returned as a Go error.
//
// URL templates use {name} placeholders and {{name}} escapes. An escape renders the
// literal text "{name}" and is never substituted:
//
//	https://api.example.com/orders/{order_id}?note={{fixed}}
//
// GET requests send the non-path arguments as query parameters. POST, PUT and
// DELETE send the entire validated argument set, path arguments included, as a
// JSON body.
package action
