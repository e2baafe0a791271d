/*
Package domain contains the core domain models of the procflow engine.

It defines the fundamental entities of a procedure run: the ordered Steps of a
Procedure, the ActionDescriptor that declares an HTTP capability, and the State
snapshot that a session carries across suspensions. This package is kept pure and
free of I/O or persistence concerns.

# Key Entities

  - Step: One unit of a procedure (ASK_USER, API_CALL or RESPOND_FINAL).
  - Procedure: The fixed, ordered sequence of steps a session walks through.
  - State: The durable snapshot of a session (cursor, answers, last results).
  - ActionDescriptor: A declarative HTTP endpoint (method, URL template, headers, parameters).
  - ActionResult: The structured outcome of an action invocation.
*/
package domain
