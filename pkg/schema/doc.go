// Package schema provides the closed kind registry used to validate action arguments.
//
// Action descriptors declare parameters as plain {name, type} pairs. The type tag is
// resolved against a fixed registry of kinds (string, integer, float, boolean and
// their aliases); an unrecognized tag resolves to the string kind. No type expression
// is ever evaluated dynamically.
//
// Basic usage:
//
//	s := schema.Compile([]domain.ParameterSpec{
//	    {Name: "order_id", Type: "integer"},
//	    {Name: "note", Type: "uuid"}, // unknown, treated as string
//	})
//
//	args, err := s.Apply(map[string]any{"order_id": "7", "note": "x"})
//	// args["order_id"] == int64(7)
//
// Apply returns an *AggregateError listing every field that is missing or cannot
// be coerced to its kind.
package schema
