package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is one entry of the closed kind registry.
type Kind interface {
	// Name returns the canonical name of the kind (e.g., "string", "integer").
	Name() string
	// Coerce converts value into the kind's Go representation or reports why it cannot.
	Coerce(value any) (any, error)
}

// StringKind accepts strings and renders scalar values as text.
type StringKind struct{}

func (k *StringKind) Name() string { return "string" }

func (k *StringKind) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case json.Number:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("expected string, got %T", value)
	}
}

// IntegerKind accepts integers, whole floats and numeric strings.
type IntegerKind struct{}

func (k *IntegerKind) Name() string { return "integer" }

func (k *IntegerKind) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		return unsignedInteger(uint64(v))
	case uint64:
		return unsignedInteger(v)
	case float32:
		return wholeFloat(float64(v))
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		return wholeFloat(v)
	case json.Number:
		return parseInteger(v.String())
	case string:
		return parseInteger(v)
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}
}

// 2^63 is exact in float64; int64 holds [-2^63, 2^63).
const int64Bound = float64(1 << 63)

func wholeFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("expected integer, got float (not a whole number)")
	}
	if f >= int64Bound || f < -int64Bound {
		return nil, fmt.Errorf("integer %g out of range", f)
	}
	return int64(f), nil
}

func unsignedInteger(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d out of range", u)
	}
	return int64(u), nil
}

func parseInteger(s string) (any, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return wholeFloat(f)
	}
	return nil, fmt.Errorf("expected integer, got %q", s)
}

// FloatKind accepts any number or numeric string.
type FloatKind struct{}

func (k *FloatKind) Name() string { return "float" }

func (k *FloatKind) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("expected float, got %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("expected float, got %T", value)
	}
}

// BooleanKind accepts booleans and their common textual forms.
type BooleanKind struct{}

func (k *BooleanKind) Name() string { return "boolean" }

func (k *BooleanKind) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "1", "yes", "y", "on":
			return true, nil
		case "false", "f", "0", "no", "n", "off":
			return false, nil
		}
		return nil, fmt.Errorf("expected boolean, got %q", v)
	case int, int64:
		if n := fmt.Sprint(v); n == "0" || n == "1" {
			return n == "1", nil
		}
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	}
	return nil, fmt.Errorf("expected boolean, got %v", value)
}

var (
	stringKind  Kind = &StringKind{}
	integerKind Kind = &IntegerKind{}
	floatKind   Kind = &FloatKind{}
	booleanKind Kind = &BooleanKind{}
)

// String returns the string kind.
func String() Kind { return stringKind }

// Integer returns the integer kind.
func Integer() Kind { return integerKind }

// Float returns the float kind.
func Float() Kind { return floatKind }

// Boolean returns the boolean kind.
func Boolean() Kind { return booleanKind }

// registry maps every accepted type tag (lower-cased) to its kind.
var registry = map[string]Kind{
	"str":     stringKind,
	"string":  stringKind,
	"int":     integerKind,
	"integer": integerKind,
	"float":   floatKind,
	"double":  floatKind,
	"number":  floatKind,
	"bool":    booleanKind,
	"boolean": booleanKind,
}

// Lookup resolves a declared type tag to its kind.
// Unknown tags resolve to the string kind; Lookup never fails.
func Lookup(tag string) Kind {
	if k, ok := registry[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return k
	}
	return stringKind
}

// Known reports whether tag is registered, without the string fallback.
func Known(tag string) bool {
	_, ok := registry[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}
