package tip

import (
	"encoding/json"
	"math"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// Validation is the tagged result of checking an argument set against a
// ToolSpec. A failed validation carries the machine-readable detail that goes
// on the wire (missing_field:<name> or type_mismatch:<name>).
type Validation struct {
	OK     bool
	Detail string
}

func valid() Validation                { return Validation{OK: true} }
func invalid(detail string) Validation { return Validation{Detail: detail} }

// ValidateArgs checks that every required parameter is present and that every
// recognized argument is type-compatible with its declared parameter type.
// Unrecognized keys are ignored; rejecting them is the canonicalizer's job,
// not the protocol's. No implicit coercion happens here.
func ValidateArgs(spec registry.ToolSpec, args map[string]any) Validation {
	if args == nil {
		args = map[string]any{}
	}

	for _, p := range spec.Params {
		if !p.Required {
			continue
		}
		if _, present := args[p.Name]; !present {
			return invalid(MissingFieldDetail(p.Name))
		}
	}

	for _, p := range spec.Params {
		value, present := args[p.Name]
		if !present {
			continue
		}
		if !typeCompatible(value, p.Type) {
			return invalid(TypeMismatchDetail(p.Name))
		}
	}

	return valid()
}

func typeCompatible(value any, expected string) bool {
	switch expected {
	case registry.TypeString:
		_, ok := value.(string)
		return ok
	case registry.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case registry.TypeNumber:
		return isNumber(value)
	case registry.TypeInteger:
		return isInteger(value)
	}
	return false
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		// JSON decodes every number to float64; accept integral values.
		return v == math.Trunc(v)
	case float32:
		return float64(v) == math.Trunc(float64(v))
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
