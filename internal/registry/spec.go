// Package registry defines the static catalog of tools the orchestrator can
// invoke. A ToolSpec is the single source of truth for a tool's name, its
// description, and its parameter schema, including the alias table the
// canonicalizer uses to repair argument names emitted by the model.
package registry

import (
	"fmt"
	"strings"
)

// Parameter types understood by the TIP validator. These mirror the JSON
// Schema primitive types that LLM providers use for function parameters.
const (
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeString  = "string"
	TypeBoolean = "boolean"
)

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	// Name is the canonical parameter name the tool's handler expects.
	Name string `json:"name"`
	// Type is one of the primitive type constants above.
	Type string `json:"type"`
	// Required marks parameters that must be present after canonicalization.
	Required bool `json:"required"`
	// Aliases lists alternate names the model is known to emit for this
	// parameter (e.g. "number1" for "a"). The canonicalizer renames them.
	Aliases []string `json:"aliases,omitempty"`
	// Description explains the parameter to the model.
	Description string `json:"description,omitempty"`
}

// ToolSpec describes one callable tool. Specs are immutable after the
// registry is frozen; parameter order is preserved because the canonicalizer's
// positional backfill depends on it.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"parameters"`
	// Returns is a human-readable result type used only for catalog rendering.
	Returns string `json:"returns,omitempty"`
}

// Param looks up a parameter by its canonical name.
func (s ToolSpec) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// RequiredParams returns the required parameters in declaration order.
func (s ToolSpec) RequiredParams() []ParamSpec {
	var out []ParamSpec
	for _, p := range s.Params {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

// Signature renders the tool as a compact call signature for the model
// catalog, e.g. "add_numbers(a: number, b: number) -> float".
func (s ToolSpec) Signature() string {
	parts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	sig := fmt.Sprintf("%s(%s)", s.Name, strings.Join(parts, ", "))
	if s.Returns != "" {
		sig += " -> " + s.Returns
	}
	return sig
}

// JSONSchema renders the parameter list as a JSON-Schema-style object, the
// shape LLM providers expect for function parameters.
func (s ToolSpec) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Params))
	var required []string
	for _, p := range s.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// RenderCatalog produces the plain-text tool enumeration that is injected into
// the model's system instruction.
func RenderCatalog(specs []ToolSpec) string {
	var b strings.Builder
	b.WriteString("\nTools:\n")
	for _, s := range specs {
		fmt.Fprintf(&b, "- %s: %s — %s\n", s.Name, s.Signature(), s.Description)
	}
	return b.String()
}
