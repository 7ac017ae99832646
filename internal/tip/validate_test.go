package tip

import (
	"testing"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

func adderSpec() registry.ToolSpec {
	return registry.ToolSpec{
		Name: "add_numbers",
		Params: []registry.ParamSpec{
			{Name: "a", Type: registry.TypeNumber, Required: true},
			{Name: "b", Type: registry.TypeNumber, Required: true},
			{Name: "precision", Type: registry.TypeInteger},
		},
	}
}

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]any
		wantOK     bool
		wantDetail string
	}{
		{
			name:   "all required present",
			args:   map[string]any{"a": 1.5, "b": 2.0},
			wantOK: true,
		},
		{
			name:       "missing one required",
			args:       map[string]any{"a": 1.5},
			wantDetail: "missing_field:b",
		},
		{
			name:       "missing all reports first in spec order",
			args:       map[string]any{},
			wantDetail: "missing_field:a",
		},
		{
			name:       "nil args",
			args:       nil,
			wantDetail: "missing_field:a",
		},
		{
			name:       "string where number expected",
			args:       map[string]any{"a": "12.5", "b": 2.0},
			wantDetail: "type_mismatch:a",
		},
		{
			name:   "integral float accepted for integer",
			args:   map[string]any{"a": 1.0, "b": 2.0, "precision": 3.0},
			wantOK: true,
		},
		{
			name:       "fractional float rejected for integer",
			args:       map[string]any{"a": 1.0, "b": 2.0, "precision": 3.5},
			wantDetail: "type_mismatch:precision",
		},
		{
			name:   "unknown keys ignored",
			args:   map[string]any{"a": 1.0, "b": 2.0, "mystery": "ignored"},
			wantOK: true,
		},
		{
			name:   "int accepted as number",
			args:   map[string]any{"a": 1, "b": 2},
			wantOK: true,
		},
	}

	spec := adderSpec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateArgs(spec, tt.args)
			if v.OK != tt.wantOK {
				t.Fatalf("OK = %v, want %v (detail %q)", v.OK, tt.wantOK, v.Detail)
			}
			if v.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", v.Detail, tt.wantDetail)
			}
		})
	}
}

func TestValidateArgsTypes(t *testing.T) {
	spec := registry.ToolSpec{
		Name: "typed",
		Params: []registry.ParamSpec{
			{Name: "s", Type: registry.TypeString, Required: true},
			{Name: "flag", Type: registry.TypeBoolean, Required: true},
		},
	}

	if v := ValidateArgs(spec, map[string]any{"s": "hi", "flag": true}); !v.OK {
		t.Errorf("valid typed args rejected: %s", v.Detail)
	}
	if v := ValidateArgs(spec, map[string]any{"s": 7, "flag": true}); v.Detail != "type_mismatch:s" {
		t.Errorf("Detail = %q, want type_mismatch:s", v.Detail)
	}
	if v := ValidateArgs(spec, map[string]any{"s": "hi", "flag": "yes"}); v.Detail != "type_mismatch:flag" {
		t.Errorf("Detail = %q, want type_mismatch:flag", v.Detail)
	}
}
