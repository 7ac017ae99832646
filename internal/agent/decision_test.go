package agent

import (
	"reflect"
	"testing"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Decision
		wantErr bool
	}{
		{
			name: "plain tool call",
			raw:  `{"tool":"add_numbers","args":{"a":12.5,"b":7.25}}`,
			want: Decision{Kind: DecisionToolCall, Tool: "add_numbers", Args: map[string]any{"a": 12.5, "b": 7.25}},
		},
		{
			name: "plain final",
			raw:  `{"final":"The sum is 19.75."}`,
			want: Decision{Kind: DecisionFinal, Final: "The sum is 19.75."},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"tool\":\"say_hello\",\"args\":{}}\n```",
			want: Decision{Kind: DecisionToolCall, Tool: "say_hello", Args: map[string]any{}},
		},
		{
			name: "leading prose",
			raw:  `Sure! Here is my decision: {"final":"done"}`,
			want: Decision{Kind: DecisionFinal, Final: "done"},
		},
		{
			name: "braces inside final string",
			raw:  `{"final":"the object {a: 1} is fine"}`,
			want: Decision{Kind: DecisionFinal, Final: "the object {a: 1} is fine"},
		},
		{
			name: "args as list of fragments merged",
			raw:  `{"tool":"add_numbers","args":[{"a":1},{"b":2}]}`,
			want: Decision{Kind: DecisionToolCall, Tool: "add_numbers", Args: map[string]any{"a": 1.0, "b": 2.0}},
		},
		{
			name: "missing args defaults to empty object",
			raw:  `{"tool":"say_hello"}`,
			want: Decision{Kind: DecisionToolCall, Tool: "say_hello", Args: map[string]any{}},
		},
		{
			name:    "no json at all",
			raw:     "I think the answer is 42.",
			wantErr: true,
		},
		{
			name:    "both final and tool",
			raw:     `{"tool":"say_hello","final":"hi"}`,
			wantErr: true,
		},
		{
			name:    "final with extra keys",
			raw:     `{"final":"hi","confidence":0.9}`,
			wantErr: true,
		},
		{
			name:    "empty tool name",
			raw:     `{"tool":"","args":{}}`,
			wantErr: true,
		},
		{
			name:    "args as scalar",
			raw:     `{"tool":"add_numbers","args":5}`,
			wantErr: true,
		},
		{
			name:    "neither final nor tool",
			raw:     `{"thought":"hmm"}`,
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			raw:     `{"tool":"say_hello","args":{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecision(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind != tt.want.Kind || got.Tool != tt.want.Tool || got.Final != tt.want.Final {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if tt.want.Args != nil && !reflect.DeepEqual(got.Args, tt.want.Args) {
				t.Errorf("Args = %v, want %v", got.Args, tt.want.Args)
			}
		})
	}
}

func TestParseDecisionTakesFirstObject(t *testing.T) {
	raw := `{"tool":"add_numbers","args":{"a":1,"b":2}} {"final":"ignored"}`
	got, err := ParseDecision(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != DecisionToolCall || got.Tool != "add_numbers" {
		t.Errorf("got %+v, want the first tool call", got)
	}
}
