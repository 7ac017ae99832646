package agent

import (
	"testing"

	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
	"github.com/dileep-u-k/tool-orchestrator/internal/tools"
)

func okCall(tool string, value any) ToolCallRecord {
	return ToolCallRecord{
		Tool:   tool,
		Result: tip.CallResult{Tool: tool, Status: tip.StatusSuccess, Value: value},
	}
}

func failedCall(tool string) ToolCallRecord {
	return ToolCallRecord{
		Tool:   tool,
		Result: tip.CallResult{Tool: tool, Status: tip.StatusError, ErrorDetail: "execution_failed:boom"},
	}
}

func TestComposeSumAndGreeting(t *testing.T) {
	tests := []struct {
		name       string
		calls      []ToolCallRecord
		modelFinal string
		want       string
	}{
		{
			name:  "sum and greeting compose",
			calls: []ToolCallRecord{okCall(tools.AddNumbersName, 19.75), okCall(tools.SayHelloName, "Hello from REST API!")},
			want:  "The sum is 19.75. Hello from REST API!",
		},
		{
			name:       "sum alone overrides model final",
			calls:      []ToolCallRecord{okCall(tools.AddNumbersName, 150.0)},
			modelFinal: "the answer is one hundred fifty-ish",
			want:       "The sum is 150.",
		},
		{
			name:       "greeting alone defers to model final",
			calls:      []ToolCallRecord{okCall(tools.SayHelloName, "Hello from REST API!")},
			modelFinal: "Done greeting.",
			want:       "Done greeting.",
		},
		{
			name:  "greeting alone without model final",
			calls: []ToolCallRecord{okCall(tools.SayHelloName, "Hello from REST API!")},
			want:  "Hello from REST API!",
		},
		{
			name:       "failed sum ignored",
			calls:      []ToolCallRecord{failedCall(tools.AddNumbersName)},
			modelFinal: "could not add",
			want:       "could not add",
		},
		{
			name:       "no calls passes final through",
			modelFinal: "just chatting",
			want:       "just chatting",
		},
		{
			name: "nothing at all",
			want: "I could not complete the requested steps.",
		},
		{
			name:  "last successful sum wins",
			calls: []ToolCallRecord{okCall(tools.AddNumbersName, 3.0), okCall(tools.AddNumbersName, 7.0), okCall(tools.SayHelloName, "Hello from REST API!")},
			want:  "The sum is 7. Hello from REST API!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeSumAndGreeting(tt.calls, tt.modelFinal); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
