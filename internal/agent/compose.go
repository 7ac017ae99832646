package agent

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dileep-u-k/tool-orchestrator/internal/tools"
)

// ComposeSumAndGreeting is the default finalizer. It assembles the answer
// from the recorded tool results instead of trusting the model to transcribe
// them, so a run with a successful add_numbers call always reports the
// arithmetic result the tool actually returned.
func ComposeSumAndGreeting(calls []ToolCallRecord, modelFinal string) string {
	var (
		sum      float64
		haveSum  bool
		greeting string
	)

	for _, c := range calls {
		if !c.Result.OK() {
			continue
		}
		switch c.Tool {
		case tools.AddNumbersName:
			if f, ok := asFloat(c.Result.Value); ok {
				sum, haveSum = f, true
			}
		case tools.SayHelloName:
			if s, ok := c.Result.Value.(string); ok && s != "" {
				greeting = s
			}
		}
	}

	switch {
	case haveSum && greeting != "":
		return fmt.Sprintf("The sum is %s. %s", formatNumber(sum), greeting)
	case haveSum:
		return fmt.Sprintf("The sum is %s.", formatNumber(sum))
	case modelFinal != "":
		return modelFinal
	case greeting != "":
		return greeting
	}
	return "I could not complete the requested steps."
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
