package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// systemPromptHeader is the controller instruction every conversation starts
// with. The rendered tool catalog is appended to it.
const systemPromptHeader = `You are a strict tool-using controller.

Output rules (MUST FOLLOW):
- Respond with EXACTLY ONE JSON object on a single line; no prose, no Markdown.
- If a tool is needed, return:
  {"tool":"<tool_name>","args":{...}}
- If you have the final answer, return:
  {"final":"<answer>"}

Planning rules:
- You may call multiple tools in sequence. After receiving an Observation, decide if another tool is needed or if you can finalize.
- Arguments must be the exact shapes. Numbers must be numeric, not strings.

Valid examples:
{"tool":"add_numbers","args":{"a":12.5,"b":7.25}}
{"tool":"say_hello","args":{}}
{"final":"The sum is 19.75. Hello from REST API!"}
`

// BuildSystemPrompt renders the full system instruction: rules, the tool
// catalog, and the closed-world reminder about tool names.
func BuildSystemPrompt(specs []registry.ToolSpec) string {
	return systemPromptHeader + registry.RenderCatalog(specs) +
		"\nOnly use tool names that appear in the Tools list above. " +
		"Never invent new tool names."
}

func formatCorrection(violation string) string {
	return fmt.Sprintf("Your previous reply violated the format: %s\nReturn ONE corrected object now.", violation)
}

func formatUnknownToolNote(name string, allowed []string) string {
	quoted := make([]string, len(allowed))
	for i, n := range allowed {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("There is no tool named %q. Choose a tool ONLY from this exact list: %s. Return exactly one minified JSON object.",
		name, strings.Join(quoted, ", "))
}

func formatMissingFieldsNote(tool string, missing []string) string {
	return fmt.Sprintf("The call to %q is missing required arguments: %s. Re-issue the tool call with every argument filled in, or finalize.",
		tool, strings.Join(missing, ", "))
}

func formatForcedCallNote(tool, rule string) string {
	return fmt.Sprintf("A required step remains (%s): the tool %q must be called before finishing.", rule, tool)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
