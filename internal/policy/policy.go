// Package policy decides, deterministically, whether the agent loop may stop
// or must keep going. Rules are an ordered table evaluated top to bottom
// against the conversation-derived context; the first matching rule forces a
// specific tool call regardless of the model's stated intent to finalize.
package policy

import "strings"

// ActionKind tags the policy's decision.
type ActionKind string

const (
	ActionNone       ActionKind = "none"
	ActionForcedCall ActionKind = "forced_tool_call"
)

// Action is the policy verdict for one turn.
type Action struct {
	Kind ActionKind
	// Tool names the forced tool when Kind is ActionForcedCall.
	Tool string
	// Rule records which rule fired, for logging.
	Rule string
}

// None is the verdict that honors the model's own termination decision.
func None() Action {
	return Action{Kind: ActionNone}
}

// Context is derived each turn from the conversation state; it is computed,
// never stored.
type Context struct {
	// Utterance is the original user request, verbatim.
	Utterance string
	// Calls counts invocations per tool, successful or not.
	Calls map[string]int
	// Succeeded marks tools that have returned at least one success.
	Succeeded map[string]bool
	// LastTool is the most recently executed tool, or "".
	LastTool string
}

// Rule is one entry in the ordered table: when the predicate holds, the named
// tool must be called before the loop may finish.
type Rule struct {
	Name string
	When func(Context) bool
	Tool string
}

// Engine evaluates an ordered rule table. First match wins; no match means
// the model's termination decision stands.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over the given rules, evaluated in order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// NextRequiredAction returns the forced follow-up call, if any rule demands
// one for the current context.
func (e *Engine) NextRequiredAction(ctx Context) Action {
	for _, r := range e.rules {
		if r.When(ctx) {
			return Action{Kind: ActionForcedCall, Tool: r.Tool, Rule: r.Name}
		}
	}
	return None()
}

// GreetingRule forces the greeting tool whenever the user asked to be greeted
// and the greeting has not yet succeeded. The keyword check mirrors how the
// user actually phrases it ("say hello") plus the tool's own name, which
// models love to echo back.
func GreetingRule(tool string) Rule {
	return Rule{
		Name: "greeting_requested",
		Tool: tool,
		When: func(ctx Context) bool {
			lower := strings.ToLower(ctx.Utterance)
			if !strings.Contains(lower, "say hello") && !strings.Contains(lower, tool) {
				return false
			}
			return !ctx.Succeeded[tool]
		},
	}
}
