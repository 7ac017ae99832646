package agent

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dileep-u-k/tool-orchestrator/internal/llm"
	"github.com/dileep-u-k/tool-orchestrator/internal/policy"
	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
)

// EntryKind identifies one turn type inside a conversation.
type EntryKind string

const (
	EntryUser       EntryKind = "user"
	EntryModel      EntryKind = "model"
	EntryToolCall   EntryKind = "tool_call"
	EntryToolResult EntryKind = "tool_result"
	EntryNote       EntryKind = "note"
)

// Entry is one turn in the conversation. Exactly one of Text, Call, or
// Result is set, depending on Kind.
type Entry struct {
	ID     string
	Kind   EntryKind
	Text   string
	Call   *tip.CallRequest
	Result *tip.CallResult
}

// Conversation is the ordered, monotonically growing record of one agent
// loop invocation. It is owned exclusively by the loop and discarded when
// the loop terminates; nothing here persists across requests.
type Conversation struct {
	utterance string
	entries   []Entry
}

// NewConversation seeds a conversation with the user's utterance.
func NewConversation(utterance string) *Conversation {
	c := &Conversation{utterance: utterance}
	c.append(EntryUser, utterance, nil, nil)
	return c
}

// Utterance returns the original user request, verbatim.
func (c *Conversation) Utterance() string {
	return c.utterance
}

// Entries returns the turn sequence. Callers must not mutate it.
func (c *Conversation) Entries() []Entry {
	return c.entries
}

// AddModel records the model's raw output for a turn.
func (c *Conversation) AddModel(raw string) {
	c.append(EntryModel, raw, nil, nil)
}

// AddNote records a corrective or forcing instruction injected by the loop.
func (c *Conversation) AddNote(text string) {
	c.append(EntryNote, text, nil, nil)
}

// AddToolCall records a validated tool-call request and returns the entry's
// identifier so the call can be traced through records and log lines.
func (c *Conversation) AddToolCall(req tip.CallRequest) string {
	return c.append(EntryToolCall, "", &req, nil)
}

// AddToolResult records a tool outcome.
func (c *Conversation) AddToolResult(res tip.CallResult) {
	c.append(EntryToolResult, "", nil, &res)
}

func (c *Conversation) append(kind EntryKind, text string, call *tip.CallRequest, result *tip.CallResult) string {
	id := uuid.NewString()
	c.entries = append(c.entries, Entry{
		ID:     id,
		Kind:   kind,
		Text:   text,
		Call:   call,
		Result: result,
	})
	return id
}

// PolicyContext derives the orchestration context for this turn. It is
// computed fresh every time; the policy never sees stored state.
func (c *Conversation) PolicyContext() policy.Context {
	ctx := policy.Context{
		Utterance: c.utterance,
		Calls:     make(map[string]int),
		Succeeded: make(map[string]bool),
	}
	for _, e := range c.entries {
		switch e.Kind {
		case EntryToolCall:
			ctx.Calls[e.Call.Name]++
			ctx.LastTool = e.Call.Name
		case EntryToolResult:
			if e.Result.OK() {
				ctx.Succeeded[e.Result.Tool] = true
			}
		}
	}
	return ctx
}

// Messages renders the conversation for the model. Tool calls replay as the
// assistant's own JSON decisions; tool results and loop notes go back as
// user-role observations, the shape a JSON-protocol model expects.
func (c *Conversation) Messages(systemPrompt string) []llm.Message {
	msgs := make([]llm.Message, 0, len(c.entries)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})

	for _, e := range c.entries {
		switch e.Kind {
		case EntryUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: e.Text})
		case EntryModel:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: e.Text})
		case EntryToolCall:
			msgs = append(msgs, llm.Message{
				Role:    llm.RoleAssistant,
				Content: renderToolCall(*e.Call),
			})
		case EntryToolResult:
			msgs = append(msgs, llm.Message{
				Role:    llm.RoleUser,
				Content: renderObservation(*e.Result),
			})
		case EntryNote:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: e.Text})
		}
	}
	return msgs
}

func renderToolCall(req tip.CallRequest) string {
	return fmt.Sprintf(`{"tool":%q,"args":%s}`, req.Name, mustJSON(req.Args))
}

func renderObservation(res tip.CallResult) string {
	if res.OK() {
		return fmt.Sprintf("Observation: %v", res.Value)
	}
	return fmt.Sprintf("Observation: tool %s failed (%s)", res.Tool, res.ErrorDetail)
}
