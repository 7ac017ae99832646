package agent

import (
	"strings"
	"testing"

	"github.com/dileep-u-k/tool-orchestrator/internal/llm"
	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
)

func TestPolicyContextDerivation(t *testing.T) {
	conv := NewConversation("Add 1 and 2, then say hello")
	conv.AddToolCall(tip.CallRequest{Name: "add_numbers", Args: map[string]any{"a": 1.0, "b": 2.0}})
	conv.AddToolResult(tip.CallResult{Tool: "add_numbers", Status: tip.StatusSuccess, Value: 3.0})
	conv.AddToolCall(tip.CallRequest{Name: "say_hello"})
	conv.AddToolResult(tip.CallResult{Tool: "say_hello", Status: tip.StatusError, ErrorDetail: "timeout"})

	ctx := conv.PolicyContext()
	if ctx.Utterance != "Add 1 and 2, then say hello" {
		t.Errorf("Utterance = %q", ctx.Utterance)
	}
	if ctx.Calls["add_numbers"] != 1 || ctx.Calls["say_hello"] != 1 {
		t.Errorf("Calls = %v", ctx.Calls)
	}
	if !ctx.Succeeded["add_numbers"] {
		t.Error("add_numbers success not recorded")
	}
	if ctx.Succeeded["say_hello"] {
		t.Error("failed say_hello marked as succeeded")
	}
	if ctx.LastTool != "say_hello" {
		t.Errorf("LastTool = %q, want say_hello", ctx.LastTool)
	}
}

func TestAddToolCallReturnsEntryID(t *testing.T) {
	conv := NewConversation("Add 1 and 2")
	first := conv.AddToolCall(tip.CallRequest{Name: "add_numbers", Args: map[string]any{"a": 1.0, "b": 2.0}})
	second := conv.AddToolCall(tip.CallRequest{Name: "say_hello"})

	if first == "" || second == "" {
		t.Fatal("entry identifiers must be non-empty")
	}
	if first == second {
		t.Fatalf("entry identifiers must be distinct, both are %q", first)
	}

	entries := conv.Entries()
	if entries[1].ID != first || entries[2].ID != second {
		t.Error("returned identifiers do not match the stored entries")
	}
}

func TestMessagesRendering(t *testing.T) {
	conv := NewConversation("Add 1 and 2")
	conv.AddToolCall(tip.CallRequest{Name: "add_numbers", Args: map[string]any{"a": 1.0, "b": 2.0}})
	conv.AddToolResult(tip.CallResult{Tool: "add_numbers", Status: tip.StatusSuccess, Value: 3.0})
	conv.AddNote("note to the model")
	conv.AddModel(`{"final":"3"}`)

	msgs := conv.Messages("SYSTEM")
	if len(msgs) != 6 {
		t.Fatalf("got %d messages, want 6", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem || msgs[0].Content != "SYSTEM" {
		t.Errorf("msgs[0] = %+v, want the system prompt", msgs[0])
	}
	if msgs[1].Role != llm.RoleUser {
		t.Errorf("msgs[1].Role = %q, want user", msgs[1].Role)
	}
	if msgs[2].Role != llm.RoleAssistant || !strings.Contains(msgs[2].Content, `"tool":"add_numbers"`) {
		t.Errorf("msgs[2] = %+v, want the replayed tool call", msgs[2])
	}
	if msgs[3].Role != llm.RoleUser || !strings.HasPrefix(msgs[3].Content, "Observation:") {
		t.Errorf("msgs[3] = %+v, want an observation", msgs[3])
	}
	if msgs[4].Role != llm.RoleUser || msgs[4].Content != "note to the model" {
		t.Errorf("msgs[4] = %+v, want the note as user role", msgs[4])
	}
	if msgs[5].Role != llm.RoleAssistant {
		t.Errorf("msgs[5].Role = %q, want assistant", msgs[5].Role)
	}
}

func TestBuildSystemPromptListsTools(t *testing.T) {
	specs := newLoopFixture(t)
	catalog, err := specs.client.ListTools(t.Context())
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	prompt := BuildSystemPrompt(catalog)
	for _, want := range []string{"add_numbers", "say_hello", "Only use tool names"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
