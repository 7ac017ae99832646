// Package llm contains the clients for the model runtimes the orchestrator
// can drive. The model boundary is deliberately narrow: the agent loop sends
// a conversation and gets back one raw text completion, which it parses into
// a structured decision itself. Clients know nothing about tools beyond the
// catalog text embedded in the system message.
package llm

import "context"

// Role represents the originator of a message in a conversation.
// Using a defined type and constants prevents typos and improves code clarity.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is the universal interface every model runtime client implements.
// Complete performs one blocking request and returns the model's raw text
// output for the turn. Implementations must honor ctx cancellation and
// deadlines; a deadline expiry must surface as an error wrapping
// context.DeadlineExceeded so the loop can classify it as a model timeout.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
