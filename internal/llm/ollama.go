package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// OllamaClient drives a locally hosted model through the Ollama API. JSON
// format mode is always on: the agent's decision protocol requires the model
// to emit a single JSON object per turn, and Ollama can enforce that at the
// runtime level.
type OllamaClient struct {
	client *ollama.Client
	model  string
}

// Statically verify that OllamaClient implements the Client interface.
var _ Client = (*OllamaClient)(nil)

// NewOllamaClient creates a client for the Ollama server at host
// (e.g. "http://localhost:11434") serving the named model.
func NewOllamaClient(host, model string) (*OllamaClient, error) {
	if model == "" {
		return nil, errors.New("ollama model name cannot be empty")
	}
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	// The per-request deadline comes from ctx; the http.Client carries no
	// timeout of its own so it cannot mask a caller's shorter deadline.
	return &OllamaClient{
		client: ollama.NewClient(u, &http.Client{}),
		model:  model,
	}, nil
}

// Complete performs one blocking chat request and returns the full response
// text. Streaming is disabled; the decision parser needs the whole object.
func (c *OllamaClient) Complete(ctx context.Context, messages []Message) (string, error) {
	req := &ollama.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(messages),
		Format:   json.RawMessage(`"json"`),
		Stream:   new(bool),
	}

	var text strings.Builder
	err := c.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("ollama chat timed out: %w", context.DeadlineExceeded)
		}
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	return text.String(), nil
}

func toOllamaMessages(messages []Message) []ollama.Message {
	out := make([]ollama.Message, len(messages))
	for i, m := range messages {
		out[i] = ollama.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
