package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient drives Google's Gemini models. The response MIME type is
// pinned to application/json so the decision parser receives a bare object
// rather than fenced markdown.
type GeminiClient struct {
	model *genai.GenerativeModel
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a client for the named Gemini model.
func NewGeminiClient(apiKey, modelID string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.ResponseMIMEType = "application/json"
	return &GeminiClient{model: model}, nil
}

// Complete performs one blocking request. The conversation is split into
// chat history plus the trailing message, the shape the genai SDK expects;
// the system message rides on the model's SystemInstruction.
func (c *GeminiClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini request requires at least one message")
	}

	// One client serves concurrent requests, so the shared model value is
	// never written. The system instruction goes on a per-call copy.
	model := *c.model
	history := messages
	if history[0].Role == RoleSystem {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(history[0].Content)},
		}
		history = history[1:]
	}
	if len(history) == 0 {
		return "", errors.New("gemini request requires a non-system message")
	}

	chat := model.StartChat()
	chat.History = toGeminiContentHistory(history[:len(history)-1])

	last := history[len(history)-1]
	resp, err := chat.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return flattenGeminiResponse(resp)
}

func toGeminiContentHistory(messages []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return out
}

func flattenGeminiResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini response contained no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}
