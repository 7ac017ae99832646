package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOpenAIAPIURL = "https://api.openai.com/v1/chat/completions"

// openAIRequest defines the top-level structure for a chat-completions call.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// openAIResponse is the structure of a successful non-streaming response.
type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIClient speaks the OpenAI chat-completions API. Because half the
// local-model ecosystem serves the same wire format, the endpoint URL is
// configurable; pointed at a local runtime it needs no API key at all.
type OpenAIClient struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	retryDelay time.Duration
}

// Statically verify that OpenAIClient implements the Client interface.
var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a configured client. An empty apiURL falls back to
// the hosted OpenAI endpoint, which then requires an API key.
func NewOpenAIClient(apiKey, apiURL, model string) (*OpenAIClient, error) {
	if model == "" {
		return nil, errors.New("openai model name cannot be empty")
	}
	if apiURL == "" {
		apiURL = defaultOpenAIAPIURL
	}
	if apiURL == defaultOpenAIAPIURL && apiKey == "" {
		return nil, errors.New("OpenAI API key cannot be empty for the hosted endpoint")
	}
	return &OpenAIClient{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retryDelay: initialRetryDelay,
	}, nil
}

// Complete performs a standard, blocking chat-completions request. JSON
// response format is requested so the model's output is a single object.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	req := openAIRequest{
		Model:          c.model,
		Messages:       toOpenAIMessages(messages),
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	respBody, err := c.doRequest(ctx, payloadBytes)
	if err != nil {
		return "", err
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse chat-completions response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat-completions response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// doRequest performs the HTTP call with retries and exponential backoff.
// Client errors (4xx) and context expiry are not retried.
func (c *OpenAIClient) doRequest(ctx context.Context, payload []byte) ([]byte, error) {
	var lastErr error
	delay := c.retryDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("chat-completions request aborted: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", i+1, maxRetries, err)
			time.Sleep(delay)
			delay *= 2
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		lastErr = fmt.Errorf("chat-completions API error (attempt %d/%d): status %d, body: %s", i+1, maxRetries, resp.StatusCode, string(body))

		// Do not retry on client errors (e.g. 400 Bad Request).
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, lastErr
		}

		time.Sleep(delay)
		delay *= 2
	}
	return nil, lastErr
}

func toOpenAIMessages(messages []Message) []openAIMessage {
	out := make([]openAIMessage, len(messages))
	for i, m := range messages {
		out[i] = openAIMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}
