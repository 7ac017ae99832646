// Package tools provides the built-in tool implementations. Each tool is a
// thin, typed caller of the backing REST service: the tool layer owns the
// spec (names, parameter types, aliases) while the REST service owns the
// actual computation, mirroring how production tools wrap external APIs.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// AddNumbersName is the canonical name of the addition tool.
const AddNumbersName = "add_numbers"

const toolUserAgent = "Tool-Orchestrator-Agent/1.0"

// AddNumbersSpec describes the addition tool, including the alias table the
// canonicalizer uses to repair creative model spellings of the parameters.
func AddNumbersSpec() registry.ToolSpec {
	return registry.ToolSpec{
		Name:        AddNumbersName,
		Description: "Add two numbers and return their sum",
		Params: []registry.ParamSpec{
			{
				Name:        "a",
				Type:        registry.TypeNumber,
				Required:    true,
				Aliases:     []string{"x", "left", "lhs", "num1", "number1", "first", "value1"},
				Description: "The first addend",
			},
			{
				Name:        "b",
				Type:        registry.TypeNumber,
				Required:    true,
				Aliases:     []string{"y", "right", "rhs", "num2", "number2", "second", "value2"},
				Description: "The second addend",
			},
		},
		Returns: "The numeric sum of a and b",
	}
}

// AddNumbers calls the backing REST service's /add endpoint.
// It holds its own configured HTTP client so a slow backend cannot hang the
// orchestration loop past the per-call deadline.
type AddNumbers struct {
	baseURL    string
	httpClient *http.Client
}

// NewAddNumbers creates an addition tool backed by the REST service at baseURL.
func NewAddNumbers(baseURL string) *AddNumbers {
	return &AddNumbers{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Invoke posts the two validated operands to the REST service and returns
// the sum. The signature matches tip.Handler.
func (t *AddNumbers) Invoke(ctx context.Context, args map[string]any) (any, error) {
	payload, err := json.Marshal(map[string]any{
		"a": args["a"],
		"b": args["b"],
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode add request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/add", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create add request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", toolUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call add endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("add endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Result float64 `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode add response: %w", err)
	}
	return out.Result, nil
}
