package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// SayHelloName is the canonical name of the greeting tool.
const SayHelloName = "say_hello"

// SayHelloSpec describes the greeting tool. It takes no parameters; the
// canonicalizer drops anything a model invents for it.
func SayHelloSpec() registry.ToolSpec {
	return registry.ToolSpec{
		Name:        SayHelloName,
		Description: "Return a friendly greeting from the REST service",
		Returns:     "A greeting string",
	}
}

// SayHello calls the backing REST service's /hello endpoint.
type SayHello struct {
	baseURL    string
	httpClient *http.Client
}

// NewSayHello creates a greeting tool backed by the REST service at baseURL.
func NewSayHello(baseURL string) *SayHello {
	return &SayHello{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Invoke fetches the greeting. Arguments are ignored.
// The signature matches tip.Handler.
func (t *SayHello) Invoke(ctx context.Context, _ map[string]any) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/hello", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create hello request: %w", err)
	}
	req.Header.Set("User-Agent", toolUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call hello endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("hello endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode hello response: %w", err)
	}
	return out.Message, nil
}
