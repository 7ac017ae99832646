package tip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// HTTPClient talks to a remote TIP server over the HTTP transport. It owns a
// dedicated http.Client whose timeout doubles as the per-call tool timeout.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the TIP server at baseURL
// (e.g. "http://localhost:9100"). A zero timeout falls back to 30s.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ListTools(ctx context.Context) ([]registry.ToolSpec, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tools", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tool discovery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tool discovery failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Tools []registry.ToolSpec `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode tool list: %w", err)
	}
	return payload.Tools, nil
}

// CallTool performs one call_tool exchange. Transport failures and timeouts
// never surface as Go errors; they come back as error results with the
// corresponding machine-readable detail.
func (c *HTTPClient) CallTool(ctx context.Context, name string, args map[string]any) CallResult {
	payload, err := json.Marshal(CallRequest{Name: name, Args: args})
	if err != nil {
		return errorResult(name, DetailTransportFailure)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call_tool", bytes.NewReader(payload))
	if err != nil {
		return errorResult(name, DetailTransportFailure)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return errorResult(name, DetailTimeout)
		}
		return errorResult(name, DetailTransportFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResult(name, DetailTransportFailure)
	}

	var result CallResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errorResult(name, DetailTransportFailure)
	}
	if result.Tool == "" {
		result.Tool = name
	}
	return result
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
