// Package api defines the request and response shapes of the orchestrator's
// public HTTP surface. Keeping them in one place lets the handlers and any Go
// callers share the exact same contract.
package api

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	// Prompt is the user utterance to orchestrate.
	Prompt string `json:"prompt" binding:"required"`
	// Model optionally pins a specific model ID. Empty means the
	// configured default, subject to failover.
	Model string `json:"model,omitempty"`
}

// ToolCallSummary reports one tool invocation made during a run. ID matches
// the call identifier in the orchestrator's log lines, so a caller can quote
// it when reporting a bad answer.
type ToolCallSummary struct {
	ID     string         `json:"id"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Status string         `json:"status"`
	Forced bool           `json:"forced,omitempty"`
}

// FailoverInfo explains why the request was served by a different model than
// the one the caller asked for.
type FailoverInfo struct {
	OriginalModel string `json:"original_model"`
	Reason        string `json:"reason"`
}

// AskResponse is the body returned by POST /api/v1/ask.
type AskResponse struct {
	RequestID   string            `json:"request_id"`
	Answer      string            `json:"answer"`
	ModelUsed   string            `json:"model_used"`
	Turns       int               `json:"turns"`
	ToolCalls   []ToolCallSummary `json:"tool_calls,omitempty"`
	LatencyMS   int64             `json:"latency_ms"`
	CacheStatus string            `json:"cache_status"`
	Failover    *FailoverInfo     `json:"failover,omitempty"`
}

// ErrorResponse is the uniform error body for the HTTP surface.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
