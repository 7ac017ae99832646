package agent

import "fmt"

// FailureReason is the machine-readable reason an agent loop gave up.
type FailureReason string

const (
	FailureModelTimeout      FailureReason = "model_timeout"
	FailureModelError        FailureReason = "model_error"
	FailureTurnBudget        FailureReason = "turn_budget_exceeded"
	FailureMalformedDecision FailureReason = "malformed_decision"
	FailureUnknownTool       FailureReason = "unknown_tool"
	FailureCanonicalization  FailureReason = "canonicalization_failed"
	FailureToolValidation    FailureReason = "tool_validation_failed"
	FailureToolExecution     FailureReason = "tool_execution_failed"
	FailureToolTransport     FailureReason = "tool_transport_failure"
	FailureToolTimeout       FailureReason = "tool_timeout"
	FailureToolDiscovery     FailureReason = "tool_discovery_failed"
)

// FailureError is the structured outcome of a loop that could not produce a
// final answer. Callers receive the reason, never a fabricated answer.
type FailureError struct {
	Reason FailureReason
	Detail string
}

func (e *FailureError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("agent failed: %s", e.Reason)
	}
	return fmt.Sprintf("agent failed: %s (%s)", e.Reason, e.Detail)
}

func fail(reason FailureReason, detail string) error {
	return &FailureError{Reason: reason, Detail: detail}
}
