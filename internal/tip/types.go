// Package tip implements the Tool Invocation Protocol: the synchronous
// request/response contract between the agent loop and whatever process hosts
// the tools. The protocol fixes two operations, list_tools and call_tool,
// and the logical shapes of their payloads; the transport underneath can be
// an in-process call or HTTP without the loop noticing.
package tip

import "fmt"

// Status tags the outcome of a call_tool exchange.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Machine-readable error details carried in CallResult.ErrorDetail.
const (
	DetailTransportFailure = "transport_failure"
	DetailTimeout          = "timeout"
)

// MissingFieldDetail formats the validation detail for an absent required
// argument, e.g. "missing_field:b".
func MissingFieldDetail(field string) string {
	return fmt.Sprintf("missing_field:%s", field)
}

// TypeMismatchDetail formats the validation detail for a type-incompatible
// argument value, e.g. "type_mismatch:a".
func TypeMismatchDetail(field string) string {
	return fmt.Sprintf("type_mismatch:%s", field)
}

// UnknownToolDetail formats the detail for a call naming an unregistered tool.
func UnknownToolDetail(name string) string {
	return fmt.Sprintf("unknown_tool:%s", name)
}

// CallRequest is one call_tool invocation. Args is the duck-typed JSON
// object the model produced, after canonicalization.
type CallRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// CallResult is the uniform outcome of a call_tool exchange. Every outcome
// (tool success, validation rejection, execution error, transport failure,
// timeout) surfaces here; clients never raise protocol errors to the loop.
type CallResult struct {
	Tool        string `json:"tool_name"`
	Status      Status `json:"status"`
	Value       any    `json:"value,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// OK reports whether the call succeeded.
func (r CallResult) OK() bool {
	return r.Status == StatusSuccess
}

func errorResult(tool, detail string) CallResult {
	return CallResult{Tool: tool, Status: StatusError, ErrorDetail: detail}
}
