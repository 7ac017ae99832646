package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DecisionKind tags the model's structured output for one turn.
type DecisionKind string

const (
	DecisionToolCall DecisionKind = "tool_call"
	DecisionFinal    DecisionKind = "final_answer"
)

// Decision is the normalized form of one model turn: either a tool call with
// raw arguments, or a final plain-text answer. Never both.
type Decision struct {
	Kind  DecisionKind
	Tool  string
	Args  map[string]any
	Final string
}

var fenceRe = regexp.MustCompile("(?im)^```(?:json)?|```$")

// ParseDecision extracts and normalizes the single JSON object the model was
// instructed to emit. Models wrap objects in markdown fences, prepend prose,
// or emit arrays of argument fragments; all of that is repaired here. The
// returned error message is written to be fed back to the model as a
// corrective note.
func ParseDecision(raw string) (Decision, error) {
	obj, err := extractFirstJSONObject(raw)
	if err != nil {
		return Decision{}, fmt.Errorf("your output was not a single JSON object: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &top); err != nil {
		return Decision{}, fmt.Errorf("your output was not a single JSON object: %w", err)
	}

	_, hasFinal := top["final"]
	_, hasTool := top["tool"]
	switch {
	case hasFinal && hasTool:
		return Decision{}, errors.New("do not include both 'final' and 'tool' in one object")
	case hasFinal:
		return parseFinal(top)
	case hasTool:
		return parseToolCall(top)
	}
	return Decision{}, errors.New("the object must contain either 'final' or 'tool'")
}

func parseFinal(top map[string]json.RawMessage) (Decision, error) {
	var final string
	if err := json.Unmarshal(top["final"], &final); err != nil {
		return Decision{}, errors.New("'final' must be a string")
	}
	if len(top) != 1 {
		return Decision{}, errors.New("a final object must contain only the 'final' key")
	}
	return Decision{Kind: DecisionFinal, Final: final}, nil
}

func parseToolCall(top map[string]json.RawMessage) (Decision, error) {
	var tool string
	if err := json.Unmarshal(top["tool"], &tool); err != nil || tool == "" {
		return Decision{}, errors.New("'tool' must be a non-empty string")
	}

	args := map[string]any{}
	if rawArgs, ok := top["args"]; ok {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			// Some models emit args as a list of single-pair objects;
			// merge them instead of rejecting the whole call.
			var list []map[string]any
			if err := json.Unmarshal(rawArgs, &list); err != nil {
				return Decision{}, errors.New("'args' must be an object, not an array or scalar")
			}
			args = map[string]any{}
			for _, item := range list {
				for k, v := range item {
					args[k] = v
				}
			}
		}
	}

	return Decision{Kind: DecisionToolCall, Tool: tool, Args: args}, nil
}

// extractFirstJSONObject strips markdown fences and leading prose, then
// scans for the first brace-balanced object. Braces inside JSON strings are
// honored so a final answer containing "{" cannot derail the scan.
func extractFirstJSONObject(text string) (string, error) {
	text = strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(text), ""))

	depth := 0
	start := -1
	inString := false
	escaped := false
	for i, ch := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return text[start : i+1], nil
				}
			}
		}
	}
	return "", errors.New("no complete JSON object found")
}
