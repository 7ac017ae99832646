// Package agent drives the orchestration loop: send conversation state to
// the model, parse its structured decision, canonicalize and invoke any tool
// call through the TIP client, consult the orchestration policy, repeat. The
// loop guarantees structural correctness and deterministic completion of the
// tool-call sequence; it makes no judgment about the model's reasoning.
package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dileep-u-k/tool-orchestrator/internal/canon"
	"github.com/dileep-u-k/tool-orchestrator/internal/llm"
	"github.com/dileep-u-k/tool-orchestrator/internal/policy"
	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
)

// State names one node of the loop's state machine.
type State string

const (
	StateAwaitModel   State = "AWAIT_MODEL"
	StateValidateCall State = "VALIDATE_CALL"
	StateInvokeTool   State = "INVOKE_TOOL"
	StateCheckPolicy  State = "CHECK_POLICY"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

const (
	defaultMaxTurns        = 5
	defaultCorrectionLimit = 1
)

// Finalizer composes the user-visible final text from the executed tool
// calls and the model's own final answer.
type Finalizer func(calls []ToolCallRecord, modelFinal string) string

// Config carries everything one loop instance needs. It is passed explicitly
// into New so multiple independently configured loops can coexist in one
// process; nothing is read from ambient global state.
type Config struct {
	// Model is the completion client driving decisions.
	Model llm.Client
	// Tools is the TIP client used for discovery and invocation.
	Tools tip.Client
	// Policy holds the forcing rules. Nil means no rule ever fires.
	Policy *policy.Engine
	// MaxTurns bounds the total number of turns (default 5).
	MaxTurns int
	// ModelTimeout is the per-call deadline on model completions.
	// Zero disables the deadline.
	ModelTimeout time.Duration
	// CorrectionLimit caps corrective re-prompts per error kind (default 1).
	CorrectionLimit int
	// Finalizer overrides the default final-text composition.
	Finalizer Finalizer
}

// ToolCallRecord logs one executed tool invocation. ID is the conversation
// entry identifier for the call, stable across the record, the response
// summary, and the orchestrator's log lines.
type ToolCallRecord struct {
	ID     string
	Tool   string
	Args   map[string]any
	Result tip.CallResult
	Turn   int
	Forced bool
}

// Result is the successful outcome of a loop run.
type Result struct {
	FinalText string
	Turns     int
	ToolCalls []ToolCallRecord
}

// Loop is a single-request orchestrator. One instance processes one user
// utterance to completion; instances share only the read-only registry
// behind the TIP client, so independent requests may run concurrently.
type Loop struct {
	cfg Config
}

// New validates the configuration and applies defaults.
func New(cfg Config) (*Loop, error) {
	if cfg.Model == nil {
		return nil, errors.New("agent: model client is required")
	}
	if cfg.Tools == nil {
		return nil, errors.New("agent: TIP client is required")
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	if cfg.CorrectionLimit <= 0 {
		cfg.CorrectionLimit = defaultCorrectionLimit
	}
	if cfg.Policy == nil {
		cfg.Policy = policy.NewEngine()
	}
	if cfg.Finalizer == nil {
		cfg.Finalizer = ComposeSumAndGreeting
	}
	return &Loop{cfg: cfg}, nil
}

// Run executes the loop for one user utterance. On success the result holds
// the final text; on failure the error is a *FailureError with a structured
// reason, never a partial or fabricated answer.
func (l *Loop) Run(ctx context.Context, utterance string) (*Result, error) {
	specs, err := l.cfg.Tools.ListTools(ctx)
	if err != nil {
		return nil, fail(FailureToolDiscovery, err.Error())
	}

	allowed := make(map[string]registry.ToolSpec, len(specs))
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		allowed[s.Name] = s
		names = append(names, s.Name)
	}

	systemPrompt := BuildSystemPrompt(specs)
	conv := NewConversation(utterance)
	res := &Result{}
	corrections := make(map[FailureReason]int)

	var (
		dec          Decision
		lastResult   *tip.CallResult
		pendingFinal string
		havePending  bool
		forced       bool
		runErr       error
	)

	state := StateAwaitModel
	for {
		switch state {

		case StateAwaitModel:
			forced = false
			res.Turns++
			if res.Turns > l.cfg.MaxTurns {
				runErr = fail(FailureTurnBudget, "")
				state = StateFailed
				continue
			}

			raw, err := l.complete(ctx, conv.Messages(systemPrompt))
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					runErr = fail(FailureModelTimeout, "")
				} else {
					runErr = fail(FailureModelError, err.Error())
				}
				state = StateFailed
				continue
			}

			d, perr := ParseDecision(raw)
			if perr != nil {
				conv.AddModel(raw)
				if corrections[FailureMalformedDecision] >= l.cfg.CorrectionLimit {
					runErr = fail(FailureMalformedDecision, perr.Error())
					state = StateFailed
					continue
				}
				corrections[FailureMalformedDecision]++
				conv.AddNote(formatCorrection(perr.Error()))
				continue
			}

			dec = d
			if dec.Kind == DecisionFinal {
				conv.AddModel(raw)
				state = StateCheckPolicy
			} else {
				state = StateValidateCall
			}

		case StateValidateCall:
			spec, known := allowed[dec.Tool]
			if !known {
				if corrections[FailureUnknownTool] >= l.cfg.CorrectionLimit {
					runErr = fail(FailureUnknownTool, dec.Tool)
					state = StateFailed
					continue
				}
				corrections[FailureUnknownTool]++
				conv.AddNote(formatUnknownToolNote(dec.Tool, names))
				state = StateAwaitModel
				continue
			}

			repaired := canon.Canonicalize(spec, dec.Args, utterance)
			if repaired.Failed() {
				if corrections[FailureCanonicalization] >= l.cfg.CorrectionLimit {
					runErr = fail(FailureCanonicalization, strings.Join(repaired.Missing, ","))
					state = StateFailed
					continue
				}
				corrections[FailureCanonicalization]++
				conv.AddNote(formatMissingFieldsNote(dec.Tool, repaired.Missing))
				state = StateAwaitModel
				continue
			}

			if v := tip.ValidateArgs(spec, repaired.Args); !v.OK {
				if corrections[FailureToolValidation] >= l.cfg.CorrectionLimit {
					runErr = fail(FailureToolValidation, v.Detail)
					state = StateFailed
					continue
				}
				corrections[FailureToolValidation]++
				conv.AddNote(formatCorrection(v.Detail))
				state = StateAwaitModel
				continue
			}

			dec.Args = repaired.Args
			state = StateInvokeTool

		case StateInvokeTool:
			callID := conv.AddToolCall(tip.CallRequest{Name: dec.Tool, Args: dec.Args})
			result := l.cfg.Tools.CallTool(ctx, dec.Tool, dec.Args)
			conv.AddToolResult(result)

			res.ToolCalls = append(res.ToolCalls, ToolCallRecord{
				ID:     callID,
				Tool:   dec.Tool,
				Args:   dec.Args,
				Result: result,
				Turn:   res.Turns,
				Forced: forced,
			})
			lastResult = &result
			state = StateCheckPolicy

		case StateCheckPolicy:
			if lastResult != nil && !lastResult.OK() {
				reason := classifyToolFailure(lastResult.ErrorDetail)
				if corrections[reason] >= l.cfg.CorrectionLimit {
					runErr = fail(reason, lastResult.ErrorDetail)
					state = StateFailed
					continue
				}
				corrections[reason]++
				conv.AddNote("You may retry that step once with corrected input, or finalize without it.")
				lastResult = nil
				state = StateAwaitModel
				continue
			}
			lastResult = nil

			action := l.cfg.Policy.NextRequiredAction(conv.PolicyContext())
			if action.Kind == policy.ActionForcedCall {
				if dec.Kind == DecisionFinal {
					pendingFinal = dec.Final
					havePending = true
				}
				// The forced step is executed deterministically rather
				// than suggested: the instruction is recorded so the
				// model sees it, but the loop does not depend on the
				// model choosing to comply.
				conv.AddNote(formatForcedCallNote(action.Tool, action.Rule))
				dec = Decision{Kind: DecisionToolCall, Tool: action.Tool, Args: map[string]any{}}
				forced = true
				res.Turns++
				if res.Turns > l.cfg.MaxTurns {
					runErr = fail(FailureTurnBudget, "")
					state = StateFailed
					continue
				}
				state = StateValidateCall
				continue
			}

			if dec.Kind == DecisionFinal {
				res.FinalText = l.cfg.Finalizer(res.ToolCalls, dec.Final)
				state = StateDone
				continue
			}
			if havePending {
				res.FinalText = l.cfg.Finalizer(res.ToolCalls, pendingFinal)
				state = StateDone
				continue
			}
			state = StateAwaitModel

		case StateDone:
			return res, nil

		case StateFailed:
			return nil, runErr
		}
	}
}

func (l *Loop) complete(ctx context.Context, messages []llm.Message) (string, error) {
	if l.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.ModelTimeout)
		defer cancel()
	}
	return l.cfg.Model.Complete(ctx, messages)
}

func classifyToolFailure(detail string) FailureReason {
	switch {
	case detail == tip.DetailTimeout:
		return FailureToolTimeout
	case detail == tip.DetailTransportFailure:
		return FailureToolTransport
	case strings.HasPrefix(detail, "unknown_tool:"):
		return FailureUnknownTool
	case strings.HasPrefix(detail, "missing_field:"), strings.HasPrefix(detail, "type_mismatch:"):
		return FailureToolValidation
	}
	return FailureToolExecution
}
