// Package canon repairs tool-call argument sets emitted by the model so they
// satisfy the target tool's parameter schema. Three strategies apply in
// order, per missing field: alias resolution against the spec's alias table,
// positional backfill of literals extracted from the original user utterance,
// and finally rejection. The canonicalizer never invents a value it cannot
// derive from either source, and re-running it on an already-canonical
// payload is a no-op.
package canon

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// numberLiteral matches signed decimal and scientific-notation literals in
// free text, in order of appearance.
var numberLiteral = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[eE][-+]?\d+)?`)

// Result is the outcome of one canonicalization pass. Missing lists the
// required parameters that could not be recovered; a non-empty Missing means
// the call must not be forwarded.
type Result struct {
	Args    map[string]any
	Missing []string
}

// Failed reports whether required parameters remain unrecoverable.
func (r Result) Failed() bool {
	return len(r.Missing) > 0
}

// Canonicalize rewrites raw arguments for the given spec. The returned map
// contains only canonical parameter names; unrecognized keys are dropped
// (for a zero-parameter tool this means the result is always empty, however
// creative the model was).
func Canonicalize(spec registry.ToolSpec, raw map[string]any, utterance string) Result {
	out := make(map[string]any, len(spec.Params))

	// Case-insensitive view of the raw payload.
	lower := make(map[string]any, len(raw))
	for k, v := range raw {
		lower[strings.ToLower(k)] = v
	}

	for _, p := range spec.Params {
		if v, ok := lower[strings.ToLower(p.Name)]; ok {
			out[p.Name] = coerce(v, p.Type)
			continue
		}
		if v, ok := pickAlias(lower, p.Aliases); ok {
			out[p.Name] = coerce(v, p.Type)
		}
	}

	backfillFromUtterance(spec, out, utterance)

	var missing []string
	for _, p := range spec.RequiredParams() {
		if _, ok := out[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}

	return Result{Args: out, Missing: missing}
}

func pickAlias(lower map[string]any, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := lower[strings.ToLower(a)]; ok {
			return v, true
		}
	}
	return nil, false
}

// backfillFromUtterance fills still-missing required numeric parameters from
// the numeric literals in the user's own words. Assignment is positional:
// the i-th numeric parameter (in spec order) takes the i-th literal, so a
// payload that already supplied the first number still gets the second one
// from the right place.
func backfillFromUtterance(spec registry.ToolSpec, out map[string]any, utterance string) {
	if utterance == "" {
		return
	}

	var literals []float64
	for _, m := range numberLiteral.FindAllString(utterance, -1) {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			literals = append(literals, f)
		}
	}
	if len(literals) == 0 {
		return
	}

	position := 0
	for _, p := range spec.Params {
		if p.Type != registry.TypeNumber && p.Type != registry.TypeInteger {
			continue
		}
		if _, present := out[p.Name]; !present && p.Required && position < len(literals) {
			out[p.Name] = literals[position]
		}
		position++
	}
}

// coerce converts numeric strings to numbers for number-typed parameters.
// Models routinely quote numbers; the schema wants them numeric. Anything
// that does not parse is passed through untouched for the validator to catch.
func coerce(v any, paramType string) any {
	if paramType != registry.TypeNumber && paramType != registry.TypeInteger {
		return v
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return v
}
