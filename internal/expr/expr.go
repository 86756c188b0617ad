// Package expr evaluates gating conditions over an event context. Evaluation
// is pure and safe to call repeatedly and concurrently.
package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/conveyorgo/internal/event"
)

// EvaluationError reports a condition that could not be evaluated to a
// boolean. Per the engine's error policy, the owning job is skipped with a
// warning rather than failing the run.
type EvaluationError struct {
	Detail string
}

func (e *EvaluationError) Error() string {
	return "condition evaluation failed: " + e.Detail
}

func evalErrorf(format string, args ...any) error {
	return &EvaluationError{Detail: fmt.Sprintf(format, args...)}
}

// Parse turns a condition source string into an expression. Dialects that
// carry conditions as native expressions bypass it.
func Parse(src, filename string) (hcl.Expression, error) {
	e, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, evalErrorf("%s", diags.Error())
	}
	return e, nil
}

// CheckFields statically verifies that every variable the expression
// references is a projection of a known event field. This surfaces
// declaration typos before any job is dispatched.
func CheckFields(e hcl.Expression) error {
	if e == nil {
		return nil
	}
	known := event.Fields()
	for _, traversal := range e.Variables() {
		root := traversal.RootName()
		if root != "event" {
			return fmt.Errorf("unknown variable %q, conditions may only reference event fields", root)
		}
		if len(traversal) < 2 {
			return fmt.Errorf("condition references the bare event object, project a field instead")
		}
		attr, ok := traversal[1].(hcl.TraverseAttr)
		if !ok || !known[attr.Name] {
			return fmt.Errorf("unknown event field in condition (known fields: kind, ref, commit_message, is_tag)")
		}
	}
	return nil
}

// Evaluate resolves the expression against the given context and converts
// the result to a boolean. A nil expression is true. Any diagnostic, null,
// or non-boolean result is an *EvaluationError, never a silent default.
func Evaluate(e hcl.Expression, evalCtx *hcl.EvalContext) (bool, error) {
	if e == nil {
		return true, nil
	}
	val, diags := e.Value(evalCtx)
	if diags.HasErrors() {
		return false, evalErrorf("%s", diags.Error())
	}
	val, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return false, evalErrorf("condition is not a boolean: %s", err)
	}
	if val.IsNull() || !val.IsKnown() {
		return false, evalErrorf("condition evaluated to an unknown or null value")
	}
	return val.True(), nil
}
