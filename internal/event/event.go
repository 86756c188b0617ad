// Package event models the trigger event of a pipeline run and exposes it as
// an HCL evaluation context for gating conditions.
package event

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Kind is the class of event that triggered a run.
type Kind int

const (
	Push Kind = iota
	Release
	Manual
)

// String returns the declaration-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case Push:
		return "push"
	case Release:
		return "release"
	case Manual:
		return "manual"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a declaration-facing name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "push":
		return Push, nil
	case "release":
		return Release, nil
	case "manual":
		return Manual, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// Event is the immutable trigger of a single pipeline run. It is created
// once per run and only ever read afterwards.
type Event struct {
	Kind          Kind
	Ref           string
	CommitMessage string
	IsTag         bool
}

// Fields lists the attribute names conditions may project from the event.
// Referencing anything else is a declaration error.
func Fields() map[string]bool {
	return map[string]bool{
		"kind":           true,
		"ref":            true,
		"commit_message": true,
		"is_tag":         true,
	}
}

// containsFunc implements contains(haystack, needle) for gating conditions.
var containsFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "haystack", Type: cty.String},
		{Name: "needle", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.Bool),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.BoolVal(strings.Contains(args[0].AsString(), args[1].AsString())), nil
	},
})

// EvalContext builds the evaluation context conditions are evaluated in.
// The event is exposed as an object named "event"; the only function is
// contains().
func (e Event) EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"event": cty.ObjectVal(map[string]cty.Value{
				"kind":           cty.StringVal(e.Kind.String()),
				"ref":            cty.StringVal(e.Ref),
				"commit_message": cty.StringVal(e.CommitMessage),
				"is_tag":         cty.BoolVal(e.IsTag),
			}),
		},
		Functions: map[string]function.Function{
			"contains": containsFunc,
		},
	}
}
