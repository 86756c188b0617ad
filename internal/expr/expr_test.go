package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/conveyorgo/internal/event"
)

func evalOn(t *testing.T, src string, ev event.Event) (bool, error) {
	t.Helper()
	e, err := Parse(src, "test.hcl")
	require.NoError(t, err, "expression should parse")
	return Evaluate(e, ev.EvalContext())
}

func TestEvaluate_NilExpressionIsTrue(t *testing.T) {
	t.Parallel()

	met, err := Evaluate(nil, event.Event{}.EvalContext())
	require.NoError(t, err)
	assert.True(t, met, "an absent condition should gate nothing")
}

func TestEvaluate_EventFieldEquality(t *testing.T) {
	t.Parallel()

	ev := event.Event{Kind: event.Release, Ref: "refs/tags/v1.0", IsTag: true}

	met, err := evalOn(t, `event.kind == "release"`, ev)
	require.NoError(t, err)
	assert.True(t, met)

	met, err = evalOn(t, `event.kind == "push"`, ev)
	require.NoError(t, err)
	assert.False(t, met)

	met, err = evalOn(t, `event.is_tag`, ev)
	require.NoError(t, err)
	assert.True(t, met)
}

func TestEvaluate_NegatedContains(t *testing.T) {
	t.Parallel()

	src := `!contains(event.commit_message, "[skip ci]")`

	met, err := evalOn(t, src, event.Event{CommitMessage: "fix a bug"})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = evalOn(t, src, event.Event{CommitMessage: "typo [skip ci]"})
	require.NoError(t, err)
	assert.False(t, met)
}

func TestEvaluate_NonBooleanResultIsEvaluationError(t *testing.T) {
	t.Parallel()

	_, err := evalOn(t, `event.commit_message`, event.Event{CommitMessage: "hello"})
	require.Error(t, err)

	var evalErr *EvaluationError
	assert.True(t, errors.As(err, &evalErr), "non-boolean result must surface as *EvaluationError")
}

func TestCheckFields_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	e, err := Parse(`event.branch == "main"`, "test.hcl")
	require.NoError(t, err)

	err = CheckFields(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event field")
}

func TestCheckFields_RejectsForeignVariable(t *testing.T) {
	t.Parallel()

	e, err := Parse(`env.CI == "true"`, "test.hcl")
	require.NoError(t, err)

	err = CheckFields(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown variable "env"`)
}

func TestCheckFields_AcceptsKnownProjections(t *testing.T) {
	t.Parallel()

	e, err := Parse(`event.kind == "push" && event.ref == "refs/heads/master" && !event.is_tag`, "test.hcl")
	require.NoError(t, err)
	assert.NoError(t, CheckFields(e))
}

func TestParse_SyntaxErrorIsReported(t *testing.T) {
	t.Parallel()

	_, err := Parse(`event.kind ==`, "test.hcl")
	require.Error(t, err)
}
