package hclcfg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/event"
	"github.com/vk/conveyorgo/internal/expr"
)

func loadHCL(t *testing.T, src string) (*config.Model, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return NewLoader().Load(context.Background(), path)
}

func TestLoad_FullDeclaration(t *testing.T) {
	t.Parallel()

	src := `
pipeline "release" {
  trigger {
    events                   = ["push"]
    refs                     = ["refs/heads/master"]
    skip_if_message_contains = ["[skip ci]"]
  }
  trigger {
    events    = ["release"]
    tags_only = true
  }

  job "build" {
    runs_on = "ubuntu"
    env     = { CI = "true" }

    step "compile" {
      run      = "make build"
      produces = ["pkg"]
    }
  }

  job "test" {
    needs = ["build"]

    axis "os" {
      values = ["linux", "macos"]
    }
    axis "version" {
      values = ["3.10", "3.11"]
    }

    step "unit" {
      run      = "make test"
      consumes = ["pkg"]
      env      = { VERBOSE = "1" }
    }
  }

  job "publish" {
    condition  = event.kind == "release" && event.is_tag
    needs      = ["test"]
    run_always = false
    secrets    = ["PYPI_TOKEN"]

    step "upload" {
      uses = "publish"
      with = {
        artifact   = "pkg"
        upload_url = "https://example.com/upload"
      }
      consumes = ["pkg"]
    }
  }
}
`
	model, err := loadHCL(t, src)
	require.NoError(t, err)
	require.NoError(t, model.Validate())

	p := model.Pipeline
	assert.Equal(t, "release", p.Name)

	require.Len(t, p.Triggers, 2)
	assert.Equal(t, []string{"push"}, p.Triggers[0].Events)
	assert.Equal(t, []string{"[skip ci]"}, p.Triggers[0].SkipIfMessageContains)
	assert.True(t, p.Triggers[1].TagsOnly)

	require.Len(t, p.Jobs, 3)
	assert.Equal(t, "build", p.Jobs[0].Name)
	assert.Equal(t, "ubuntu", p.Jobs[0].RunsOn)
	assert.Nil(t, p.Jobs[0].Condition, "no condition block means no gating")
	assert.Equal(t, map[string]string{"CI": "true"}, p.Jobs[0].Env)
	assert.Equal(t, []string{"pkg"}, p.Jobs[0].Steps[0].Produces)

	test := p.Jobs[1]
	assert.Equal(t, []string{"build"}, test.Needs)
	require.Len(t, test.Matrix, 2)
	assert.Equal(t, "os", test.Matrix[0].Name)
	assert.Equal(t, []string{"3.10", "3.11"}, test.Matrix[1].Values)
	assert.Equal(t, map[string]string{"VERBOSE": "1"}, test.Steps[0].Env)

	publish := p.Jobs[2]
	require.NotNil(t, publish.Condition)
	assert.Equal(t, []string{"PYPI_TOKEN"}, publish.Secrets)
	assert.Equal(t, "publish", publish.Steps[0].Uses)
	assert.Equal(t, "pkg", publish.Steps[0].With["artifact"])

	// The captured condition evaluates against the trigger event.
	met, err := expr.Evaluate(publish.Condition,
		event.Event{Kind: event.Release, IsTag: true}.EvalContext())
	require.NoError(t, err)
	assert.True(t, met)

	met, err = expr.Evaluate(publish.Condition,
		event.Event{Kind: event.Push}.EvalContext())
	require.NoError(t, err)
	assert.False(t, met)
}

func TestLoad_AbsentConditionMeansAlwaysRun(t *testing.T) {
	t.Parallel()

	src := `
pipeline "ci" {
  job "build" {
    step "compile" { run = "make" }
  }
  job "gated" {
    condition = event.is_tag
    step "s" { run = "true" }
  }
}
`
	model, err := loadHCL(t, src)
	require.NoError(t, err)

	// A job without a condition attribute carries a nil expression, which
	// evaluates true; it must not decode as a null expression that would get
	// the job skipped.
	build := model.Pipeline.Jobs[0]
	require.Nil(t, build.Condition)
	met, err := expr.Evaluate(build.Condition, event.Event{Kind: event.Push}.EvalContext())
	require.NoError(t, err)
	assert.True(t, met)

	assert.NotNil(t, model.Pipeline.Jobs[1].Condition)
}

func TestLoad_SyntaxErrorIsDeclarationError(t *testing.T) {
	t.Parallel()

	_, err := loadHCL(t, `pipeline "broken" { job "a" {`)
	require.Error(t, err)

	var declErr *config.DeclarationError
	assert.True(t, errors.As(err, &declErr))
}

func TestLoad_ExactlyOnePipelineBlock(t *testing.T) {
	t.Parallel()

	_, err := loadHCL(t, `
pipeline "one" {}
pipeline "two" {}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one pipeline block")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
}
