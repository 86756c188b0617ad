package stepexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/registry"
)

func TestLocal_CommandCollectsDeclaredOutputs(t *testing.T) {
	t.Parallel()

	exec := NewLocal(registry.New())
	step := &config.Step{
		Name:     "compile",
		Run:      `printf 'artifact-bytes' > pkg`,
		Produces: []string{"pkg"},
	}

	res, err := exec.Execute(context.Background(), step, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitStatus)
	assert.Equal(t, []byte("artifact-bytes"), res.Produced["pkg"])
}

func TestLocal_ConsumedArtifactsAreMaterializedAsFiles(t *testing.T) {
	t.Parallel()

	exec := NewLocal(registry.New())
	step := &config.Step{
		Name:     "repackage",
		Run:      `cat input > output`,
		Consumes: []string{"input"},
		Produces: []string{"output"},
	}

	res, err := exec.Execute(context.Background(), step, nil,
		map[string][]byte{"input": []byte("payload")})
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), res.Produced["output"])
}

func TestLocal_NonZeroExitIsAResultNotAnError(t *testing.T) {
	t.Parallel()

	exec := NewLocal(registry.New())
	step := &config.Step{Name: "flaky", Run: "exit 3"}

	res, err := exec.Execute(context.Background(), step, nil, nil)
	require.NoError(t, err, "the step ran to completion, the substrate is fine")
	assert.Equal(t, 3, res.ExitStatus)
}

func TestLocal_EnvironmentIsPassedThrough(t *testing.T) {
	t.Parallel()

	exec := NewLocal(registry.New())
	step := &config.Step{
		Name:     "env",
		Run:      `printf '%s' "$MATRIX_OS" > seen`,
		Produces: []string{"seen"},
	}

	res, err := exec.Execute(context.Background(), step,
		map[string]string{"MATRIX_OS": "linux"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("linux"), res.Produced["seen"])
}

func TestLocal_MissingDeclaredOutputIsAnError(t *testing.T) {
	t.Parallel()

	exec := NewLocal(registry.New())
	step := &config.Step{Name: "liar", Run: "true", Produces: []string{"pkg"}}

	_, err := exec.Execute(context.Background(), step, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not produce")
}

func TestLocal_ActionDispatch(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterAction("stamp", func(_ context.Context, in *registry.ActionInput) (map[string][]byte, error) {
		return map[string][]byte{"stamp": []byte(in.With["value"])}, nil
	})
	exec := NewLocal(reg)

	step := &config.Step{Name: "mark", Uses: "stamp", With: map[string]string{"value": "v1"}}
	res, err := exec.Execute(context.Background(), step, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), res.Produced["stamp"])
}

func TestLocal_UnknownActionIsAnError(t *testing.T) {
	t.Parallel()

	exec := NewLocal(registry.New())
	step := &config.Step{Name: "mark", Uses: "missing"}

	_, err := exec.Execute(context.Background(), step, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "missing"`)
}
