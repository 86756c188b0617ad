package run

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/conveyorgo/internal/config"
)

func TestInstance_TryStartWinsOnce(t *testing.T) {
	t.Parallel()

	inst := NewInstance(&config.Job{Name: "build"}, nil)

	assert.True(t, inst.TryStart())
	assert.False(t, inst.TryStart(), "a second start attempt must lose")
	assert.Equal(t, Running, inst.State())
	assert.False(t, inst.StartedAt.IsZero())
}

func TestInstance_SkipBeatsStart(t *testing.T) {
	t.Parallel()

	inst := NewInstance(&config.Job{Name: "build"}, nil)
	var wg sync.WaitGroup
	wg.Add(1)

	cause := errors.New("cancelled")
	assert.True(t, inst.Skip(cause, &wg))
	assert.False(t, inst.TryStart(), "a skipped instance must never start")
	assert.Equal(t, Skipped, inst.State())
	assert.Equal(t, cause, inst.Err)
	wg.Wait()
}

func TestInstance_SkipLosesToRunning(t *testing.T) {
	t.Parallel()

	inst := NewInstance(&config.Job{Name: "build"}, nil)
	require.True(t, inst.TryStart())

	var wg sync.WaitGroup
	assert.False(t, inst.Skip(errors.New("too late"), &wg),
		"a running instance is not skippable, it finishes on its own")
	assert.Equal(t, Running, inst.State())
}

func TestInstance_WaitGroupReleasedExactlyOnce(t *testing.T) {
	t.Parallel()

	inst := NewInstance(&config.Job{Name: "build"}, nil)
	var wg sync.WaitGroup
	wg.Add(1)

	// A cancellation sweep and a worker completion may both try to finalize;
	// only one wg.Done may land.
	inst.Complete(Succeeded, nil, &wg)
	inst.Skip(errors.New("sweep"), &wg)
	inst.Complete(Failed, errors.New("again"), &wg)

	wg.Wait()
	assert.Equal(t, Failed, inst.State(), "state writes still apply, release does not")
}

func TestInstance_PendingDepsGateBlockedState(t *testing.T) {
	t.Parallel()

	inst := NewInstance(&config.Job{Name: "test"}, nil)
	assert.Equal(t, Pending, inst.State())

	inst.SetPendingDeps(2)
	assert.Equal(t, Blocked, inst.State())

	assert.Equal(t, int32(1), inst.DecPendingDeps())
	assert.Equal(t, int32(0), inst.DecPendingDeps())
}

func TestInstanceID_SelectionInAxisDeclarationOrder(t *testing.T) {
	t.Parallel()

	job := &config.Job{
		Name: "test",
		Matrix: []*config.Axis{
			{Name: "os", Values: []string{"linux"}},
			{Name: "version", Values: []string{"3.11"}},
		},
	}

	inst := NewInstance(job, map[string]string{"version": "3.11", "os": "linux"})
	assert.Equal(t, "job.test[os=linux,version=3.11]", inst.ID)
}
