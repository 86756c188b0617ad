package run

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/conveyorgo/internal/config"
)

func terminalInstance(t *testing.T, name string, s State) *Instance {
	t.Helper()
	inst := NewInstance(&config.Job{Name: name}, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	switch s {
	case Skipped:
		inst.Skip(errors.New("skipped"), &wg)
	default:
		inst.Complete(s, nil, &wg)
	}
	return inst
}

func TestSummarize_StatusPrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		states []State
		opts   SummarizeOptions
		want   Status
	}{
		{
			name:   "all succeeded",
			states: []State{Succeeded, Succeeded},
			want:   StatusSucceeded,
		},
		{
			name:   "one failure poisons the run",
			states: []State{Succeeded, Failed, Skipped},
			want:   StatusFailed,
		},
		{
			name:   "everything skipped is a no-op",
			states: []State{Skipped, Skipped},
			want:   StatusNoOp,
		},
		{
			name:   "cancellation outranks success",
			states: []State{Succeeded, Skipped},
			opts:   SummarizeOptions{Cancelled: true},
			want:   StatusCancelled,
		},
		{
			name:   "grace exceeded outranks cancellation",
			states: []State{Succeeded, Skipped},
			opts:   SummarizeOptions{Cancelled: true, GraceExceeded: true},
			want:   StatusFailed,
		},
		{
			name:   "empty run is a no-op",
			states: nil,
			want:   StatusNoOp,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			instances := make([]*Instance, 0, len(tc.states))
			for i, s := range tc.states {
				instances = append(instances, terminalInstance(t, string(rune('a'+i)), s))
			}

			res := Summarize("run-1", instances, nil, tc.opts)
			assert.Equal(t, tc.want, res.Status)
			assert.Len(t, res.Instances, len(tc.states))
		})
	}
}
