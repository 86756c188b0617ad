package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *Model {
	return &Model{Pipeline: &Pipeline{
		Name: "ci",
		Triggers: []*Trigger{
			{Events: []string{"push"}, Refs: []string{"refs/heads/master"}},
		},
		Jobs: []*Job{
			{
				Name:  "build",
				Steps: []*Step{{Name: "compile", Run: "make build"}},
			},
			{
				Name:  "test",
				Needs: []string{"build"},
				Matrix: []*Axis{
					{Name: "os", Values: []string{"linux", "macos"}},
				},
				Steps: []*Step{{Name: "unit", Run: "make test"}},
			},
		},
	}}
}

func TestValidate_AcceptsWellFormedModel(t *testing.T) {
	t.Parallel()

	require.NoError(t, validModel().Validate())
}

func TestValidate_RejectsBrokenModels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(m *Model)
		wantMsg string
	}{
		{
			name:    "missing pipeline",
			mutate:  func(m *Model) { m.Pipeline = nil },
			wantMsg: "no pipeline declared",
		},
		{
			name:    "unknown trigger event",
			mutate:  func(m *Model) { m.Pipeline.Triggers[0].Events = []string{"pull_request"} },
			wantMsg: "unknown trigger event",
		},
		{
			name:    "trigger without events",
			mutate:  func(m *Model) { m.Pipeline.Triggers[0].Events = nil },
			wantMsg: "declares no events",
		},
		{
			name: "duplicate job name",
			mutate: func(m *Model) {
				m.Pipeline.Jobs = append(m.Pipeline.Jobs, &Job{
					Name:  "build",
					Steps: []*Step{{Name: "again", Run: "true"}},
				})
			},
			wantMsg: "duplicate job name",
		},
		{
			name:    "unknown needs target",
			mutate:  func(m *Model) { m.Pipeline.Jobs[1].Needs = []string{"lint"} },
			wantMsg: `needs unknown job "lint"`,
		},
		{
			name:    "self dependency",
			mutate:  func(m *Model) { m.Pipeline.Jobs[0].Needs = []string{"build"} },
			wantMsg: "depends on itself",
		},
		{
			name: "duplicate matrix axis",
			mutate: func(m *Model) {
				m.Pipeline.Jobs[1].Matrix = append(m.Pipeline.Jobs[1].Matrix,
					&Axis{Name: "os", Values: []string{"windows"}})
			},
			wantMsg: "duplicate matrix axis",
		},
		{
			name:    "axis without values",
			mutate:  func(m *Model) { m.Pipeline.Jobs[1].Matrix[0].Values = nil },
			wantMsg: "has no values",
		},
		{
			name:    "job without steps",
			mutate:  func(m *Model) { m.Pipeline.Jobs[0].Steps = nil },
			wantMsg: "declares no steps",
		},
		{
			name: "step with run and uses",
			mutate: func(m *Model) {
				m.Pipeline.Jobs[0].Steps[0].Uses = "print"
			},
			wantMsg: "both run and uses",
		},
		{
			name: "step with neither run nor uses",
			mutate: func(m *Model) {
				m.Pipeline.Jobs[0].Steps[0].Run = ""
			},
			wantMsg: "neither run nor uses",
		},
		{
			name: "empty artifact name",
			mutate: func(m *Model) {
				m.Pipeline.Jobs[0].Steps[0].Produces = []string{""}
			},
			wantMsg: "artifact with empty name",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := validModel()
			tc.mutate(m)

			err := m.Validate()
			require.Error(t, err)

			var declErr *DeclarationError
			assert.True(t, errors.As(err, &declErr), "validation failures must be *DeclarationError")
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
