package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/event"
)

func TestTriggered(t *testing.T) {
	t.Parallel()

	pushToMaster := &config.Trigger{
		Events:                []string{"push"},
		Refs:                  []string{"refs/heads/master"},
		SkipIfMessageContains: []string{"[skip ci]", "[ci skip]"},
	}
	taggedRelease := &config.Trigger{
		Events:   []string{"release"},
		TagsOnly: true,
	}

	cases := []struct {
		name     string
		triggers []*config.Trigger
		ev       event.Event
		want     bool
	}{
		{
			name: "no triggers accepts anything",
			ev:   event.Event{Kind: event.Manual},
			want: true,
		},
		{
			name:     "matching push",
			triggers: []*config.Trigger{pushToMaster},
			ev:       event.Event{Kind: event.Push, Ref: "refs/heads/master", CommitMessage: "fix bug"},
			want:     true,
		},
		{
			name:     "wrong ref",
			triggers: []*config.Trigger{pushToMaster},
			ev:       event.Event{Kind: event.Push, Ref: "refs/heads/feature"},
			want:     false,
		},
		{
			name:     "wrong kind",
			triggers: []*config.Trigger{pushToMaster},
			ev:       event.Event{Kind: event.Release, Ref: "refs/heads/master"},
			want:     false,
		},
		{
			name:     "skip marker in commit message",
			triggers: []*config.Trigger{pushToMaster},
			ev:       event.Event{Kind: event.Push, Ref: "refs/heads/master", CommitMessage: "typo [skip ci]"},
			want:     false,
		},
		{
			name:     "tags_only rejects branch release",
			triggers: []*config.Trigger{taggedRelease},
			ev:       event.Event{Kind: event.Release, Ref: "refs/heads/master"},
			want:     false,
		},
		{
			name:     "tags_only accepts tag release",
			triggers: []*config.Trigger{taggedRelease},
			ev:       event.Event{Kind: event.Release, Ref: "refs/tags/v1.0", IsTag: true},
			want:     true,
		},
		{
			name:     "any trigger suffices",
			triggers: []*config.Trigger{pushToMaster, taggedRelease},
			ev:       event.Event{Kind: event.Release, Ref: "refs/tags/v1.0", IsTag: true},
			want:     true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := &config.Pipeline{Name: "ci", Triggers: tc.triggers}
			assert.Equal(t, tc.want, triggered(p, tc.ev))
		})
	}
}
