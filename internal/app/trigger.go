package app

import (
	"slices"
	"strings"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/event"
)

// triggered decides whether the event starts the pipeline at all. A pipeline
// with no triggers runs for any event; otherwise at least one trigger must
// accept it.
func triggered(p *config.Pipeline, ev event.Event) bool {
	if len(p.Triggers) == 0 {
		return true
	}
	for _, t := range p.Triggers {
		if triggerMatches(t, ev) {
			return true
		}
	}
	return false
}

func triggerMatches(t *config.Trigger, ev event.Event) bool {
	if !slices.Contains(t.Events, ev.Kind.String()) {
		return false
	}
	if len(t.Refs) > 0 && !slices.Contains(t.Refs, ev.Ref) {
		return false
	}
	if t.TagsOnly && !ev.IsTag {
		return false
	}
	for _, substr := range t.SkipIfMessageContains {
		if strings.Contains(ev.CommitMessage, substr) {
			return false
		}
	}
	return true
}
