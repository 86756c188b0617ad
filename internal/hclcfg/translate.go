package hclcfg

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/conveyorgo/internal/config"
)

// translate converts the HCL-specific schema into the agnostic model.
func translate(p *pipelineSchema) *config.Model {
	pipeline := &config.Pipeline{Name: p.Name}
	for _, t := range p.Triggers {
		pipeline.Triggers = append(pipeline.Triggers, &config.Trigger{
			Events:                t.Events,
			Refs:                  t.Refs,
			TagsOnly:              t.TagsOnly,
			SkipIfMessageContains: t.SkipIfMessageContains,
		})
	}
	for _, j := range p.Jobs {
		pipeline.Jobs = append(pipeline.Jobs, translateJob(j))
	}
	return &config.Model{Pipeline: pipeline}
}

func translateJob(j *jobSchema) *config.Job {
	job := &config.Job{
		Name:      j.Name,
		RunsOn:    j.RunsOn,
		Condition: conditionOrNil(j.Condition),
		Needs:     j.Needs,
		RunAlways: j.RunAlways,
		Env:       j.Env,
		Secrets:   j.Secrets,
	}
	for _, ax := range j.Matrix {
		job.Matrix = append(job.Matrix, &config.Axis{Name: ax.Name, Values: ax.Values})
	}
	for _, s := range j.Steps {
		job.Steps = append(job.Steps, &config.Step{
			Name:     s.Name,
			Run:      s.Run,
			Uses:     s.Uses,
			With:     s.With,
			Env:      s.Env,
			Consumes: s.Consumes,
			Produces: s.Produces,
		})
	}
	return job
}

// conditionOrNil maps an absent condition attribute to a nil expression.
// gohcl decodes a missing optional expression as a static null expression,
// which would otherwise read as a condition that evaluates to null and get
// the job skipped instead of always run.
func conditionOrNil(e hcl.Expression) hcl.Expression {
	if e == nil {
		return nil
	}
	if len(e.Variables()) > 0 {
		return e
	}
	if val, diags := e.Value(nil); !diags.HasErrors() && val.IsNull() {
		return nil
	}
	return e
}
