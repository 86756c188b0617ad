package yamlcfg

import (
	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/expr"
)

func translate(p *pipelineSchema, path string) (*config.Model, error) {
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
		job, err := translateJob(j, path)
		if err != nil {
			return nil, err
		}
		pipeline.Jobs = append(pipeline.Jobs, job)
	}
	return &config.Model{Pipeline: pipeline}, nil
}

func translateJob(j *jobSchema, path string) (*config.Job, error) {
	job := &config.Job{
		Name:      j.name,
		RunsOn:    j.RunsOn,
		Needs:     j.Needs,
		RunAlways: j.RunAlways,
		Env:       j.Env,
		Secrets:   j.Secrets,
	}
	if j.Condition != "" {
		cond, err := expr.Parse(j.Condition, path)
		if err != nil {
			return nil, config.Declarationf("job %q: %v", j.name, err)
		}
		job.Condition = cond
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
	return job, nil
}
