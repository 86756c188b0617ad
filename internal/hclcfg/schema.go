package hclcfg

import "github.com/hashicorp/hcl/v2"

// fileSchema is the gohcl decoding target for one declaration file.
type fileSchema struct {
	Pipelines []*pipelineSchema `hcl:"pipeline,block"`
}

type pipelineSchema struct {
	Name     string           `hcl:"name,label"`
	Triggers []*triggerSchema `hcl:"trigger,block"`
	Jobs     []*jobSchema     `hcl:"job,block"`
}

type triggerSchema struct {
	Events                []string `hcl:"events"`
	Refs                  []string `hcl:"refs,optional"`
	TagsOnly              bool     `hcl:"tags_only,optional"`
	SkipIfMessageContains []string `hcl:"skip_if_message_contains,optional"`
}

type jobSchema struct {
	Name      string            `hcl:"name,label"`
	RunsOn    string            `hcl:"runs_on,optional"`
	Condition hcl.Expression    `hcl:"condition,optional"`
	Needs     []string          `hcl:"needs,optional"`
	RunAlways bool              `hcl:"run_always,optional"`
	Env       map[string]string `hcl:"env,optional"`
	Secrets   []string          `hcl:"secrets,optional"`
	Matrix    []*axisSchema     `hcl:"axis,block"`
	Steps     []*stepSchema     `hcl:"step,block"`
}

type axisSchema struct {
	Name   string   `hcl:"name,label"`
	Values []string `hcl:"values"`
}

type stepSchema struct {
	Name     string            `hcl:"name,label"`
	Run      string            `hcl:"run,optional"`
	Uses     string            `hcl:"uses,optional"`
	With     map[string]string `hcl:"with,optional"`
	Env      map[string]string `hcl:"env,optional"`
	Consumes []string          `hcl:"consumes,optional"`
	Produces []string          `hcl:"produces,optional"`
}
