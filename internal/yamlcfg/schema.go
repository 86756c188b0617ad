package yamlcfg

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Pipeline *pipelineSchema `yaml:"pipeline"`
}

type pipelineSchema struct {
	Name     string           `yaml:"name"`
	Triggers []*triggerSchema `yaml:"triggers"`
	Jobs     jobList          `yaml:"jobs"`
}

type triggerSchema struct {
	Events                []string `yaml:"events"`
	Refs                  []string `yaml:"refs"`
	TagsOnly              bool     `yaml:"tags_only"`
	SkipIfMessageContains []string `yaml:"skip_if_message_contains"`
}

type jobSchema struct {
	name      string
	RunsOn    string            `yaml:"runs_on"`
	Condition string            `yaml:"condition"`
	Needs     []string          `yaml:"needs"`
	RunAlways bool              `yaml:"run_always"`
	Env       map[string]string `yaml:"env"`
	Secrets   []string          `yaml:"secrets"`
	Matrix    []*axisSchema     `yaml:"matrix"`
	Steps     []*stepSchema     `yaml:"steps"`
}

type axisSchema struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type stepSchema struct {
	Name     string            `yaml:"name"`
	Run      string            `yaml:"run"`
	Uses     string            `yaml:"uses"`
	With     map[string]string `yaml:"with"`
	Env      map[string]string `yaml:"env"`
	Consumes []string          `yaml:"consumes"`
	Produces []string          `yaml:"produces"`
}

// jobList decodes the jobs mapping while preserving declaration order,
// which a plain map would lose.
type jobList []*jobSchema

func (l *jobList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: jobs must be a mapping of job name to job body", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		job := &jobSchema{name: keyNode.Value}
		if err := valNode.Decode(job); err != nil {
			return fmt.Errorf("job %q: %w", keyNode.Value, err)
		}
		*l = append(*l, job)
	}
	return nil
}
