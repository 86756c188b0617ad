// Package matrix expands a job template into its concrete job instances.
package matrix

import (
	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/run"
)

// Expand materializes one instance per matrix combination, or exactly one
// instance with an empty selection when no matrix is declared.
//
// Expansion is deterministic: the leftmost declared axis varies slowest and
// values follow their declared sequence, so axes os={A,B}, version={1,2,3}
// yield (A,1),(A,2),(A,3),(B,1),(B,2),(B,3). Stable ordering keeps repeated
// runs schedulable in a reproducible order.
func Expand(job *config.Job) []*run.Instance {
	if len(job.Matrix) == 0 {
		return []*run.Instance{run.NewInstance(job, nil)}
	}

	total := 1
	for _, ax := range job.Matrix {
		total *= len(ax.Values)
	}

	instances := make([]*run.Instance, 0, total)
	indices := make([]int, len(job.Matrix))
	for {
		selection := make(map[string]string, len(job.Matrix))
		for i, ax := range job.Matrix {
			selection[ax.Name] = ax.Values[indices[i]]
		}
		instances = append(instances, run.NewInstance(job, selection))

		// Advance like an odometer, rightmost axis fastest.
		i := len(indices) - 1
		for i >= 0 {
			indices[i]++
			if indices[i] < len(job.Matrix[i].Values) {
				break
			}
			indices[i] = 0
			i--
		}
		if i < 0 {
			return instances
		}
	}
}
