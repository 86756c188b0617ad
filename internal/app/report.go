package app

import (
	"fmt"
	"io"
	"time"

	"github.com/vk/conveyorgo/internal/run"
)

// WriteSummary renders the run result as a human-readable report.
func WriteSummary(w io.Writer, res *run.Result) {
	fmt.Fprintf(w, "run %s: %s\n", res.RunID, res.Status)
	for _, inst := range res.Instances {
		switch {
		case inst.Err != nil:
			fmt.Fprintf(w, "  %-50s %-10s %v\n", inst.ID, inst.State, inst.Err)
		case !inst.EndedAt.IsZero() && !inst.StartedAt.IsZero():
			fmt.Fprintf(w, "  %-50s %-10s %s\n", inst.ID, inst.State, inst.EndedAt.Sub(inst.StartedAt).Round(time.Millisecond))
		default:
			fmt.Fprintf(w, "  %-50s %-10s\n", inst.ID, inst.State)
		}
	}
	if len(res.Artifacts) > 0 {
		fmt.Fprintln(w, "artifacts:")
		for _, ref := range res.Artifacts {
			fmt.Fprintf(w, "  %-30s %8d bytes  produced by %s\n", ref.Name, ref.Size, ref.Producer)
		}
	}
}
