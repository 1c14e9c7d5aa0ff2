package aggregate

import (
	"fmt"

	"github.com/vk/portfoliosim/internal/model"
	"github.com/vk/portfoliosim/internal/stats"
)

// criticalShareThreshold is the fraction of trials in which a project must be
// the limiting one to count as critical path under parallel execution.
const criticalShareThreshold = 0.20

// ProjectTrials pairs one project with its base completion-time trial array.
// Index i of every trial array in one run refers to the same random outcome.
type ProjectTrials struct {
	Project model.Project
	Trials  []float64
}

// checkAligned verifies the cross-array invariant: every project carries
// exactly n trials.
func checkAligned(projects []ProjectTrials) (int, error) {
	if len(projects) == 0 {
		return 0, fmt.Errorf("no project trial arrays to aggregate")
	}
	n := len(projects[0].Trials)
	for i := range projects {
		if len(projects[i].Trials) != n {
			return 0, fmt.Errorf("trial arrays are not aligned: project %q has %d trials, expected %d",
				projects[i].Project.Name, len(projects[i].Trials), n)
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("trial arrays are empty")
	}
	return n, nil
}

// summarizePerProject builds the per-project percentile tables for a mode.
func summarizePerProject(projects []ProjectTrials, arrays map[int][]float64) map[int]stats.Summary {
	out := make(map[int]stats.Summary, len(projects))
	for i := range projects {
		id := projects[i].Project.ID
		if arr, ok := arrays[id]; ok {
			out[id] = stats.Summarize(arr)
		}
	}
	return out
}
