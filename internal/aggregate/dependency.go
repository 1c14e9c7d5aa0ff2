package aggregate

import (
	"fmt"

	"github.com/vk/portfoliosim/internal/stats"
)

// daysPerWeek converts the delay array (days) into the completion-time unit
// (weeks) before it is added to dependent projects.
const daysPerWeek = 7.0

// DependencyResult is the outcome of dependency-constrained execution: a
// project with upstream dependencies starts only when the slowest of them has
// finished, plus the trial's shared dependency delay.
type DependencyResult struct {
	// Adjusted maps project ID to its delay-adjusted completion trials.
	Adjusted map[int][]float64
	// Aggregate[i] is the max across adjusted arrays of trial i.
	Aggregate []float64
	Stats     stats.Summary
	// PerProject holds each project's adjusted percentile table, keyed by ID.
	PerProject map[int]stats.Summary
}

// DependencyConstrained propagates completion times along the dependency
// graph. order must be a topological ordering of the project IDs (upstream
// first); delays is the shared per-trial delay array in days, applied
// identically to every project that has at least one surviving dependency.
//
// The shared-delay model is deliberate: edges carry source/target identities,
// but the delay is drawn once per trial and not routed per edge. Routing it
// to declared targets is a known future correction, not current behavior.
func DependencyConstrained(projects []ProjectTrials, order []int, delays []float64, workers int) (*DependencyResult, error) {
	n, err := checkAligned(projects)
	if err != nil {
		return nil, err
	}
	if len(delays) != n {
		return nil, fmt.Errorf("delay array has %d trials, expected %d", len(delays), n)
	}

	byID := make(map[int]*ProjectTrials, len(projects))
	for i := range projects {
		byID[projects[i].Project.ID] = &projects[i]
	}

	adjusted := make(map[int][]float64, len(projects))

	// Walk in topological order so every upstream adjusted array exists
	// before anything downstream reads it. Within one project all trials are
	// independent, so the inner loop parallelizes freely.
	for _, id := range order {
		pt, ok := byID[id]
		if !ok {
			// Project was skipped (failed simulation); dependents treat it
			// as absent.
			continue
		}

		// Only dependencies that survived simulation constrain the start.
		var upstream [][]float64
		for _, depID := range pt.Project.DependsOn {
			if arr, ok := adjusted[depID]; ok {
				upstream = append(upstream, arr)
			}
		}

		out := make([]float64, n)
		if len(upstream) == 0 {
			copy(out, pt.Trials)
		} else {
			forEachChunk(n, workers, func(start, end int) {
				for i := start; i < end; i++ {
					gate := upstream[0][i]
					for u := 1; u < len(upstream); u++ {
						if upstream[u][i] > gate {
							gate = upstream[u][i]
						}
					}
					out[i] = gate + delays[i]/daysPerWeek + pt.Trials[i]
				}
			})
		}
		adjusted[id] = out
	}

	for i := range projects {
		if _, ok := adjusted[projects[i].Project.ID]; !ok {
			return nil, fmt.Errorf("ordering did not cover project %q (id %d)", projects[i].Project.Name, projects[i].Project.ID)
		}
	}

	arrays := make([][]float64, len(projects))
	for i := range projects {
		arrays[i] = adjusted[projects[i].Project.ID]
	}

	aggregate := make([]float64, n)
	forEachChunk(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			max := arrays[0][i]
			for _, arr := range arrays[1:] {
				if arr[i] > max {
					max = arr[i]
				}
			}
			aggregate[i] = max
		}
	})

	return &DependencyResult{
		Adjusted:   adjusted,
		Aggregate:  aggregate,
		Stats:      stats.Summarize(aggregate),
		PerProject: summarizePerProject(projects, adjusted),
	}, nil
}
