package aggregate

import (
	"sort"

	"github.com/vk/portfoliosim/internal/stats"
)

// ParallelResult is the outcome of running every project at the same time:
// the portfolio finishes when its slowest project does.
type ParallelResult struct {
	// Aggregate[i] is the max across projects of trial i.
	Aggregate []float64
	Stats     stats.Summary
	// PerProject holds each project's own percentile table, keyed by ID.
	PerProject map[int]stats.Summary
	// LimitingShare is, per project ID, the fraction of trials in which that
	// project set the portfolio completion time.
	LimitingShare map[int]float64
	// CriticalPath lists the names of projects limiting at least 20% of
	// trials, most frequent first. Never empty when projects exist.
	CriticalPath []string
}

// Parallel aggregates trial arrays under the all-at-once topology.
func Parallel(projects []ProjectTrials, workers int) (*ParallelResult, error) {
	n, err := checkAligned(projects)
	if err != nil {
		return nil, err
	}

	aggregate := make([]float64, n)
	limiting := make([]int, n) // index into projects of the argmax per trial

	forEachChunk(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			best := 0
			max := projects[0].Trials[i]
			for p := 1; p < len(projects); p++ {
				if v := projects[p].Trials[i]; v > max {
					max = v
					best = p
				}
			}
			aggregate[i] = max
			limiting[i] = best
		}
	})

	counts := make([]int, len(projects))
	for _, p := range limiting {
		counts[p]++
	}

	shares := make(map[int]float64, len(projects))
	baseArrays := make(map[int][]float64, len(projects))
	for p := range projects {
		shares[projects[p].Project.ID] = float64(counts[p]) / float64(n)
		baseArrays[projects[p].Project.ID] = projects[p].Trials
	}

	return &ParallelResult{
		Aggregate:     aggregate,
		Stats:         stats.Summarize(aggregate),
		PerProject:    summarizePerProject(projects, baseArrays),
		LimitingShare: shares,
		CriticalPath:  criticalProjects(projects, counts, n),
	}, nil
}

// criticalProjects applies the limiting-share threshold. If no project
// clears it (possible with many evenly-matched projects), the single most
// frequent limiter is reported so the critical path is never empty.
func criticalProjects(projects []ProjectTrials, counts []int, n int) []string {
	type entry struct {
		idx   int
		share float64
	}

	entries := make([]entry, 0, len(projects))
	for p := range projects {
		entries = append(entries, entry{idx: p, share: float64(counts[p]) / float64(n)})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].share > entries[b].share
	})

	var names []string
	for _, e := range entries {
		if e.share >= criticalShareThreshold {
			names = append(names, projects[e.idx].Project.Name)
		}
	}
	if len(names) == 0 {
		names = append(names, projects[entries[0].idx].Project.Name)
	}
	return names
}
