package aggregate

import (
	"sort"

	"github.com/vk/portfoliosim/internal/stats"
)

// SequentialResult is the outcome of running projects one after another in
// WSJF order: the portfolio completion time is the sum of its parts, and
// every project gates everything behind it.
type SequentialResult struct {
	// Aggregate[i] is the sum across ordered projects of trial i.
	Aggregate []float64
	Stats     stats.Summary
	// PerProject holds each project's own percentile table, keyed by ID.
	PerProject map[int]stats.Summary
	// Order is the execution order as project IDs: WSJF descending, ties
	// broken by ascending priority, then declared order.
	Order []int
	// CriticalPath names every project; sequential execution makes each one
	// a gating factor.
	CriticalPath []string
}

// Sequential aggregates trial arrays under the one-at-a-time topology.
func Sequential(projects []ProjectTrials, workers int) (*SequentialResult, error) {
	n, err := checkAligned(projects)
	if err != nil {
		return nil, err
	}

	ordered := make([]int, len(projects)) // indexes into projects
	for i := range ordered {
		ordered[i] = i
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		pa, pb := &projects[ordered[a]].Project, &projects[ordered[b]].Project
		if pa.WSJF != pb.WSJF {
			return pa.WSJF > pb.WSJF
		}
		return pa.Priority < pb.Priority
	})

	aggregate := make([]float64, n)
	forEachChunk(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			sum := 0.0
			for _, p := range ordered {
				sum += projects[p].Trials[i]
			}
			aggregate[i] = sum
		}
	})

	order := make([]int, len(ordered))
	critical := make([]string, len(ordered))
	baseArrays := make(map[int][]float64, len(projects))
	for i, p := range ordered {
		order[i] = projects[p].Project.ID
		critical[i] = projects[p].Project.Name
		baseArrays[projects[p].Project.ID] = projects[p].Trials
	}

	return &SequentialResult{
		Aggregate:    aggregate,
		Stats:        stats.Summarize(aggregate),
		PerProject:   summarizePerProject(projects, baseArrays),
		Order:        order,
		CriticalPath: critical,
	}, nil
}
