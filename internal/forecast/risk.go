package forecast

import (
	"fmt"
	"sort"

	"github.com/vk/portfoliosim/internal/model"
	"github.com/vk/portfoliosim/internal/stats"
)

// maxCriticalEdges caps the reported dependency critical path.
const maxCriticalEdges = 5

// minRankImpactDays floors an edge's impact when ranking, so a risky edge
// with an unknown impact still ranks above a safe one.
const minRankImpactDays = 10.0

// rankCriticalEdges scores every edge deterministically (no simulation):
// (1 - on_time_probability) x max(impact_days, 10) x criticality weight,
// descending, formatted "id (name)", at most five entries.
func rankCriticalEdges(edges []model.Dependency) []string {
	type scored struct {
		idx   int
		score float64
	}

	ranked := make([]scored, len(edges))
	for i := range edges {
		impact := edges[i].DelayImpactDays
		if impact < minRankImpactDays {
			impact = minRankImpactDays
		}
		ranked[i] = scored{
			idx:   i,
			score: (1 - edges[i].OnTimeProbability) * impact * edges[i].Criticality.Weight(),
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	limit := len(ranked)
	if limit > maxCriticalEdges {
		limit = maxCriticalEdges
	}

	out := make([]string, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, fmt.Sprintf("%s (%s)", edges[r.idx].ID, edges[r.idx].Name))
	}
	return out
}

// Composite risk score weights: share of delayed trials, delay magnitude,
// delay volatility, and graph size.
const (
	riskWeightDelayed   = 0.4
	riskWeightMagnitude = 0.3
	riskWeightSpread    = 0.2
	riskWeightEdges     = 0.1
)

// dependencyRiskScore folds the simulated delay population and the edge count
// into a 0-100 composite.
func dependencyRiskScore(delays []float64, edgeCount int) float64 {
	if len(delays) == 0 || edgeCount == 0 {
		return 0
	}

	delayedTrials := 0
	for _, d := range delays {
		if d > 0 {
			delayedTrials++
		}
	}
	delayedFraction := float64(delayedTrials) / float64(len(delays))

	meanDelay := stats.Mean(delays)
	cv := stats.CoefficientOfVariation(delays)

	score := riskWeightDelayed*(delayedFraction*100) +
		riskWeightMagnitude*capAt100(meanDelay/30*100) +
		riskWeightSpread*capAt100(cv*100) +
		riskWeightEdges*capAt100(float64(edgeCount)/10*100)

	return score
}

func capAt100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

// riskLevel buckets a 0-100 score.
func riskLevel(score float64) string {
	switch {
	case score < 25:
		return "LOW"
	case score < 50:
		return "MEDIUM"
	case score < 75:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// oddsRatio phrases a probability as "1 in X".
func oddsRatio(p float64) string {
	if p <= 0 {
		return "1 in >1000000"
	}
	if p >= 1 {
		return "1 in 1"
	}
	return fmt.Sprintf("1 in %.0f", 1/p)
}
