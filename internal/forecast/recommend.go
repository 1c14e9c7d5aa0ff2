package forecast

import "fmt"

// Threshold rules for the templated dependency recommendations.
const (
	recommendOnTimeFloor    = 0.5
	recommendEdgeCeiling    = 5
	recommendMeanDelayDays  = 10.0
	recommendDelaySpreadCV  = 1.0
	recommendImpactSharePct = 25.0
)

// dependencyRecommendations selects the templated guidance strings for the
// dependency analysis section.
func dependencyRecommendations(onTimeAll float64, edgeCount int, meanDelayDays, cv float64) []string {
	if edgeCount == 0 {
		return []string{"No cross-project dependencies declared; forecast risk is driven by team throughput alone."}
	}

	var recs []string
	if onTimeAll < recommendOnTimeFloor {
		recs = append(recs, fmt.Sprintf(
			"All dependencies land on time in only %.0f%% of outcomes. Decouple or re-sequence the riskiest handoffs.",
			onTimeAll*100))
	}
	if edgeCount > recommendEdgeCeiling {
		recs = append(recs, fmt.Sprintf(
			"The portfolio carries %d cross-project dependencies. Reducing coupling shrinks both delay and variance.",
			edgeCount))
	}
	if meanDelayDays > recommendMeanDelayDays {
		recs = append(recs, fmt.Sprintf(
			"Expected dependency delay is %.1f days. Build explicit schedule buffer into dependent projects.",
			meanDelayDays))
	}
	if cv > recommendDelaySpreadCV {
		recs = append(recs, "Delay outcomes are highly volatile; re-forecast after every dependency status change.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Dependency risk is moderate. Track on-time performance of the critical edges.")
	}
	return recs
}

// portfolioRecommendations builds the top-level guidance from the combined
// baseline/adjusted picture.
func portfolioRecommendations(rep *Report) []string {
	recs := make([]string, 0, len(rep.DependencyAnalysis.Recommendations)+2)

	if rep.DependencyImpact.DelayPercentageP85 > recommendImpactSharePct {
		recs = append(recs, fmt.Sprintf(
			"Dependency delays add %.0f%% to the P85 portfolio forecast; they are the dominant schedule risk.",
			rep.DependencyImpact.DelayPercentageP85))
	}
	if len(rep.CriticalProjects) == 1 {
		recs = append(recs, fmt.Sprintf(
			"%s limits portfolio completion in most trials; capacity added there moves the whole forecast.",
			rep.CriticalProjects[0]))
	}

	recs = append(recs, rep.DependencyAnalysis.Recommendations...)
	return recs
}
