package montecarlo

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vk/portfoliosim/internal/model"
)

// Impact-band spread around delay_impact_days when no empirical distribution
// is supplied, and the default day range when neither is known.
const (
	impactBandLow    = 0.7
	impactBandHigh   = 1.3
	defaultDelayLow  = 5.0
	defaultDelayHigh = 15.0
)

// Theoretical holds the closed-form probabilities computed once per run,
// independent of the simulated trials.
type Theoretical struct {
	// OnTimeAll is the probability that every edge delivers on time.
	OnTimeAll float64
	// AtLeastOneDelayed is its complement.
	AtLeastOneDelayed float64
}

// TheoreticalProbabilities computes the all-on-time probability under either
// the individual-probability model (product of edge probabilities) or the
// simplified legacy model (coin flip per edge).
func TheoreticalProbabilities(edges []model.Dependency, legacy bool) Theoretical {
	onTime := 1.0
	if legacy {
		onTime = math.Pow(0.5, float64(len(edges)))
	} else {
		for i := range edges {
			onTime *= edges[i].OnTimeProbability
		}
	}
	return Theoretical{OnTimeAll: onTime, AtLeastOneDelayed: 1 - onTime}
}

// SimulateDelays draws n aggregate delay trials (in days) across all edges.
// For each trial every edge independently lands on time or contributes a
// delay: sampled with replacement from its empirical distribution when one is
// given, from a band around delay_impact_days otherwise, or from the default
// day range when the edge carries no impact estimate at all. Trial i sums the
// delays of every late edge.
func SimulateDelays(edges []model.Dependency, n int, src rand.Source) []float64 {
	delays := make([]float64, n)
	if len(edges) == 0 {
		return delays
	}

	rng := rand.New(src)

	// One delay distribution per edge, prepared up front so the per-trial
	// loop only draws.
	bands := make([]distuv.Uniform, len(edges))
	for i := range edges {
		switch {
		case len(edges[i].DelayDistribution) > 0:
			// drawn empirically below
		case edges[i].DelayImpactDays > 0:
			bands[i] = distuv.Uniform{
				Min: impactBandLow * edges[i].DelayImpactDays,
				Max: impactBandHigh * edges[i].DelayImpactDays,
				Src: src,
			}
		default:
			bands[i] = distuv.Uniform{Min: defaultDelayLow, Max: defaultDelayHigh, Src: src}
		}
	}

	for trial := 0; trial < n; trial++ {
		total := 0.0
		for i := range edges {
			if rng.Float64() < edges[i].OnTimeProbability {
				continue // on time, no contribution
			}
			if dist := edges[i].DelayDistribution; len(dist) > 0 {
				total += dist[rng.IntN(len(dist))]
			} else {
				total += bands[i].Rand()
			}
		}
		delays[trial] = total
	}

	return delays
}
