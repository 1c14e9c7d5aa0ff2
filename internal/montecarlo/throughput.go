package montecarlo

import (
	"github.com/vk/portfoliosim/internal/model"
	"github.com/vk/portfoliosim/internal/stats"
)

// minThroughput floors every weekly throughput draw so a trial can never
// divide by zero or finish a backlog in negative time.
const minThroughput = 0.1

// sigmaFallbackRatio replaces a degenerate standard deviation (single sample,
// or identical samples) with a fixed fraction of the mean.
const sigmaFallbackRatio = 0.2

// SimulateThroughput draws n completion-time trials (in weeks) for one
// project: each trial divides the backlog by an independent throughput draw.
// The returned Summary is computed over the trial array itself.
func SimulateThroughput(samples []float64, backlog, n int, factory SamplerFactory) ([]float64, stats.Summary, error) {
	if len(samples) == 0 {
		return nil, stats.Summary{}, &model.ValidationError{Reason: "throughput samples must not be empty"}
	}
	if backlog <= 0 {
		return nil, stats.Summary{}, &model.ValidationError{Reason: "backlog must be positive"}
	}

	mu := stats.Mean(samples)
	sigma := stats.StdDev(samples)
	if sigma == 0 {
		sigma = sigmaFallbackRatio * mu
	}

	sampler := factory(mu, sigma)
	trials := make([]float64, n)
	for i := range trials {
		draw := sampler.Sample()
		if draw < minThroughput {
			draw = minThroughput
		}
		trials[i] = float64(backlog) / draw
	}

	return trials, stats.Summarize(trials), nil
}
