// Package forecast runs the full portfolio simulation: per-project throughput
// trials, dependency delay trials, baseline and dependency-adjusted
// aggregation, and the assembled report.
package forecast

import (
	"time"

	"github.com/vk/portfoliosim/internal/model"
)

// Trial-count bounds. The ceiling keeps a pathological request from chewing
// memory; one portfolio of 10k trials is the normal case.
const (
	DefaultSimulations = 10000
	MaxSimulations     = 200000
)

// Confidence levels the caller can surface in the headline fields. The full
// percentile table is produced regardless.
const (
	ConfidenceP50 = "P50"
	ConfidenceP85 = "P85"
	ConfidenceP95 = "P95"
)

// Options tunes one Simulate call.
type Options struct {
	// Simulations is the trial count N. 0 means DefaultSimulations.
	Simulations int
	// Confidence selects the percentile surfaced in the headline fields.
	// One of P50, P85, P95; empty means P85.
	Confidence string
	// Seed makes the run reproducible. 0 draws a seed from the clock.
	Seed uint64
	// Workers bounds the trial-chunk pool. 0 picks a sensible default.
	Workers int
	// LegacyProbabilityModel switches the theoretical on-time probability
	// from the per-edge product to the simplified 0.5^edges model.
	LegacyProbabilityModel bool
}

// withDefaults fills zero values and validates the rest.
func (o Options) withDefaults() (Options, error) {
	if o.Simulations == 0 {
		o.Simulations = DefaultSimulations
	}
	if o.Simulations < 1 || o.Simulations > MaxSimulations {
		return o, &model.ValidationError{Reason: "n_simulations must be within [1, 200000]"}
	}

	if o.Confidence == "" {
		o.Confidence = ConfidenceP85
	}
	switch o.Confidence {
	case ConfidenceP50, ConfidenceP85, ConfidenceP95:
	default:
		return o, &model.ValidationError{Reason: "confidence_level must be one of P50, P85, P95"}
	}

	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Workers == 0 {
		o.Workers = 4
	}

	return o, nil
}
