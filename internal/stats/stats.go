// Package stats provides the percentile and moment calculations shared by the
// simulators and the report builder.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary captures the scalar statistics of one trial population.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	P10  float64 `json:"p10"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P85  float64 `json:"p85"`
	P90  float64 `json:"p90"`
	P95  float64 `json:"p95"`
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between order statistics. The input is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return percentileSorted(sorted, p)
}

// percentileSorted is the interpolation core, for callers that sort once and
// read many percentiles.
func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Summarize computes the full Summary for one trial array.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Mean: stat.Mean(values, nil),
		P10:  percentileSorted(sorted, 10),
		P25:  percentileSorted(sorted, 25),
		P50:  percentileSorted(sorted, 50),
		P75:  percentileSorted(sorted, 75),
		P85:  percentileSorted(sorted, 85),
		P90:  percentileSorted(sorted, 90),
		P95:  percentileSorted(sorted, 95),
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	return s
}

// Mean is a thin alias over gonum's sample mean.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev returns the Bessel-corrected sample standard deviation, or 0 for
// fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// CoefficientOfVariation returns std/mean, or 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / mean
}
