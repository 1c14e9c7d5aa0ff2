package forecast

import "github.com/vk/portfoliosim/internal/stats"

// Report is the immutable output record of one Simulate call. The engine
// never retains or mutates it after returning; the caller owns its lifecycle.
type Report struct {
	Simulations int    `json:"simulations"`
	Confidence  string `json:"confidence_level"`
	Seed        uint64 `json:"seed"`

	// BaselineWeeks and AdjustedWeeks surface the selected confidence level.
	BaselineWeeks float64 `json:"baseline_weeks"`
	AdjustedWeeks float64 `json:"adjusted_weeks"`

	Baseline           BaselineForecast      `json:"baseline_forecast"`
	Adjusted           AdjustedForecast      `json:"adjusted_forecast"`
	DependencyImpact   DependencyImpact      `json:"dependency_impact"`
	DependencyAnalysis DependencyAnalysis    `json:"dependency_analysis"`
	Combined           CombinedProbabilities `json:"combined_probabilities"`
	ProjectResults     ProjectResults        `json:"project_results"`

	// CriticalProjects is the project-level attribution: the projects most
	// often limiting portfolio completion across trials.
	CriticalProjects []string `json:"critical_projects"`

	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings,omitempty"`
}

// BaselineForecast is the no-dependency-delay portfolio completion forecast.
type BaselineForecast struct {
	P50  float64 `json:"p50"`
	P85  float64 `json:"p85"`
	P95  float64 `json:"p95"`
	Mean float64 `json:"mean"`
}

// AdjustedForecast is the dependency-adjusted portfolio completion forecast.
type AdjustedForecast struct {
	P50  float64 `json:"p50"`
	P85  float64 `json:"p85"`
	P95  float64 `json:"p95"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// DependencyImpact quantifies how much the dependency delays cost, in weeks
// and as a share of the baseline P85.
type DependencyImpact struct {
	DelayWeeksP50      float64 `json:"delay_weeks_p50"`
	DelayWeeksP85      float64 `json:"delay_weeks_p85"`
	DelayWeeksP95      float64 `json:"delay_weeks_p95"`
	DelayPercentageP85 float64 `json:"delay_percentage_p85"`
}

// DelayPercentiles is the percentile table of the per-trial delay array, in
// days.
type DelayPercentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P85 float64 `json:"p85"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
}

func delayPercentilesFrom(s stats.Summary) DelayPercentiles {
	return DelayPercentiles{
		P10: s.P10, P25: s.P25, P50: s.P50, P75: s.P75,
		P85: s.P85, P90: s.P90, P95: s.P95,
	}
}

// DependencyAnalysis is the dependency-graph portion of the report.
type DependencyAnalysis struct {
	TotalDependencies int `json:"total_dependencies"`

	OnTimeProbability    float64 `json:"on_time_probability"`
	OnTimeProbabilityPct float64 `json:"on_time_probability_pct"`

	AtLeastOneDelayedProbability    float64 `json:"at_least_one_delayed_probability"`
	AtLeastOneDelayedProbabilityPct float64 `json:"at_least_one_delayed_probability_pct"`

	// OddsRatio phrases the all-on-time chance as "1 in X".
	OddsRatio string `json:"odds_ratio"`

	ExpectedDelayDays float64          `json:"expected_delay_days"`
	DelayPercentiles  DelayPercentiles `json:"delay_percentiles"`

	// CriticalPath lists the top dependency edges by deterministic risk
	// ranking, at most five, formatted as "id (name)".
	CriticalPath []string `json:"critical_path"`

	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`

	Recommendations []string `json:"recommendations"`
}

// CombinedProbabilities is the headline on-time summary: the closed-form
// dependency probability times a fixed per-team delivery assumption.
type CombinedProbabilities struct {
	DependencyOnTimePct float64 `json:"dependency_on_time_probability_pct"`
	TeamCombinedPct     float64 `json:"team_combined_probability_pct"`
	OverallOnTimePct    float64 `json:"overall_on_time_probability_pct"`
	Explanation         string  `json:"explanation"`
}

// ProjectResult is one project's row in the per-project tables.
type ProjectResult struct {
	ProjectID int     `json:"project_id"`
	Name      string  `json:"project_name"`
	P85Weeks  float64 `json:"p85_weeks"`
	// DelayVsBaseline is adjusted P85 minus baseline P85, adjusted table only.
	DelayVsBaseline float64 `json:"delay_vs_baseline,omitempty"`
	// CostOfDelay is cod_weekly x P85 when a rate is tracked. A scalar-P85
	// product, not an integral over the distribution; a documented
	// simplification.
	CostOfDelay float64 `json:"cost_of_delay,omitempty"`
}

// ProjectResults pairs the baseline and adjusted per-project tables.
type ProjectResults struct {
	Baseline []ProjectResult `json:"baseline"`
	Adjusted []ProjectResult `json:"adjusted"`
}
