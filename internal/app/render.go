package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vk/portfoliosim/internal/forecast"
)

// renderJSON writes the full report as indented JSON.
func renderJSON(w io.Writer, report *forecast.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// renderText writes the human-readable report summary.
func renderText(w io.Writer, report *forecast.Report) error {
	fmt.Fprintln(w, "Portfolio Delivery Forecast")
	fmt.Fprintln(w, "---------------------------")
	fmt.Fprintf(w, "Simulations: %d | confidence %s | seed %d\n",
		report.Simulations, report.Confidence, report.Seed)
	fmt.Fprintf(w, "Baseline completion: %.1f weeks (%s)\n", report.BaselineWeeks, report.Confidence)
	fmt.Fprintf(w, "Adjusted completion: %.1f weeks (%s)\n", report.AdjustedWeeks, report.Confidence)
	fmt.Fprintf(w, "Baseline percentiles: p50=%.1f p85=%.1f p95=%.1f | mean %.1f\n",
		report.Baseline.P50, report.Baseline.P85, report.Baseline.P95, report.Baseline.Mean)
	fmt.Fprintf(w, "Adjusted percentiles: p50=%.1f p85=%.1f p95=%.1f | mean %.1f | std %.1f\n",
		report.Adjusted.P50, report.Adjusted.P85, report.Adjusted.P95,
		report.Adjusted.Mean, report.Adjusted.Std)
	fmt.Fprintf(w, "Dependency cost: +%.1f weeks at p85 (%.1f%% over baseline)\n",
		report.DependencyImpact.DelayWeeksP85, report.DependencyImpact.DelayPercentageP85)

	analysis := report.DependencyAnalysis
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dependency analysis")
	fmt.Fprintf(w, "Edges: %d | all on time %.1f%% (odds %s) | at least one delayed %.1f%%\n",
		analysis.TotalDependencies, analysis.OnTimeProbabilityPct,
		analysis.OddsRatio, analysis.AtLeastOneDelayedProbabilityPct)
	fmt.Fprintf(w, "Expected delay: %.1f days | p50=%.1f p85=%.1f p95=%.1f days\n",
		analysis.ExpectedDelayDays, analysis.DelayPercentiles.P50,
		analysis.DelayPercentiles.P85, analysis.DelayPercentiles.P95)
	fmt.Fprintf(w, "Risk: %.0f/100 (%s)\n", analysis.RiskScore, analysis.RiskLevel)
	if len(analysis.CriticalPath) > 0 {
		fmt.Fprintf(w, "Riskiest dependencies: %s\n", strings.Join(analysis.CriticalPath, ", "))
	}

	fmt.Fprintf(w, "Overall on-time chance: %.1f%% | %s\n",
		report.Combined.OverallOnTimePct, report.Combined.Explanation)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Project detail")
	for i, row := range report.ProjectResults.Adjusted {
		line := fmt.Sprintf("- %s | p85 %.1f weeks", row.Name, row.P85Weeks)
		if i < len(report.ProjectResults.Baseline) {
			line = fmt.Sprintf("%s | baseline %.1f weeks", line, report.ProjectResults.Baseline[i].P85Weeks)
		}
		if row.DelayVsBaseline > 0 {
			line = fmt.Sprintf("%s | +%.1f weeks from dependencies", line, row.DelayVsBaseline)
		}
		if row.CostOfDelay > 0 {
			line = fmt.Sprintf("%s | cost of delay $%.0f", line, row.CostOfDelay)
		}
		fmt.Fprintln(w, line)
	}

	if len(report.CriticalProjects) > 0 {
		fmt.Fprintf(w, "Critical projects: %s\n", strings.Join(report.CriticalProjects, ", "))
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "- %s\n", rec)
		}
	}

	return nil
}
