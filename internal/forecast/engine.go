package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/vk/portfoliosim/internal/aggregate"
	"github.com/vk/portfoliosim/internal/ctxlog"
	"github.com/vk/portfoliosim/internal/dag"
	"github.com/vk/portfoliosim/internal/model"
	"github.com/vk/portfoliosim/internal/montecarlo"
	"github.com/vk/portfoliosim/internal/stats"
)

// ErrAggregationImpossible is returned when every project failed simulation,
// leaving nothing to aggregate.
var ErrAggregationImpossible = errors.New("aggregation impossible: every project failed simulation")

// teamOnTimeAssumption is the fixed per-team delivery probability used by the
// combined summary. It is an assumption, not derived from the trials.
const teamOnTimeAssumption = 0.85

// delaySeedLane keeps the dependency-delay stream distinct from every
// per-project stream.
const delaySeedLane = 1 << 32

// Simulate runs the whole portfolio forecast: base trials per project, one
// shared delay array for the dependency graph, a parallel baseline and a
// dependency-adjusted aggregation, and the assembled report. The call holds
// no state; re-running with the same seed reproduces the report exactly.
func Simulate(ctx context.Context, portfolio *model.Portfolio, opts Options) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}

	graph, err := dag.Build(ctx, portfolio.Projects)
	if err != nil {
		return nil, err
	}
	topoOrder, err := graph.TopoSort()
	if err != nil {
		// Unreachable after DetectCycles, kept as a second line of defense.
		return nil, &model.ValidationError{Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Simulating project throughput.",
		"projects", len(portfolio.Projects), "trials", opts.Simulations, "seed", opts.Seed)

	// Base trials per project. Each project draws from its own seeded
	// stream, so fanning out cannot reorder anything.
	type outcome struct {
		trials []float64
		err    error
	}
	outcomes := make([]outcome, len(portfolio.Projects))

	var wg sync.WaitGroup
	for i := range portfolio.Projects {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			proj := &portfolio.Projects[i]
			src := montecarlo.NewSource(montecarlo.DeriveSeed(opts.Seed, uint64(i)))
			trials, _, err := montecarlo.SimulateThroughput(
				proj.ThroughputSamples, proj.Backlog, opts.Simulations, montecarlo.NormalFactory(src))
			outcomes[i] = outcome{trials: trials, err: err}
		}(i)
	}
	wg.Wait()

	var warnings []string
	var survivors []aggregate.ProjectTrials
	for i := range outcomes {
		if outcomes[i].err != nil {
			// Recoverable: skip the project, keep the run going.
			msg := fmt.Sprintf("project %q skipped: %v", portfolio.Projects[i].Name, outcomes[i].err)
			logger.Warn("Project simulation failed, skipping from aggregation.",
				"project", portfolio.Projects[i].Name, "error", outcomes[i].err)
			warnings = append(warnings, msg)
			continue
		}
		survivors = append(survivors, aggregate.ProjectTrials{
			Project: portfolio.Projects[i],
			Trials:  outcomes[i].trials,
		})
	}
	if len(survivors) == 0 {
		return nil, fmt.Errorf("%w (%d projects)", ErrAggregationImpossible, len(portfolio.Projects))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// One shared delay array for the whole graph, fully generated before any
	// dependency-constrained aggregation reads it.
	edges := portfolio.Dependencies
	delaySrc := montecarlo.NewSource(montecarlo.DeriveSeed(opts.Seed, delaySeedLane))
	delays := montecarlo.SimulateDelays(edges, opts.Simulations, delaySrc)
	theoretical := montecarlo.TheoreticalProbabilities(edges, opts.LegacyProbabilityModel)

	baseline, err := aggregate.Parallel(survivors, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("baseline aggregation: %w", err)
	}
	adjusted, err := aggregate.DependencyConstrained(survivors, topoOrder, delays, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("dependency aggregation: %w", err)
	}

	logger.Debug("Aggregation complete.",
		"surviving_projects", len(survivors),
		"baseline_p85", baseline.Stats.P85,
		"adjusted_p85", adjusted.Stats.P85)

	rep := assembleReport(opts, survivors, edges, delays, theoretical, baseline, adjusted)
	rep.Warnings = warnings
	return rep, nil
}

func assembleReport(
	opts Options,
	survivors []aggregate.ProjectTrials,
	edges []model.Dependency,
	delays []float64,
	theoretical montecarlo.Theoretical,
	baseline *aggregate.ParallelResult,
	adjusted *aggregate.DependencyResult,
) *Report {
	delayStats := stats.Summarize(delays)

	rep := &Report{
		Simulations: opts.Simulations,
		Confidence:  opts.Confidence,
		Seed:        opts.Seed,
		Baseline: BaselineForecast{
			P50:  baseline.Stats.P50,
			P85:  baseline.Stats.P85,
			P95:  baseline.Stats.P95,
			Mean: baseline.Stats.Mean,
		},
		Adjusted: AdjustedForecast{
			P50:  adjusted.Stats.P50,
			P85:  adjusted.Stats.P85,
			P95:  adjusted.Stats.P95,
			Mean: adjusted.Stats.Mean,
			Std:  adjusted.Stats.Std,
		},
		CriticalProjects: baseline.CriticalPath,
	}

	rep.BaselineWeeks = atConfidence(baseline.Stats, opts.Confidence)
	rep.AdjustedWeeks = atConfidence(adjusted.Stats, opts.Confidence)

	rep.DependencyImpact = DependencyImpact{
		DelayWeeksP50: delayStats.P50 / 7,
		DelayWeeksP85: delayStats.P85 / 7,
		DelayWeeksP95: delayStats.P95 / 7,
	}
	if baseline.Stats.P85 > 0 {
		rep.DependencyImpact.DelayPercentageP85 =
			(adjusted.Stats.P85 - baseline.Stats.P85) / baseline.Stats.P85 * 100
	}

	riskScore := dependencyRiskScore(delays, len(edges))
	rep.DependencyAnalysis = DependencyAnalysis{
		TotalDependencies:               len(edges),
		OnTimeProbability:               theoretical.OnTimeAll,
		OnTimeProbabilityPct:            theoretical.OnTimeAll * 100,
		AtLeastOneDelayedProbability:    theoretical.AtLeastOneDelayed,
		AtLeastOneDelayedProbabilityPct: theoretical.AtLeastOneDelayed * 100,
		OddsRatio:                       oddsRatio(theoretical.OnTimeAll),
		ExpectedDelayDays:               delayStats.Mean,
		DelayPercentiles:                delayPercentilesFrom(delayStats),
		CriticalPath:                    rankCriticalEdges(edges),
		RiskScore:                       riskScore,
		RiskLevel:                       riskLevel(riskScore),
		Recommendations: dependencyRecommendations(
			theoretical.OnTimeAll, len(edges), delayStats.Mean,
			stats.CoefficientOfVariation(delays)),
	}

	teamCombined := math.Pow(teamOnTimeAssumption, float64(len(survivors)))
	overall := theoretical.OnTimeAll * teamCombined
	rep.Combined = CombinedProbabilities{
		DependencyOnTimePct: theoretical.OnTimeAll * 100,
		TeamCombinedPct:     teamCombined * 100,
		OverallOnTimePct:    overall * 100,
		Explanation: fmt.Sprintf(
			"%.1f%% dependency on-time x %.1f%% team delivery (0.85^%d) = %.1f%% overall",
			theoretical.OnTimeAll*100, teamCombined*100, len(survivors), overall*100),
	}

	for i := range survivors {
		proj := &survivors[i].Project
		baseP85 := baseline.PerProject[proj.ID].P85
		adjP85 := adjusted.PerProject[proj.ID].P85

		rep.ProjectResults.Baseline = append(rep.ProjectResults.Baseline, ProjectResult{
			ProjectID: proj.ID,
			Name:      proj.Name,
			P85Weeks:  baseP85,
		})

		adjRow := ProjectResult{
			ProjectID:       proj.ID,
			Name:            proj.Name,
			P85Weeks:        adjP85,
			DelayVsBaseline: adjP85 - baseP85,
		}
		if proj.CoDWeekly > 0 {
			adjRow.CostOfDelay = proj.CoDWeekly * adjP85
		}
		rep.ProjectResults.Adjusted = append(rep.ProjectResults.Adjusted, adjRow)
	}

	rep.Recommendations = portfolioRecommendations(rep)
	return rep
}

func atConfidence(s stats.Summary, confidence string) float64 {
	switch confidence {
	case ConfidenceP50:
		return s.P50
	case ConfidenceP95:
		return s.P95
	default:
		return s.P85
	}
}
