// Package scenario loads portfolio definitions from HCL files. A scenario is
// one or more files containing project blocks, dependency blocks and an
// optional simulation settings block:
//
//	simulation {
//	  simulations = 10000
//	  confidence  = "P85"
//	}
//
//	project "Backend API" {
//	  id         = 1
//	  backlog    = 20
//	  throughput = [2.8, 3.0, 3.2]
//	}
//
//	dependency "dep-1" {
//	  name   = "API contract"
//	  source = "Backend API"
//	  target = "Mobile App"
//	}
package scenario

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/portfoliosim/internal/ctxlog"
	"github.com/vk/portfoliosim/internal/fsutil"
	"github.com/vk/portfoliosim/internal/model"
)

const defaultPriority = 3
const defaultOnTimeProbability = 0.5

// Settings carries the optional simulation block, zero-valued where the
// scenario left a knob unset.
type Settings struct {
	Simulations            int
	Confidence             string
	Seed                   uint64
	Workers                int
	LegacyProbabilityModel bool
}

// fileRoot decodes all top-level blocks from one scenario file.
type fileRoot struct {
	Simulation   []*simulationBlock `hcl:"simulation,block"`
	Projects     []*projectBlock    `hcl:"project,block"`
	Dependencies []*dependencyBlock `hcl:"dependency,block"`
}

type simulationBlock struct {
	Simulations *int    `hcl:"simulations,optional"`
	Confidence  *string `hcl:"confidence,optional"`
	Seed        *int64  `hcl:"seed,optional"`
	Workers     *int    `hcl:"workers,optional"`
	LegacyModel *bool   `hcl:"legacy_probability_model,optional"`
}

type projectBlock struct {
	Name string `hcl:"name,label"`

	ID      int `hcl:"id"`
	Backlog int `hcl:"backlog"`

	// Throughput stays a raw expression so malformed values get a typed
	// error naming the project, not a generic decode failure.
	Throughput hcl.Expression `hcl:"throughput"`

	Priority  *int     `hcl:"priority,optional"`
	WSJF      *float64 `hcl:"wsjf,optional"`
	CoDWeekly *float64 `hcl:"cod_weekly,optional"`
	DependsOn []int    `hcl:"depends_on,optional"`
}

type dependencyBlock struct {
	ID string `hcl:"id,label"`

	Name   string `hcl:"name"`
	Source string `hcl:"source"`
	Target string `hcl:"target"`

	OnTimeProbability *float64       `hcl:"on_time_probability,optional"`
	DelayImpactDays   *float64       `hcl:"delay_impact_days,optional"`
	DelayDistribution hcl.Expression `hcl:"delay_distribution,optional"`
	Criticality       *string        `hcl:"criticality,optional"`
}

// Load parses every .hcl file under path (a file or a directory) and merges
// the blocks into one portfolio plus its settings. The portfolio is not yet
// validated; the engine validates before sampling.
func Load(ctx context.Context, path string) (*model.Portfolio, Settings, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, Settings{}, err
	}
	if len(files) == 0 {
		return nil, Settings{}, fmt.Errorf("no .hcl scenario files found in %s", path)
	}
	logger.Debug("Discovered scenario files.", "count", len(files))

	portfolio := &model.Portfolio{}
	var settings Settings
	settingsSeen := false

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, Settings{}, fmt.Errorf("failed to parse scenario file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, Settings{}, fmt.Errorf("failed to decode scenario file %s: %w", file, diags)
		}

		for _, block := range root.Simulation {
			if settingsSeen {
				return nil, Settings{}, fmt.Errorf("duplicate simulation block in %s", file)
			}
			settingsSeen = true
			settings = translateSettings(block)
		}
		for _, block := range root.Projects {
			proj, err := translateProject(block)
			if err != nil {
				return nil, Settings{}, fmt.Errorf("in %s: %w", file, err)
			}
			portfolio.Projects = append(portfolio.Projects, proj)
		}
		for _, block := range root.Dependencies {
			edge, err := translateDependency(block)
			if err != nil {
				return nil, Settings{}, fmt.Errorf("in %s: %w", file, err)
			}
			portfolio.Dependencies = append(portfolio.Dependencies, edge)
		}
	}

	logger.Debug("Scenario loading complete.",
		"projects", len(portfolio.Projects), "dependencies", len(portfolio.Dependencies))
	return portfolio, settings, nil
}

func translateSettings(block *simulationBlock) Settings {
	var s Settings
	if block.Simulations != nil {
		s.Simulations = *block.Simulations
	}
	if block.Confidence != nil {
		s.Confidence = *block.Confidence
	}
	if block.Seed != nil {
		s.Seed = uint64(*block.Seed)
	}
	if block.Workers != nil {
		s.Workers = *block.Workers
	}
	if block.LegacyModel != nil {
		s.LegacyProbabilityModel = *block.LegacyModel
	}
	return s
}

func translateProject(block *projectBlock) (model.Project, error) {
	proj := model.Project{
		ID:        block.ID,
		Name:      block.Name,
		Backlog:   block.Backlog,
		Priority:  defaultPriority,
		DependsOn: block.DependsOn,
	}

	samples, err := floatListFromExpr(block.Throughput, fmt.Sprintf("project %q: throughput", block.Name))
	if err != nil {
		return model.Project{}, err
	}
	proj.ThroughputSamples = samples

	if block.Priority != nil {
		proj.Priority = *block.Priority
	}
	if block.WSJF != nil {
		proj.WSJF = *block.WSJF
	}
	if block.CoDWeekly != nil {
		proj.CoDWeekly = *block.CoDWeekly
	}

	return proj, nil
}

func translateDependency(block *dependencyBlock) (model.Dependency, error) {
	edge := model.Dependency{
		ID:                block.ID,
		Name:              block.Name,
		SourceProject:     block.Source,
		TargetProject:     block.Target,
		OnTimeProbability: defaultOnTimeProbability,
		Criticality:       model.CriticalityMedium,
	}

	if block.OnTimeProbability != nil {
		edge.OnTimeProbability = *block.OnTimeProbability
	}
	if block.DelayImpactDays != nil {
		edge.DelayImpactDays = *block.DelayImpactDays
	}

	dist, err := floatListFromExpr(block.DelayDistribution, fmt.Sprintf("dependency %q: delay_distribution", block.ID))
	if err != nil {
		return model.Dependency{}, err
	}
	edge.DelayDistribution = dist

	if block.Criticality != nil {
		crit, err := model.ParseCriticality(*block.Criticality)
		if err != nil {
			return model.Dependency{}, fmt.Errorf("dependency %q: %w", block.ID, err)
		}
		edge.Criticality = crit
	}

	return edge, nil
}

// floatListFromExpr evaluates an HCL expression and converts it into a float
// slice via cty, so "throughput = [2.8, 3]" and single-element lists both
// decode with a useful error message on type mismatch.
func floatListFromExpr(expr hcl.Expression, name string) ([]float64, error) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w", name, diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	converted, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("%s must be a list of numbers: %w", name, err)
	}

	var out []float64
	if err := gocty.FromCtyValue(converted, &out); err != nil {
		return nil, fmt.Errorf("%s must be a list of numbers: %w", name, err)
	}
	return out, nil
}
