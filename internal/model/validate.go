package model

import "fmt"

// ValidationError reports an input that can never simulate meaningfully.
// It is always returned before any sampling has happened.
type ValidationError struct {
	Subject string // project name or dependency id that failed
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return "invalid portfolio: " + e.Reason
	}
	return fmt.Sprintf("invalid portfolio: %s: %s", e.Subject, e.Reason)
}

func invalid(subject, format string, args ...any) error {
	return &ValidationError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the whole portfolio against the fail-fast rules: non-empty
// project list, positive backlogs, non-empty throughput samples, unique IDs,
// resolvable dependency references and probabilities inside [0,1].
// Cycle detection is separate; it lives with the dependency graph.
func (p *Portfolio) Validate() error {
	if len(p.Projects) == 0 {
		return invalid("", "at least one project is required")
	}

	byID := make(map[int]struct{}, len(p.Projects))
	byName := make(map[string]struct{}, len(p.Projects))
	for i := range p.Projects {
		proj := &p.Projects[i]
		if proj.Name == "" {
			return invalid(fmt.Sprintf("project #%d", proj.ID), "project name must not be empty")
		}
		if _, dup := byID[proj.ID]; dup {
			return invalid(proj.Name, "duplicate project id %d", proj.ID)
		}
		byID[proj.ID] = struct{}{}
		if _, dup := byName[proj.Name]; dup {
			return invalid(proj.Name, "duplicate project name")
		}
		byName[proj.Name] = struct{}{}

		if proj.Backlog <= 0 {
			return invalid(proj.Name, "backlog must be positive, got %d", proj.Backlog)
		}
		if len(proj.ThroughputSamples) == 0 {
			return invalid(proj.Name, "throughput samples must not be empty")
		}
		for _, s := range proj.ThroughputSamples {
			if s <= 0 {
				return invalid(proj.Name, "throughput samples must be positive, got %v", s)
			}
		}
	}

	// depends_on references are by project ID and must resolve.
	for i := range p.Projects {
		proj := &p.Projects[i]
		for _, dep := range proj.DependsOn {
			if dep == proj.ID {
				return invalid(proj.Name, "project cannot depend on itself")
			}
			if _, ok := byID[dep]; !ok {
				return invalid(proj.Name, "depends_on references unknown project id %d", dep)
			}
		}
	}

	for i := range p.Dependencies {
		edge := &p.Dependencies[i]
		if edge.ID == "" {
			return invalid("", "dependency #%d has no id", i)
		}
		if _, ok := byName[edge.SourceProject]; !ok {
			return invalid(edge.ID, "source references unknown project %q", edge.SourceProject)
		}
		if _, ok := byName[edge.TargetProject]; !ok {
			return invalid(edge.ID, "target references unknown project %q", edge.TargetProject)
		}
		if edge.OnTimeProbability < 0 || edge.OnTimeProbability > 1 {
			return invalid(edge.ID, "on_time_probability must be within [0,1], got %v", edge.OnTimeProbability)
		}
		if edge.DelayImpactDays < 0 {
			return invalid(edge.ID, "delay_impact_days must not be negative, got %v", edge.DelayImpactDays)
		}
		for _, d := range edge.DelayDistribution {
			if d < 0 {
				return invalid(edge.ID, "delay distribution samples must not be negative, got %v", d)
			}
		}
	}

	return nil
}
