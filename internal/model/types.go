// Package model defines the input types for a portfolio simulation run and
// the validation rules that must pass before any sampling happens.
package model

import (
	"fmt"
	"strings"
)

// Criticality classifies how damaging a dependency slip is to its target.
type Criticality int

const (
	CriticalityLow Criticality = iota
	CriticalityMedium
	CriticalityHigh
	CriticalityCritical
)

// ParseCriticality converts an input string (case-insensitive) into a
// Criticality. Empty input yields the MEDIUM default.
func ParseCriticality(s string) (Criticality, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return CriticalityMedium, nil
	case "LOW":
		return CriticalityLow, nil
	case "MEDIUM":
		return CriticalityMedium, nil
	case "HIGH":
		return CriticalityHigh, nil
	case "CRITICAL":
		return CriticalityCritical, nil
	default:
		return CriticalityMedium, fmt.Errorf("unrecognized criticality %q: must be LOW, MEDIUM, HIGH or CRITICAL", s)
	}
}

// String returns the canonical upper-case name.
func (c Criticality) String() string {
	switch c {
	case CriticalityLow:
		return "LOW"
	case CriticalityHigh:
		return "HIGH"
	case CriticalityCritical:
		return "CRITICAL"
	default:
		return "MEDIUM"
	}
}

// Weight returns the multiplier used when ranking dependency edges.
func (c Criticality) Weight() float64 {
	switch c {
	case CriticalityLow:
		return 0.5
	case CriticalityHigh:
		return 2.0
	case CriticalityCritical:
		return 3.0
	default:
		return 1.0
	}
}

// Project is one deliverable in the portfolio. Throughput samples are
// historical weekly completion counts; backlog is the remaining item count.
type Project struct {
	ID                int
	Name              string
	Backlog           int
	ThroughputSamples []float64

	// Priority is ascending urgency (lower is more urgent), default 3.
	Priority int
	// WSJF is the weighted-shortest-job-first score; 0 means not scored.
	WSJF float64
	// CoDWeekly is the weekly cost of delay; 0 means not tracked.
	CoDWeekly float64

	// DependsOn lists upstream project IDs that must finish first.
	DependsOn []int
}

// Dependency is a cross-project handoff edge. Source and Target reference
// projects by display name, not ID.
type Dependency struct {
	ID   string
	Name string

	SourceProject string
	TargetProject string

	// OnTimeProbability is the chance the handoff lands on schedule, in [0,1].
	OnTimeProbability float64
	// DelayImpactDays is the expected slip when the handoff is late.
	DelayImpactDays float64
	// DelayDistribution, when non-empty, replaces the impact-band model with
	// empirical delay samples drawn uniformly with replacement.
	DelayDistribution []float64

	Criticality Criticality
}

// Portfolio is the complete input for one simulation call. The engine never
// retains it past the call.
type Portfolio struct {
	Projects     []Project
	Dependencies []Dependency
}
