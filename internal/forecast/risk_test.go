package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/portfoliosim/internal/model"
)

func TestRankCriticalEdges(t *testing.T) {
	t.Run("orders by score descending", func(t *testing.T) {
		edges := []model.Dependency{
			{ID: "safe", Name: "Safe Handoff", OnTimeProbability: 0.95, DelayImpactDays: 3, Criticality: model.CriticalityLow},
			{ID: "bad", Name: "Risky Handoff", OnTimeProbability: 0.3, DelayImpactDays: 20, Criticality: model.CriticalityCritical},
			{ID: "mid", Name: "Middling", OnTimeProbability: 0.6, DelayImpactDays: 12, Criticality: model.CriticalityMedium},
		}

		ranked := rankCriticalEdges(edges)
		require.Len(t, ranked, 3)
		assert.Equal(t, "bad (Risky Handoff)", ranked[0])
		assert.Equal(t, "mid (Middling)", ranked[1])
		assert.Equal(t, "safe (Safe Handoff)", ranked[2])
	})

	t.Run("small impacts are floored at ten days", func(t *testing.T) {
		// Same probability and weight: a 1-day and a 9-day impact tie at the
		// 10-day floor, so declared order is preserved.
		edges := []model.Dependency{
			{ID: "a", Name: "A", OnTimeProbability: 0.5, DelayImpactDays: 1},
			{ID: "b", Name: "B", OnTimeProbability: 0.5, DelayImpactDays: 9},
		}
		ranked := rankCriticalEdges(edges)
		assert.Equal(t, []string{"a (A)", "b (B)"}, ranked)
	})

	t.Run("caps at five entries", func(t *testing.T) {
		edges := make([]model.Dependency, 8)
		for i := range edges {
			edges[i] = model.Dependency{ID: string(rune('a' + i)), OnTimeProbability: 0.5}
		}
		assert.Len(t, rankCriticalEdges(edges), 5)
	})
}

func TestDependencyRiskScore(t *testing.T) {
	t.Run("zero edges scores zero", func(t *testing.T) {
		assert.Zero(t, dependencyRiskScore([]float64{1, 2}, 0))
		assert.Zero(t, dependencyRiskScore(nil, 3))
	})

	t.Run("all-delayed heavy slow graph maxes out", func(t *testing.T) {
		delays := make([]float64, 100)
		for i := range delays {
			delays[i] = 60 // every trial delayed, mean over the 30-day cap
		}
		score := dependencyRiskScore(delays, 20)
		// delayed=40, magnitude=30, spread=0 (no variance), edges=10
		assert.InDelta(t, 80.0, score, 1e-9)
	})

	t.Run("no delays scores only the edge-count term", func(t *testing.T) {
		score := dependencyRiskScore(make([]float64, 100), 5)
		assert.InDelta(t, 5.0, score, 1e-9)
	})
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, "LOW", riskLevel(0))
	assert.Equal(t, "LOW", riskLevel(24.9))
	assert.Equal(t, "MEDIUM", riskLevel(25))
	assert.Equal(t, "HIGH", riskLevel(50))
	assert.Equal(t, "CRITICAL", riskLevel(75))
	assert.Equal(t, "CRITICAL", riskLevel(100))
}

func TestOddsRatio(t *testing.T) {
	assert.Equal(t, "1 in 2", oddsRatio(0.5))
	assert.Equal(t, "1 in 4", oddsRatio(0.25))
	assert.Equal(t, "1 in 1", oddsRatio(1.0))
	assert.Equal(t, "1 in >1000000", oddsRatio(0))
}

func TestDependencyRecommendations(t *testing.T) {
	t.Run("no edges", func(t *testing.T) {
		recs := dependencyRecommendations(1.0, 0, 0, 0)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "No cross-project dependencies")
	})

	t.Run("every threshold trips", func(t *testing.T) {
		recs := dependencyRecommendations(0.2, 8, 15, 1.5)
		assert.Len(t, recs, 4)
	})

	t.Run("healthy graph gets the monitor default", func(t *testing.T) {
		recs := dependencyRecommendations(0.9, 2, 1.0, 0.4)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "moderate")
	})
}
