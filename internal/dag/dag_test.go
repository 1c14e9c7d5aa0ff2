package dag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/portfoliosim/internal/model"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode(1)
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes[1]
	require.True(t, ok)
	assert.Equal(t, 1, nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode(1) // idempotent
	assert.Len(t, g.nodes, 1)
	assert.Len(t, g.order, 1)

	g.AddNode(2)
	assert.Len(t, g.nodes, 2)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode(1)
		g.AddNode(2)

		err := g.AddEdge(1, 2) // 2 depends on 1
		require.NoError(t, err)

		assert.Contains(t, g.nodes[1].dependents, 2)
		assert.Contains(t, g.nodes[2].deps, 1)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode(1)

		assert.ErrorContains(t, g.AddEdge(99, 1), "source node not found")
		assert.ErrorContains(t, g.AddEdge(1, 99), "destination node not found")
		assert.ErrorContains(t, g.AddEdge(1, 1), "self-referential edge")
	})
}

func TestTopoSort(t *testing.T) {
	t.Run("linear chain", func(t *testing.T) {
		g := New()
		g.AddNode(3)
		g.AddNode(2)
		g.AddNode(1)
		require.NoError(t, g.AddEdge(1, 2))
		require.NoError(t, g.AddEdge(2, 3))

		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("declared order breaks ties", func(t *testing.T) {
		g := New()
		for _, id := range []int{5, 3, 8} {
			g.AddNode(id)
		}

		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []int{5, 3, 8}, order)
	})

	t.Run("diamond", func(t *testing.T) {
		g := New()
		for id := 1; id <= 4; id++ {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge(1, 2))
		require.NoError(t, g.AddEdge(1, 3))
		require.NoError(t, g.AddEdge(2, 4))
		require.NoError(t, g.AddEdge(3, 4))

		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, order)
	})

	t.Run("cycle yields error", func(t *testing.T) {
		g := New()
		g.AddNode(1)
		g.AddNode(2)
		require.NoError(t, g.AddEdge(1, 2))
		require.NoError(t, g.AddEdge(2, 1))

		_, err := g.TopoSort()
		assert.ErrorContains(t, err, "cycle")
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		for id := 1; id <= 4; id++ {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge(1, 2))
		require.NoError(t, g.AddEdge(2, 3))
		require.NoError(t, g.AddEdge(1, 3)) // Transitive edge
		require.NoError(t, g.AddEdge(3, 4))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := New()
		for id := 1; id <= 4; id++ {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge(1, 2))
		require.NoError(t, g.AddEdge(2, 3))
		require.NoError(t, g.AddEdge(3, 4))
		require.NoError(t, g.AddEdge(4, 1))
		assert.ErrorContains(t, g.DetectCycles(), "cycle detected")
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		g.AddNode(1)
		g.AddNode(2)
		require.NoError(t, g.AddEdge(1, 2))

		g.AddNode(10)
		g.AddNode(11)
		require.NoError(t, g.AddEdge(10, 11))
		require.NoError(t, g.AddEdge(11, 10))

		assert.ErrorContains(t, g.DetectCycles(), "cycle detected")
	})
}

func TestBuild(t *testing.T) {
	t.Run("builds edges from depends_on", func(t *testing.T) {
		projects := []model.Project{
			{ID: 1, Name: "a", Backlog: 1, ThroughputSamples: []float64{1}},
			{ID: 2, Name: "b", Backlog: 1, ThroughputSamples: []float64{1}, DependsOn: []int{1}},
		}
		g, err := Build(context.Background(), projects)
		require.NoError(t, err)

		deps, err := g.Dependencies(2)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, deps)
	})

	t.Run("cyclic depends_on is a validation error", func(t *testing.T) {
		projects := []model.Project{
			{ID: 1, Name: "a", Backlog: 1, ThroughputSamples: []float64{1}, DependsOn: []int{2}},
			{ID: 2, Name: "b", Backlog: 1, ThroughputSamples: []float64{1}, DependsOn: []int{1}},
		}
		_, err := Build(context.Background(), projects)
		require.Error(t, err)

		var verr *model.ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}
