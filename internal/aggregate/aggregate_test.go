package aggregate

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/portfoliosim/internal/model"
)

func trialsOf(id int, name string, values []float64) ProjectTrials {
	return ProjectTrials{
		Project: model.Project{ID: id, Name: name, Priority: 3},
		Trials:  values,
	}
}

func randomTrials(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 + rng.Float64()*20
	}
	return out
}

func TestParallel(t *testing.T) {
	t.Run("aggregate is the exact trialwise max", func(t *testing.T) {
		a := trialsOf(1, "a", randomTrials(997, 1))
		b := trialsOf(2, "b", randomTrials(997, 2))
		c := trialsOf(3, "c", randomTrials(997, 3))

		res, err := Parallel([]ProjectTrials{a, b, c}, 4)
		require.NoError(t, err)
		require.Len(t, res.Aggregate, 997)

		for i := range res.Aggregate {
			want := a.Trials[i]
			for _, other := range [][]float64{b.Trials, c.Trials} {
				if other[i] > want {
					want = other[i]
				}
			}
			require.Equal(t, want, res.Aggregate[i], "trial %d", i)
		}
	})

	t.Run("critical path is the dominating project", func(t *testing.T) {
		slow := trialsOf(1, "slow", []float64{10, 11, 12, 13})
		fast := trialsOf(2, "fast", []float64{1, 2, 3, 4})

		res, err := Parallel([]ProjectTrials{fast, slow}, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"slow"}, res.CriticalPath)
		assert.Equal(t, 1.0, res.LimitingShare[1])
		assert.Equal(t, 0.0, res.LimitingShare[2])
	})

	t.Run("critical path never empty even below threshold", func(t *testing.T) {
		// Six evenly matched projects: each limits ~1/6 < 20% of trials.
		projects := make([]ProjectTrials, 6)
		for p := range projects {
			projects[p] = trialsOf(p+1, string(rune('a'+p)), randomTrials(6000, uint64(p+10)))
		}
		res, err := Parallel(projects, 4)
		require.NoError(t, err)
		assert.NotEmpty(t, res.CriticalPath)
	})

	t.Run("worker count does not change results", func(t *testing.T) {
		projects := []ProjectTrials{
			trialsOf(1, "a", randomTrials(1000, 4)),
			trialsOf(2, "b", randomTrials(1000, 5)),
		}
		one, err := Parallel(projects, 1)
		require.NoError(t, err)
		many, err := Parallel(projects, 8)
		require.NoError(t, err)
		assert.Equal(t, one.Aggregate, many.Aggregate)
		assert.Equal(t, one.CriticalPath, many.CriticalPath)
	})

	t.Run("misaligned arrays are rejected", func(t *testing.T) {
		_, err := Parallel([]ProjectTrials{
			trialsOf(1, "a", make([]float64, 10)),
			trialsOf(2, "b", make([]float64, 11)),
		}, 2)
		assert.ErrorContains(t, err, "not aligned")
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		_, err := Parallel(nil, 2)
		assert.Error(t, err)
	})
}

func TestSequential(t *testing.T) {
	t.Run("aggregate is the exact trialwise sum", func(t *testing.T) {
		a := trialsOf(1, "a", randomTrials(500, 6))
		b := trialsOf(2, "b", randomTrials(500, 7))

		res, err := Sequential([]ProjectTrials{a, b}, 4)
		require.NoError(t, err)
		for i := range res.Aggregate {
			require.InDelta(t, a.Trials[i]+b.Trials[i], res.Aggregate[i], 1e-12)
		}
	})

	t.Run("orders by WSJF descending with priority tiebreak", func(t *testing.T) {
		low := trialsOf(1, "low", []float64{1})
		low.Project.WSJF = 2
		high := trialsOf(2, "high", []float64{1})
		high.Project.WSJF = 9
		urgentTie := trialsOf(3, "urgent-tie", []float64{1})
		urgentTie.Project.WSJF = 2
		urgentTie.Project.Priority = 1

		res, err := Sequential([]ProjectTrials{low, high, urgentTie}, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 1}, res.Order)
	})

	t.Run("missing WSJF is treated as zero", func(t *testing.T) {
		scored := trialsOf(1, "scored", []float64{1})
		scored.Project.WSJF = 0.5
		unscored := trialsOf(2, "unscored", []float64{1})

		res, err := Sequential([]ProjectTrials{unscored, scored}, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, res.Order)
	})

	t.Run("every project is on the critical path", func(t *testing.T) {
		res, err := Sequential([]ProjectTrials{
			trialsOf(1, "a", []float64{1, 2}),
			trialsOf(2, "b", []float64{3, 4}),
		}, 1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, res.CriticalPath)
	})
}

func TestDependencyConstrained(t *testing.T) {
	base := func() ([]ProjectTrials, []int, []float64) {
		api := trialsOf(1, "api", []float64{5, 6, 7, 8})
		app := trialsOf(2, "app", []float64{3, 3, 3, 3})
		app.Project.DependsOn = []int{1}
		delays := []float64{0, 7, 14, 0} // days
		return []ProjectTrials{api, app}, []int{1, 2}, delays
	}

	t.Run("roots keep their base trials", func(t *testing.T) {
		projects, order, delays := base()
		res, err := DependencyConstrained(projects, order, delays, 2)
		require.NoError(t, err)
		assert.Equal(t, projects[0].Trials, res.Adjusted[1])
	})

	t.Run("dependents gate on upstream plus shared delay", func(t *testing.T) {
		projects, order, delays := base()
		res, err := DependencyConstrained(projects, order, delays, 2)
		require.NoError(t, err)

		// adjusted[app][i] = adjusted[api][i] + delay_weeks[i] + base[app][i]
		assert.InDelta(t, 5+0+3, res.Adjusted[2][0], 1e-12)
		assert.InDelta(t, 6+1+3, res.Adjusted[2][1], 1e-12)
		assert.InDelta(t, 7+2+3, res.Adjusted[2][2], 1e-12)
		assert.InDelta(t, 8+0+3, res.Adjusted[2][3], 1e-12)
	})

	t.Run("adjusted never beats baseline for dependents", func(t *testing.T) {
		api := trialsOf(1, "api", randomTrials(2000, 8))
		app := trialsOf(2, "app", randomTrials(2000, 9))
		app.Project.DependsOn = []int{1}
		delays := make([]float64, 2000)

		res, err := DependencyConstrained([]ProjectTrials{api, app}, []int{1, 2}, delays, 4)
		require.NoError(t, err)
		for i := range app.Trials {
			require.GreaterOrEqual(t, res.Adjusted[2][i], app.Trials[i], "trial %d", i)
		}
	})

	t.Run("aggregate is the max across adjusted arrays", func(t *testing.T) {
		projects, order, delays := base()
		res, err := DependencyConstrained(projects, order, delays, 2)
		require.NoError(t, err)
		for i := range res.Aggregate {
			want := res.Adjusted[1][i]
			if res.Adjusted[2][i] > want {
				want = res.Adjusted[2][i]
			}
			require.Equal(t, want, res.Aggregate[i])
		}
	})

	t.Run("diamond gates on the slowest upstream", func(t *testing.T) {
		root := trialsOf(1, "root", []float64{2})
		left := trialsOf(2, "left", []float64{10})
		left.Project.DependsOn = []int{1}
		right := trialsOf(3, "right", []float64{4})
		right.Project.DependsOn = []int{1}
		sink := trialsOf(4, "sink", []float64{1})
		sink.Project.DependsOn = []int{2, 3}

		res, err := DependencyConstrained([]ProjectTrials{root, left, right, sink}, []int{1, 2, 3, 4}, []float64{7}, 1)
		require.NoError(t, err)
		// left finishes at 2+1+10=13, right at 2+1+4=7; sink gates on 13.
		assert.InDelta(t, 13+1+1, res.Adjusted[4][0], 1e-12)
	})

	t.Run("skipped upstream is treated as absent", func(t *testing.T) {
		app := trialsOf(2, "app", []float64{3, 4})
		app.Project.DependsOn = []int{1} // project 1 not simulated

		res, err := DependencyConstrained([]ProjectTrials{app}, []int{1, 2}, []float64{0, 0}, 1)
		require.NoError(t, err)
		assert.Equal(t, app.Trials, res.Adjusted[2])
	})

	t.Run("delay array length must match", func(t *testing.T) {
		projects, order, _ := base()
		_, err := DependencyConstrained(projects, order, []float64{1}, 1)
		assert.ErrorContains(t, err, "delay array")
	})

	t.Run("ordering must cover all projects", func(t *testing.T) {
		projects, _, delays := base()
		_, err := DependencyConstrained(projects, []int{1}, delays, 1)
		assert.ErrorContains(t, err, "did not cover")
	})

	t.Run("worker count does not change results", func(t *testing.T) {
		api := trialsOf(1, "api", randomTrials(3000, 20))
		app := trialsOf(2, "app", randomTrials(3000, 21))
		app.Project.DependsOn = []int{1}
		delays := randomTrials(3000, 22)

		one, err := DependencyConstrained([]ProjectTrials{api, app}, []int{1, 2}, delays, 1)
		require.NoError(t, err)
		many, err := DependencyConstrained([]ProjectTrials{api, app}, []int{1, 2}, delays, 8)
		require.NoError(t, err)
		assert.Equal(t, one.Aggregate, many.Aggregate)
	})
}
