package agent

import (
	"testing"

	"regi/game"
	"regi/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type uniformNetwork struct{}

func (uniformNetwork) Predict(_ []float32) ([]float32, float32, error) {
	p := make([]float32, searcher.ActionSpace)
	for i := range p {
		p[i] = 1
	}
	return p, 0, nil
}

func (n uniformNetwork) BatchPredict(xs [][]float32) ([][]float32, []float32, error) {
	ps := make([][]float32, len(xs))
	for i := range xs {
		ps[i], _, _ = n.Predict(nil)
	}
	return ps, make([]float32, len(xs)), nil
}

func TestAgent(t *testing.T) {
	t.Run("answers with an index into the candidates", func(t *testing.T) {
		gs, err := game.NewGameState(2, game.NewStandardRules(), rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		m := searcher.NewMCTS(uniformNetwork{}, searcher.WithSeed(1))
		a := New(m, searcher.NewTrajectory())
		d := gs.Decision()

		i, err := a.ChooseAttack(gs.ExportPhase(), d.Combos)

		require.NoError(t, err)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, len(d.Combos))
		require.Equal(t, 1, m.Len())
	})

	t.Run("plays a game to the end and observes the outcome", func(t *testing.T) {
		gs, err := game.NewGameState(2, game.NewStandardRules(), rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		m := searcher.NewMCTS(uniformNetwork{}, searcher.WithSeed(3))
		traj := searcher.NewTrajectory()
		a := New(m, traj)

		require.NoError(t, gs.Run([]game.Strategy{a, a}, 10000))
		require.True(t, gs.Ended())
		require.NoError(t, a.Observe(gs.ExportPhase()))

		s, ok := m.Lookup(gs.ExportPhase())
		require.True(t, ok)
		require.Equal(t, searcher.Unseen, m.Status(s))
	})

	t.Run("observing a running game does nothing", func(t *testing.T) {
		gs, err := game.NewGameState(3, game.NewStandardRules(), rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		m := searcher.NewMCTS(uniformNetwork{}, searcher.WithSeed(1))

		require.NoError(t, New(m, searcher.NewTrajectory()).Observe(gs.ExportPhase()))
		require.Zero(t, m.Len())
	})
}

func TestSelectors(t *testing.T) {
	policy := make([]float64, searcher.ActionSpace)
	policy[3], policy[5], policy[9] = 0.2, 0.7, 0.1

	t.Run("greedy takes the largest legal entry", func(t *testing.T) {
		selector := NewGreedySelector()

		require.Equal(t, 5, selector(policy, []int{3, 5, 9}))
		require.Equal(t, 3, selector(policy, []int{3, 9}))
		require.Equal(t, -1, selector(policy, nil))
	})

	t.Run("sampling only returns legal actions", func(t *testing.T) {
		selector := NewTrainingSelector(1.0, rand.New(rand.NewSource(4)))
		counts := map[int]int{}

		for i := 0; i < 1000; i++ {
			counts[selector(policy, []int{3, 5})]++
		}

		require.Len(t, counts, 2)
		require.Greater(t, counts[5], counts[3])
	})

	t.Run("zero mass samples uniformly", func(t *testing.T) {
		selector := NewTrainingSelector(0.5, rand.New(rand.NewSource(4)))

		for i := 0; i < 20; i++ {
			require.Contains(t, []int{0, 1}, selector(make([]float64, searcher.ActionSpace), []int{0, 1}))
		}
	})

	t.Run("low temperature sharpens the distribution", func(t *testing.T) {
		adjusted := adjustTemperature(policy, []int{3, 5}, 0.1)

		require.Greater(t, adjusted[1], 0.99)
	})
}
