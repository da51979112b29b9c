package searcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatcher(t *testing.T) {
	t.Run("flushes in chunks of at most size", func(t *testing.T) {
		var calls [][]StateId
		b := NewBatcher(3, func(states []StateId) error {
			calls = append(calls, append([]StateId(nil), states...))
			return nil
		})
		for s := StateId(0); s < 7; s++ {
			require.NoError(t, b.Enqueue(s))
		}

		require.NoError(t, b.Flush())

		require.Equal(t, [][]StateId{{0, 1, 2}, {3, 4, 5}, {6}}, calls)
		require.Zero(t, b.Pending())
	})

	t.Run("panics with a non positive size", func(t *testing.T) {
		require.Panics(t, func() {
			NewBatcher(0, nil)
		})
	})

	t.Run("returns evaluation errors", func(t *testing.T) {
		b := NewBatcher(2, func([]StateId) error {
			return errNetwork
		})
		require.NoError(t, b.Enqueue(0))

		require.ErrorIs(t, b.Flush(), errNetwork)
	})

	t.Run("failed chunks stay queued for the next flush", func(t *testing.T) {
		fail := true
		var calls [][]StateId
		b := NewBatcher(2, func(states []StateId) error {
			calls = append(calls, append([]StateId(nil), states...))
			if fail {
				return errNetwork
			}
			return nil
		})
		require.NoError(t, b.Enqueue(0))
		require.NoError(t, b.Enqueue(1))

		require.ErrorIs(t, b.Enqueue(2), errNetwork)
		require.Equal(t, 3, b.Pending())

		fail = false
		require.NoError(t, b.Flush())

		require.Equal(t, [][]StateId{{0, 1}, {0, 1}, {2}}, calls)
		require.Zero(t, b.Pending())
	})
}

func TestSearchBatched(t *testing.T) {
	t.Run("fifth enqueue flushes the four pending states", func(t *testing.T) {
		net := &mockNetwork{}
		m := NewMCTS(net, WithSeed(1), WithBatched(), WithBatchSize(4))
		var ids []StateId
		for i := 0; i < 4; i++ {
			st := mockState{key: fmt.Sprintf("s%d", i), legal: []int{1, 2}}
			_, err := m.Search(NewTrajectory(), st, st.legal)
			require.NoError(t, err)
			s, _ := m.Lookup(st)
			ids = append(ids, s)
			require.Equal(t, Fanout, m.Status(s))
		}
		require.Empty(t, net.batches)
		require.Equal(t, 4, m.Pending())

		_, err := m.Search(NewTrajectory(), mockState{key: "s4", legal: []int{1}}, []int{1})
		require.NoError(t, err)

		require.Len(t, net.batches, 1)
		require.Len(t, net.batches[0], 4)
		for _, s := range ids {
			require.Equal(t, Predicted, m.Status(s))
		}
		require.Equal(t, ids, m.Predicted())
		require.Equal(t, 1, m.Pending())
		require.Zero(t, net.predicts)
	})

	t.Run("forced flush predicts fewer than a batch", func(t *testing.T) {
		net := &mockNetwork{}
		m := NewMCTS(net, WithSeed(1), WithBatched(), WithBatchSize(4))
		for i := 0; i < 3; i++ {
			st := mockState{key: fmt.Sprintf("s%d", i), legal: []int{1}}
			_, err := m.Search(NewTrajectory(), st, st.legal)
			require.NoError(t, err)
		}

		require.NoError(t, m.Flush())

		require.Len(t, net.batches, 1)
		require.Len(t, net.batches[0], 3)
		require.Zero(t, m.Pending())
	})

	t.Run("states survive a failed batch predict", func(t *testing.T) {
		net := &mockNetwork{err: errNetwork}
		m := NewMCTS(net, WithSeed(1), WithBatched(), WithBatchSize(4))
		st := mockState{key: "s0", legal: []int{1}}
		_, err := m.Search(NewTrajectory(), st, st.legal)
		require.NoError(t, err)
		s, _ := m.Lookup(st)

		require.ErrorIs(t, m.Flush(), errNetwork)
		require.Equal(t, Fanout, m.Status(s))
		require.Equal(t, 1, m.Pending())

		net.err = nil
		require.NoError(t, m.Flush())

		require.Equal(t, Predicted, m.Status(s))
		require.Zero(t, m.Pending())
		require.Len(t, net.batches, 2)
	})

	t.Run("fanout states try each action before repeating", func(t *testing.T) {
		m := NewMCTS(&mockNetwork{}, WithSeed(3), WithBatched(), WithBatchSize(8))
		root := mockState{key: "root", legal: []int{1, 2}}

		first, err := m.Search(NewTrajectory(), root, root.legal)
		require.NoError(t, err)
		second, err := m.Search(NewTrajectory(), root, root.legal)
		require.NoError(t, err)

		s, _ := m.Lookup(root)
		require.Equal(t, Fanout, m.Status(s))
		require.ElementsMatch(t, []int{1, 2}, []int{first, second})
	})

	t.Run("flushed values reach predicted parents", func(t *testing.T) {
		m := NewMCTS(&mockNetwork{value: 0.2}, WithSeed(1), WithBatched(), WithBatchSize(2))
		traj := NewTrajectory()
		root := mockState{key: "root", legal: []int{7}}
		_, err := m.Search(traj, root, root.legal)
		require.NoError(t, err)
		_, err = m.Search(traj, mockState{key: "leaf", legal: []int{1}}, []int{1})
		require.NoError(t, err)

		require.NoError(t, m.Flush())

		r, _ := m.Lookup(root)
		q, ok := m.Q(r, 7)
		require.True(t, ok)
		require.InDelta(t, 0.2, q, 1e-6)
		require.Equal(t, 1, m.Visits(r))
	})
}
