package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"regi/network"
	"regi/searcher"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	net := network.NewUniform(searcher.ActionSpace)

	t.Run("plays every episode", func(t *testing.T) {
		pool := NewPool(3, 2, func(worker int) Engine {
			return newSelfPlay(net, uint64(worker+1))
		})
		var mu sync.Mutex
		ids := map[string]bool{}

		stats, err := pool.Run(context.Background(), 5, func(ep *Episode) error {
			mu.Lock()
			defer mu.Unlock()
			ids[ep.ID] = true
			if ep.Worker < 0 || ep.Worker >= 3 {
				return errors.New("episode from an unknown worker")
			}
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, 5, stats.Completed)
		require.Zero(t, stats.Abandoned)
		require.Len(t, ids, 5)
	})

	t.Run("counts abandoned episodes", func(t *testing.T) {
		pool := NewPool(2, 1, func(worker int) Engine {
			return newSelfPlay(brokenNetwork{}, uint64(worker+1))
		})

		stats, err := pool.Run(context.Background(), 4, func(*Episode) error {
			return nil
		})

		require.NoError(t, err)
		require.Zero(t, stats.Completed)
		require.Equal(t, 4, stats.Abandoned)
	})

	t.Run("stops on sink errors", func(t *testing.T) {
		errSink := errors.New("disk full")
		pool := NewPool(2, 1, func(worker int) Engine {
			return newSelfPlay(net, uint64(worker+1))
		})

		_, err := pool.Run(context.Background(), 10, func(*Episode) error {
			return errSink
		})

		require.ErrorIs(t, err, errSink)
	})

	t.Run("panics without workers", func(t *testing.T) {
		require.Panics(t, func() {
			NewPool(0, 1, nil)
		})
	})
}
