package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Pool runs self-play episodes on parallel workers, each owning a private
// engine, and hands finished episodes to a single consumer.
type Pool struct {
	workers   int
	queueSize int
	newEngine func(worker int) Engine
}

type PoolStats struct {
	Completed int
	Abandoned int
}

func NewPool(workers, queueSize int, newEngine func(worker int) Engine) *Pool {
	if workers < 1 {
		panic("need at least one worker")
	}
	if queueSize < 1 {
		queueSize = workers
	}
	return &Pool{workers: workers, queueSize: queueSize, newEngine: newEngine}
}

// Run plays the given number of episodes and passes each finished one to
// sink, in completion order. Abandoned episodes still use up their slot. A
// sink error stops the workers and is returned.
func (p *Pool) Run(ctx context.Context, episodes int, sink func(*Episode) error) (PoolStats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	results := make(chan *Episode, p.queueSize)
	var remaining atomic.Int64
	remaining.Store(int64(episodes))
	var abandoned atomic.Int32

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			eng := p.newEngine(w)
			for remaining.Add(-1) >= 0 {
				ep, err := eng.Play(ctx)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if errors.Is(err, ErrAbandoned) {
					abandoned.Add(1)
					continue
				}
				if err != nil {
					return err
				}
				ep.Worker = w
				select {
				case results <- ep:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var stats PoolStats
	var sinkErr error
	for ep := range results {
		if sinkErr != nil {
			continue // Drain until the workers stop
		}
		if err := sink(ep); err != nil {
			sinkErr = err
			cancel()
			continue
		}
		stats.Completed++
	}
	stats.Abandoned = int(abandoned.Load())

	err := g.Wait()
	if sinkErr != nil {
		return stats, sinkErr
	}
	if err != nil {
		log.Warn().Err(err).Msg("self-play pool stopped early")
	}
	return stats, err
}
