package experiments

import (
	"context"
	"fmt"
	"time"

	"regi/config"
	"regi/engine"
	"regi/experiments/metrics"
	"regi/game"
	"regi/network"
	"regi/searcher"
	"regi/storage"

	"github.com/rs/zerolog/log"
)

// Summary describes a finished self-play run.
type Summary struct {
	Episodes   int
	Abandoned  int
	Examples   int
	Victories  int
	MeanValue  float64
	Duration   time.Duration
	RecordsDir string // Empty when no records were written
}

func NewNetwork(cfg config.Search) (network.Network, error) {
	return network.New(cfg.Network, game.FeatureSize, searcher.ActionSpace, cfg.NetworkSeed)
}

// searchEvaluate scores terminal states met during search. The relative mode
// needs an episode's start phase, so search falls back to plain health.
func searchEvaluate(mode string) game.Evaluate {
	if mode == engine.ValueWin {
		return game.EvaluateWin
	}
	return game.EvaluateHP
}

func createMCTS(cfg config.Config, net searcher.Network, seed uint64) *searcher.MCTS {
	s := cfg.Search
	options := []searcher.Option{
		searcher.WithPUCT(s.PUCT),
		searcher.WithEpsilon(s.Epsilon),
		searcher.WithDepthBound(s.DepthBound),
		searcher.WithBatchSize(s.BatchSize),
		searcher.WithSeed(seed),
		searcher.WithOutcome(engine.Outcome(searchEvaluate(cfg.SelfPlay.Value))),
		searcher.WithMetrics(metrics.NewCollector()),
	}
	if s.Evaluation == config.EvaluationBatched {
		options = append(options, searcher.WithBatched())
	}
	if s.Noise {
		options = append(options, searcher.WithNoise(s.NoiseAlpha, s.NoiseWeight))
	}
	if s.RandomTieBreak {
		options = append(options, searcher.WithRandomTieBreak())
	}
	return searcher.NewMCTS(net, options...)
}

// NewSelfPlay builds the engine of one worker. Workers get distinct seeds so
// they deal different games.
func NewSelfPlay(cfg config.Config, net searcher.Network, worker int) *engine.SelfPlay {
	seed := cfg.SelfPlay.Seed + uint64(worker)
	p := cfg.SelfPlay
	return engine.NewSelfPlay(createMCTS(cfg, net, seed), engine.Config{
		Players:     p.Players,
		Simulations: p.Simulations,
		Cutoff:      p.Cutoff,
		Temperature: p.Temperature,
		Value:       p.Value,
		Seed:        seed,
	})
}

type recorder struct {
	store   *storage.ExampleStore
	summary Summary
	games   []metrics.GameRecord
	moves   []metrics.MoveRecord
	total   float64
}

func (r *recorder) add(ep *engine.Episode) error {
	if r.store != nil {
		if err := r.store.Put(ep.ID, ep.Examples); err != nil {
			return fmt.Errorf("failed to store episode %s: %w", ep.ID, err)
		}
	}
	r.summary.Episodes++
	r.summary.Examples += len(ep.Examples)
	if ep.Game.EndValue == game.Victory {
		r.summary.Victories++
	}
	r.total += ep.Game.Value
	r.summary.MeanValue = r.total / float64(r.summary.Episodes)

	r.games = append(r.games, metrics.GameRecord{Worker: ep.Worker, GameMetric: ep.Game})
	for _, mm := range ep.Moves {
		r.moves = append(r.moves, metrics.MoveRecord{Game: ep.ID, MoveMetric: mm})
	}
	log.Info().Msgf("stored episode %d with %d examples", r.summary.Episodes, len(ep.Examples))
	return nil
}

func (r *recorder) write(dir, name string) error {
	if dir == "" {
		return nil
	}
	writer, err := metrics.NewWriter(dir, name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteGameRecords(r.games); err != nil {
		return err
	}
	log.Info().Msg("stored game records")
	if err := writer.WriteMoveRecords(r.moves); err != nil {
		return err
	}
	log.Info().Msg("stored move records")
	r.summary.RecordsDir = writer.Dir()
	return nil
}

// RunSelfPlay plays the configured number of episodes on parallel workers
// sharing net, and stores their examples. A nil store keeps nothing.
func RunSelfPlay(ctx context.Context, cfg config.Config, net searcher.Network, store *storage.ExampleStore) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	start := time.Now()
	p := cfg.SelfPlay
	log.Info().Msgf("starting self-play with %d workers for %d episodes...", p.Workers, p.Episodes)

	r := &recorder{store: store}
	pool := engine.NewPool(p.Workers, p.QueueSize, func(worker int) engine.Engine {
		return NewSelfPlay(cfg, net, worker)
	})
	stats, err := pool.Run(ctx, p.Episodes, func(ep *engine.Episode) error {
		return r.add(ep)
	})
	r.summary.Abandoned = stats.Abandoned
	r.summary.Duration = time.Since(start)
	if err != nil {
		return r.summary, fmt.Errorf("self-play stopped after %d episodes: %w", stats.Completed, err)
	}
	log.Info().Msgf("completed self-play: %d episodes, %d abandoned, %d examples", stats.Completed, stats.Abandoned, r.summary.Examples)

	if err := r.write(cfg.Metrics.Dir, "selfplay"); err != nil {
		return r.summary, err
	}
	return r.summary, nil
}

// RunResume continues one game from a phase snapshot.
func RunResume(ctx context.Context, cfg config.Config, net searcher.Network, store *storage.ExampleStore, snapshot string) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	start := time.Now()
	log.Info().Msg("resuming self-play from snapshot...")

	r := &recorder{store: store}
	ep, err := NewSelfPlay(cfg, net, 0).Resume(ctx, snapshot)
	if err != nil {
		return r.summary, err
	}
	if err := r.add(ep); err != nil {
		return r.summary, err
	}
	r.summary.Duration = time.Since(start)
	if err := r.write(cfg.Metrics.Dir, "resume"); err != nil {
		return r.summary, err
	}
	return r.summary, nil
}
