package experiments

import (
	"context"
	"fmt"
	"time"

	"regi/config"
	"regi/experiments/metrics"
	"regi/searcher"

	"github.com/rs/zerolog/log"
)

var DefaultBatchSizes = []int{1, 4, 16, 64}

// RunThroughput plays one episode per search configuration, synchronous
// first and then batched with each batch size, and measures how many states
// the network evaluates per second. Every configuration deals the same game.
func RunThroughput(ctx context.Context, cfg config.Config, net searcher.Network, batchSizes []int) ([]metrics.ThroughputRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(batchSizes) == 0 {
		batchSizes = DefaultBatchSizes
	}

	configs := []config.Config{}
	sync := cfg
	sync.Search.Evaluation = config.EvaluationSync
	configs = append(configs, sync)
	for _, size := range batchSizes {
		batched := cfg
		batched.Search.Evaluation = config.EvaluationBatched
		batched.Search.BatchSize = size
		if err := batched.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, batched)
	}

	log.Info().Msg("starting throughput experiment...")
	records := []metrics.ThroughputRecord{}
	for i, c := range configs {
		log.Info().Msgf("starting configuration %d of %d: evaluation=%s batch=%d", i+1, len(configs), c.Search.Evaluation, c.Search.BatchSize)

		start := time.Now()
		ep, err := NewSelfPlay(c, net, 0).Play(ctx)
		if err != nil {
			return records, fmt.Errorf("throughput configuration %d: %w", i+1, err)
		}
		record := metrics.ThroughputRecord{
			Batched:   c.Search.Evaluation == config.EvaluationBatched,
			BatchSize: c.Search.BatchSize,
			Moves:     len(ep.Moves),
			Duration:  time.Since(start),
		}
		if !record.Batched {
			record.BatchSize = 1
		}
		for _, mm := range ep.Moves {
			record.Simulations += mm.Simulations
			record.Predictions += mm.Predictions
			record.Flushes += mm.Flushes
		}
		records = append(records, record)

		log.Info().Msgf("completed configuration %d with %.1f predictions/s", i+1, record.PredictionsPerSecond())
	}
	log.Info().Msg("completed throughput experiment")

	if cfg.Metrics.Dir != "" {
		writer, err := metrics.NewWriter(cfg.Metrics.Dir, "throughput")
		if err != nil {
			return records, fmt.Errorf("failed to create experiment writer: %w", err)
		}
		if err := writer.WriteThroughputRecords(records); err != nil {
			return records, err
		}
		log.Info().Msg("stored throughput records")
	}
	return records, nil
}
