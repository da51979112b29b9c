package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"regi/config"
	"regi/experiments"
	"regi/experiments/metrics"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// searchFlags are the overrides shared by every command that searches.
type searchFlags struct {
	episodes    int
	workers     int
	simulations int
	players     int
	batched     bool
	batchSize   int
	inMemory    bool
	recordsDir  string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&f.episodes, "episodes", "n", 0, "episodes to play")
	flags.IntVarP(&f.workers, "workers", "w", 0, "parallel self-play workers")
	flags.IntVarP(&f.simulations, "simulations", "s", 0, "simulations per move")
	flags.IntVarP(&f.players, "players", "p", 0, "players per game, 0 for a random table")
	flags.BoolVar(&f.batched, "batched", false, "evaluate new states in batches")
	flags.IntVar(&f.batchSize, "batch-size", 0, "states per network batch")
	flags.BoolVar(&f.inMemory, "in-memory", false, "keep examples in memory only")
	flags.StringVar(&f.recordsDir, "records-dir", "", "directory for CSV records, \"-\" disables them")
}

func (f *searchFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("episodes") {
		cfg.SelfPlay.Episodes = f.episodes
	}
	if flags.Changed("workers") {
		cfg.SelfPlay.Workers = f.workers
	}
	if flags.Changed("simulations") {
		cfg.SelfPlay.Simulations = f.simulations
	}
	if flags.Changed("players") {
		cfg.SelfPlay.Players = f.players
	}
	if flags.Changed("batched") {
		cfg.Search.Evaluation = config.EvaluationSync
		if f.batched {
			cfg.Search.Evaluation = config.EvaluationBatched
		}
	}
	if flags.Changed("batch-size") {
		cfg.Search.BatchSize = f.batchSize
	}
	if flags.Changed("in-memory") {
		cfg.Storage.InMemory = f.inMemory
	}
	if flags.Changed("records-dir") {
		cfg.Metrics.Dir = f.recordsDir
		if f.recordsDir == "-" {
			cfg.Metrics.Dir = ""
		}
	}
	return cfg.Validate()
}

func (a *app) selfPlayCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Play self-play episodes and store their training examples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.apply(cmd, &a.cfg); err != nil {
				return err
			}
			net, err := experiments.NewNetwork(a.cfg.Search)
			if err != nil {
				return err
			}
			store, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := experiments.RunSelfPlay(cmd.Context(), a.cfg, net, store)
			a.printSummary(summary)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) resumeCmd() *cobra.Command {
	var f searchFlags
	var snapshot, snapshotFile string
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue a game from an exported phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if snapshotFile != "" {
				data, err := os.ReadFile(snapshotFile)
				if err != nil {
					return fmt.Errorf("failed to read snapshot: %w", err)
				}
				snapshot = string(data)
			}
			if snapshot == "" {
				return fmt.Errorf("%w: resume needs --snapshot or --snapshot-file", config.ErrInvalid)
			}
			if err := f.apply(cmd, &a.cfg); err != nil {
				return err
			}
			net, err := experiments.NewNetwork(a.cfg.Search)
			if err != nil {
				return err
			}
			store, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := experiments.RunResume(cmd.Context(), a.cfg, net, store, strings.TrimSpace(snapshot))
			a.printSummary(summary)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "phase string to resume from")
	cmd.Flags().StringVar(&snapshotFile, "snapshot-file", "", "file holding the phase string")
	return cmd
}

func (a *app) throughputCmd() *cobra.Command {
	var f searchFlags
	var sizes []int
	cmd := &cobra.Command{
		Use:   "throughput",
		Short: "Compare network throughput of sync and batched search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.apply(cmd, &a.cfg); err != nil {
				return err
			}
			net, err := experiments.NewNetwork(a.cfg.Search)
			if err != nil {
				return err
			}
			records, err := experiments.RunThroughput(cmd.Context(), a.cfg, net, sizes)
			a.printThroughput(records)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().IntSliceVar(&sizes, "batch-sizes", experiments.DefaultBatchSizes, "batch sizes to compare against sync search")
	return cmd
}

func (a *app) printSummary(s experiments.Summary) {
	out := termenv.NewOutput(a.out)
	title := out.String("self-play").Bold().Foreground(out.Color("6"))
	fmt.Fprintf(a.out, "%s  %d episodes in %s\n", title, s.Episodes, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(a.out, "  examples   %d\n", s.Examples)
	fmt.Fprintf(a.out, "  victories  %s\n", out.String(fmt.Sprint(s.Victories)).Foreground(out.Color("2")))
	if s.Abandoned > 0 {
		fmt.Fprintf(a.out, "  abandoned  %s\n", out.String(fmt.Sprint(s.Abandoned)).Foreground(out.Color("1")))
	}
	fmt.Fprintf(a.out, "  mean value %.3f\n", s.MeanValue)
	if s.RecordsDir != "" {
		fmt.Fprintf(a.out, "  records    %s\n", s.RecordsDir)
	}
}

func (a *app) printThroughput(records []metrics.ThroughputRecord) {
	out := termenv.NewOutput(a.out)
	fmt.Fprintln(a.out, out.String("throughput").Bold().Foreground(out.Color("6")))
	for _, r := range records {
		mode := "sync   "
		if r.Batched {
			mode = "batched"
		}
		fmt.Fprintf(a.out, "  %s batch %-4d %8.1f predictions/s (%d predictions, %d moves)\n",
			mode, r.BatchSize, r.PredictionsPerSecond(), r.Predictions, r.Moves)
	}
}
