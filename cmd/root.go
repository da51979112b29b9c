package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regi/config"
	"regi/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries what the commands share once the root has loaded the config.
type app struct {
	configPath  string
	logLevel    string
	pretty      bool
	metricsAddr string
	cfg         config.Config
	out         io.Writer
}

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(os.Stdout).ExecuteContext(ctx)
}

func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "regi",
		Short:         "Graph search self-play for a cooperative card game",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file, defaults apply when empty")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.BoolVar(&a.pretty, "pretty", false, "human readable console logs")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	root.AddCommand(
		a.selfPlayCmd(),
		a.resumeCmd(),
		a.throughputCmd(),
		a.examplesCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.cfg.Log.Level = a.logLevel
	}
	if flags.Changed("pretty") {
		a.cfg.Log.Pretty = a.pretty
	}
	if flags.Changed("metrics-addr") {
		a.cfg.Metrics.Addr = a.metricsAddr
	}
	if err := setupLogging(a.cfg.Log); err != nil {
		return err
	}
	if a.cfg.Metrics.Addr != "" {
		serveMetrics(a.cfg.Metrics.Addr)
	}
	return nil
}

func setupLogging(cfg config.Log) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", config.ErrInvalid, cfg.Level)
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Info().Msgf("serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

func openStore(cfg config.Storage) (*storage.ExampleStore, error) {
	sc := storage.DefaultConfig(cfg.Path)
	if cfg.InMemory {
		sc = storage.InMemoryConfig()
	}
	sc.SyncWrites = cfg.SyncWrites
	logger := log.Logger.With().Str("component", "badger").Logger()
	sc.Logger = &logger
	return storage.Open(sc)
}
