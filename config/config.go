package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

const (
	EvaluationSync    = "sync"
	EvaluationBatched = "batched"
)

type Config struct {
	Search   Search   `yaml:"search"`
	SelfPlay SelfPlay `yaml:"selfplay"`
	Storage  Storage  `yaml:"storage"`
	Metrics  Metrics  `yaml:"metrics"`
	Log      Log      `yaml:"log"`
}

type Search struct {
	PUCT           float64 `yaml:"puct"`
	Epsilon        float64 `yaml:"epsilon"`
	DepthBound     int     `yaml:"depth_bound"`
	Evaluation     string  `yaml:"evaluation"` // sync or batched
	BatchSize      int     `yaml:"batch_size"`
	Noise          bool    `yaml:"noise"`
	NoiseAlpha     float64 `yaml:"noise_alpha"`
	NoiseWeight    float64 `yaml:"noise_weight"`
	RandomTieBreak bool    `yaml:"random_tie_break"`
	Network        string  `yaml:"network"` // uniform or linear
	NetworkSeed    uint64  `yaml:"network_seed"`
}

type SelfPlay struct {
	Players     int     `yaml:"players"` // 0 deals a random table of 2 to 4
	Simulations int     `yaml:"simulations"`
	Cutoff      int     `yaml:"cutoff"`
	Temperature float64 `yaml:"temperature"`
	Value       string  `yaml:"value"` // hp, win or relative
	Workers     int     `yaml:"workers"`
	Episodes    int     `yaml:"episodes"`
	QueueSize   int     `yaml:"queue_size"`
	Seed        uint64  `yaml:"seed"`
}

type Storage struct {
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

type Metrics struct {
	Dir  string `yaml:"dir"`  // CSV records, skipped when empty
	Addr string `yaml:"addr"` // Prometheus listener, skipped when empty
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() Config {
	return Config{
		Search: Search{
			PUCT:        1.25,
			Epsilon:     1e-8,
			DepthBound:  30,
			Evaluation:  EvaluationSync,
			BatchSize:   16,
			NoiseAlpha:  0.3,
			NoiseWeight: 0.25,
			Network:     "uniform",
			NetworkSeed: 1,
		},
		SelfPlay: SelfPlay{
			Players:     2,
			Simulations: 100,
			Cutoff:      50,
			Temperature: 1,
			Value:       "hp",
			Workers:     4,
			Episodes:    8,
			QueueSize:   4,
			Seed:        1,
		},
		Storage: Storage{Path: "data/examples"},
		Metrics: Metrics{Dir: "experiments"},
		Log:     Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the values
// it changes.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (c Config) Validate() error {
	s, p := c.Search, c.SelfPlay
	switch {
	case s.PUCT <= 0:
		return invalid("puct %v must be positive", s.PUCT)
	case s.Epsilon <= 0:
		return invalid("epsilon %v must be positive", s.Epsilon)
	case s.DepthBound < 0:
		return invalid("depth bound %d is negative", s.DepthBound)
	case s.Evaluation != EvaluationSync && s.Evaluation != EvaluationBatched:
		return invalid("evaluation %q, want sync or batched", s.Evaluation)
	case s.BatchSize < 1:
		return invalid("batch size %d, want at least 1", s.BatchSize)
	case s.Noise && s.NoiseAlpha <= 0:
		return invalid("noise alpha %v must be positive", s.NoiseAlpha)
	case s.Noise && (s.NoiseWeight < 0 || s.NoiseWeight > 1):
		return invalid("noise weight %v outside [0, 1]", s.NoiseWeight)
	case s.Network != "uniform" && s.Network != "linear":
		return invalid("network %q, want uniform or linear", s.Network)
	case p.Players != 0 && (p.Players < 2 || p.Players > 4):
		return invalid("%d players, want 2 to 4", p.Players)
	case p.Simulations < 1:
		return invalid("simulations %d, want at least 1", p.Simulations)
	case p.Cutoff < 0:
		return invalid("cutoff %d is negative", p.Cutoff)
	case p.Temperature < 0:
		return invalid("temperature %v is negative", p.Temperature)
	case p.Value != "hp" && p.Value != "win" && p.Value != "relative":
		return invalid("value %q, want hp, win or relative", p.Value)
	case p.Workers < 1:
		return invalid("workers %d, want at least 1", p.Workers)
	case p.Episodes < 0:
		return invalid("episodes %d is negative", p.Episodes)
	case !c.Storage.InMemory && c.Storage.Path == "":
		return invalid("storage path is empty")
	}
	return nil
}
