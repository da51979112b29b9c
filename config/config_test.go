package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, Default().Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeFile(t, `
search:
  evaluation: batched
  batch_size: 8
selfplay:
  players: 3
  value: win
storage:
  in_memory: true
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, EvaluationBatched, cfg.Search.Evaluation)
		require.Equal(t, 8, cfg.Search.BatchSize)
		require.Equal(t, 3, cfg.SelfPlay.Players)
		require.Equal(t, "win", cfg.SelfPlay.Value)
		require.True(t, cfg.Storage.InMemory)
		// Untouched values keep their defaults
		require.Equal(t, 1.25, cfg.Search.PUCT)
		require.Equal(t, 100, cfg.SelfPlay.Simulations)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		_, err := Load(writeFile(t, "search: [1, 2"))
		require.Error(t, err)
	})

	t.Run("out of range values are invalid", func(t *testing.T) {
		_, err := Load(writeFile(t, "selfplay:\n  players: 5\n"))
		require.True(t, errors.Is(err, ErrInvalid))
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown evaluation":  func(c *Config) { c.Search.Evaluation = "async" },
		"zero batch size":     func(c *Config) { c.Search.BatchSize = 0 },
		"negative puct":       func(c *Config) { c.Search.PUCT = -1 },
		"zero puct":           func(c *Config) { c.Search.PUCT = 0 },
		"one player":          func(c *Config) { c.SelfPlay.Players = 1 },
		"unknown value":       func(c *Config) { c.SelfPlay.Value = "score" },
		"unknown network":     func(c *Config) { c.Search.Network = "resnet" },
		"heavy noise":         func(c *Config) { c.Search.Noise = true; c.Search.NoiseWeight = 2 },
		"no simulations":      func(c *Config) { c.SelfPlay.Simulations = 0 },
		"no workers":          func(c *Config) { c.SelfPlay.Workers = 0 },
		"no storage location": func(c *Config) { c.Storage.Path = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	t.Run("random table size is valid", func(t *testing.T) {
		cfg := Default()
		cfg.SelfPlay.Players = 0
		require.NoError(t, cfg.Validate())
	})
}
