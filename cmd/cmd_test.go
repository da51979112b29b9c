package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"regi/config"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSelfPlayCommand(t *testing.T) {
	t.Run("plays and prints a summary", func(t *testing.T) {
		out, err := run(t, "selfplay", "--in-memory", "-n", "1", "-w", "1", "-s", "2", "--records-dir", "-", "--log-level", "warn")

		require.NoError(t, err)
		require.Contains(t, out, "self-play")
		require.Contains(t, out, "1 episodes")
		require.NotContains(t, out, "records")
	})

	t.Run("batched flags are applied", func(t *testing.T) {
		out, err := run(t, "selfplay", "--in-memory", "-n", "1", "-w", "1", "-s", "3", "--batched", "--batch-size", "2",
			"--records-dir", t.TempDir(), "--log-level", "warn")

		require.NoError(t, err)
		require.Contains(t, out, "records")
	})

	t.Run("invalid overrides are rejected", func(t *testing.T) {
		_, err := run(t, "selfplay", "--in-memory", "-p", "7", "--log-level", "warn")
		require.ErrorIs(t, err, config.ErrInvalid)
	})
}

func TestRootCommand(t *testing.T) {
	t.Run("unknown log levels are rejected", func(t *testing.T) {
		_, err := run(t, "examples", "count", "--log-level", "loud")
		require.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("config files are loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "regi.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage:\n  in_memory: true\nlog:\n  level: warn\n"), 0644))

		out, err := run(t, "--config", path, "examples", "count")

		require.NoError(t, err)
		require.Equal(t, "0", strings.TrimSpace(out))
	})
}

func TestResumeCommand(t *testing.T) {
	t.Run("needs a snapshot", func(t *testing.T) {
		_, err := run(t, "resume", "--in-memory", "--log-level", "warn")
		require.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("reads the snapshot from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "phase.txt")
		require.NoError(t, os.WriteFile(path, []byte("0,1,2,0,0|AS2C5D;3H7S|JC:20,QD:30|4C4D6H|9S|\n"), 0644))

		out, err := run(t, "resume", "--in-memory", "--snapshot-file", path, "-s", "2", "--records-dir", "-", "--log-level", "warn")

		require.NoError(t, err)
		require.Contains(t, out, "1 episodes")
	})
}

func TestExamplesCommand(t *testing.T) {
	t.Run("dump respects the limit", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		cfg := filepath.Join(t.TempDir(), "regi.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("storage:\n  path: "+dir+"\nlog:\n  level: warn\nmetrics:\n  dir: \"\"\nselfplay:\n  episodes: 1\n  workers: 1\n  simulations: 2\n"), 0644))

		_, err := run(t, "--config", cfg, "selfplay")
		require.NoError(t, err)

		out, err := run(t, "--config", cfg, "examples", "dump", "--limit", "2")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		require.Contains(t, lines[0], `"episode"`)
	})
}
