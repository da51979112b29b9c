package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("start resets the window", func(t *testing.T) {
		c := NewCollector()
		c.Start(false, 1)
		c.AddSimulation()
		c.AddState()
		c.AddPredictions(1, false)
		c.AddTerminal()

		c.Start(true, 4)
		c.AddSimulation()
		c.AddPredictions(4, true)
		c.AddPredictions(2, true)
		c.SetTreeReset(true)
		m := c.Complete()

		require.True(t, m.Batched)
		require.Equal(t, 4, m.BatchSize)
		require.Equal(t, 1, m.Simulations)
		require.Equal(t, 0, m.States)
		require.Equal(t, 6, m.Predictions)
		require.Equal(t, 2, m.Flushes)
		require.Equal(t, 0, m.Terminals)
		require.True(t, m.IsTreeReset)
	})

	t.Run("sync predictions are not flushes", func(t *testing.T) {
		c := NewCollector()
		c.Start(false, 1)
		c.AddPredictions(1, false)
		c.AddPredictions(1, false)
		m := c.Complete()
		require.Equal(t, 2, m.Predictions)
		require.Equal(t, 0, m.Flushes)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(true, 8)
		c.AddSimulation()
		c.AddPredictions(8, true)
		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	t.Run("writes records under a run directory", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "selfplay")
		require.NoError(t, err)
		require.DirExists(t, w.Dir())

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		err = w.WriteGameRecords([]GameRecord{{
			Worker: 2,
			GameMetric: GameMetric{
				ID: "g1", Players: 3, EndValue: 1, Value: 1,
				StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second,
				TotalMoves: 40, Examples: 40,
			},
		}})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, "id", rows[0][0])
		require.Equal(t, []string{"g1", "2", "3", "1", "1.0000", "2024-01-01T00:00:00Z", "2024-01-01T00:00:01Z", "1s", "40", "40"}, rows[1])
	})

	t.Run("move records carry search metrics", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "selfplay")
		require.NoError(t, err)
		err = w.WriteMoveRecords([]MoveRecord{
			{Game: "g1", MoveMetric: MoveMetric{Step: 1, Player: 0, SearchMetric: SearchMetric{Simulations: 10, Predictions: 7, Batched: true}}},
			{Game: "g1", MoveMetric: MoveMetric{Step: 2, Player: 1}},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, "10", rows[1][4])
		require.Equal(t, "7", rows[1][6])
		require.Equal(t, "true", rows[1][9])
	})

	t.Run("throughput records report predictions per second", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "throughput")
		require.NoError(t, err)
		err = w.WriteThroughputRecords([]ThroughputRecord{
			{Batched: true, BatchSize: 8, Predictions: 50, Duration: 500 * time.Millisecond},
			{Predictions: 10},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "throughput_records.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, "100.0", rows[1][7])
		require.Equal(t, "0.0", rows[2][7])
	})
}
