package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type GameRecord struct {
	Worker int
	GameMetric
}

type MoveRecord struct {
	Game string // GameMetric.ID
	MoveMetric
}

// ThroughputRecord summarizes one search configuration of a throughput sweep.
type ThroughputRecord struct {
	Batched     bool
	BatchSize   int
	Moves       int
	Simulations int
	Predictions int
	Flushes     int
	Duration    time.Duration
}

func (r ThroughputRecord) PredictionsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Predictions) / r.Duration.Seconds()
}

type Writer struct {
	baseDir string
}

// NewWriter creates baseDir/name/<timestamp> to hold the records of one run.
func NewWriter(baseDir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405.000")
	dir := filepath.Join(baseDir, name, timestamp)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: dir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(file string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}
	return nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "worker", "players", "end_value", "value", "start_time", "end_time", "duration", "moves", "examples"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.ID,
			strconv.Itoa(record.Worker),
			strconv.Itoa(record.Players),
			strconv.Itoa(record.EndValue),
			strconv.FormatFloat(record.Value, 'f', 4, 64),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
			strconv.Itoa(record.Examples),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "duration", "simulations", "states", "predictions", "flushes", "terminals", "batched", "is_tree_reset"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Game,
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			record.Duration.String(),
			strconv.Itoa(record.Simulations),
			strconv.Itoa(record.States),
			strconv.Itoa(record.Predictions),
			strconv.Itoa(record.Flushes),
			strconv.Itoa(record.Terminals),
			strconv.FormatBool(record.Batched),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) WriteThroughputRecords(records []ThroughputRecord) error {
	header := []string{"batched", "batch_size", "moves", "simulations", "predictions", "flushes", "duration", "predictions_per_second"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.FormatBool(record.Batched),
			strconv.Itoa(record.BatchSize),
			strconv.Itoa(record.Moves),
			strconv.Itoa(record.Simulations),
			strconv.Itoa(record.Predictions),
			strconv.Itoa(record.Flushes),
			record.Duration.String(),
			strconv.FormatFloat(record.PredictionsPerSecond(), 'f', 1, 64),
		})
	}
	return w.write("throughput_records.csv", header, rows)
}
