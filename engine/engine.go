package engine

import (
	"context"
	"errors"

	"regi/experiments/metrics"
	"regi/searcher"
)

const MaxMoves = 10000

// ErrAbandoned marks an episode given up on after a network or rules failure.
// The caller may start a fresh one.
var ErrAbandoned = errors.New("episode abandoned")

// Episode is a finished self-play game and the training examples it produced.
type Episode struct {
	ID         string
	Worker     int // Pool worker that played it
	StartPhase string
	EndPhase   string
	Examples   []searcher.Example
	Game       metrics.GameMetric
	Moves      []metrics.MoveMetric
}

type Engine interface {
	// Play runs a fresh game till it ends or a max number of moves is reached
	Play(ctx context.Context) (*Episode, error)
	// Resume continues from an exported phase, keeping the search session
	Resume(ctx context.Context, snapshot string) (*Episode, error)
}
