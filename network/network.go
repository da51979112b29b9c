package network

import (
	"errors"
	"fmt"
)

// Network maps feature vectors to a policy over the action space and a value.
// Implementations here are read-only after construction and safe to share
// between self-play workers.
type Network interface {
	Predict(x []float32) ([]float32, float32, error)
	BatchPredict(xs [][]float32) ([][]float32, []float32, error)
}

var (
	ErrShape   = errors.New("input has the wrong size")
	ErrUnknown = errors.New("unknown network")
)

// New builds a network by name: "uniform" or "linear".
func New(name string, in, out int, seed uint64) (Network, error) {
	switch name {
	case "uniform":
		return NewUniform(out), nil
	case "linear":
		return NewLinear(in, out, seed), nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknown)
}
