package searcher

import (
	"errors"
	"slices"
)

type mockState struct {
	key   string
	end   int
	legal []int
}

func (m mockState) String() string {
	return m.key
}

func (m mockState) EndValue() int {
	return m.end
}

func (m mockState) Features() []float32 {
	return []float32{float32(len(m.key)), float32(m.end)}
}

type mockNetwork struct {
	value       float32
	policy      []float32 // Uniform when nil
	err         error
	predicts    int
	batches     [][]int // Feature sizes seen per batch call
	batchInputs int
}

func (n *mockNetwork) prior() []float32 {
	if n.policy != nil {
		return slices.Clone(n.policy)
	}
	p := make([]float32, ActionSpace)
	for i := range p {
		p[i] = 1.0 / ActionSpace
	}
	return p
}

func (n *mockNetwork) Predict(x []float32) ([]float32, float32, error) {
	n.predicts++
	if n.err != nil {
		return nil, 0, n.err
	}
	return n.prior(), n.value, nil
}

func (n *mockNetwork) BatchPredict(xs [][]float32) ([][]float32, []float32, error) {
	sizes := make([]int, len(xs))
	for i, x := range xs {
		sizes[i] = len(x)
	}
	n.batches = append(n.batches, sizes)
	n.batchInputs += len(xs)
	if n.err != nil {
		return nil, nil, n.err
	}
	ps := make([][]float32, len(xs))
	vs := make([]float32, len(xs))
	for i := range xs {
		ps[i] = n.prior()
		vs[i] = n.value
	}
	return ps, vs, nil
}

var errNetwork = errors.New("network unavailable")

// binaryTree is a two level decision tree: the root's two actions lead to
// children whose two actions end the game, with +1 under action 0 and -1
// under action 1.
type binaryTree struct {
	path string
}

func (b binaryTree) state() mockState {
	switch {
	case len(b.path) < 2:
		return mockState{key: "r" + b.path, legal: []int{0, 1}}
	case b.path[0] == '0':
		return mockState{key: "r" + b.path, end: 1}
	default:
		return mockState{key: "r" + b.path, end: -1}
	}
}

func (b binaryTree) play(action int) binaryTree {
	return binaryTree{path: b.path + string(rune('0'+action))}
}

// simulate runs one simulation from the root until a terminal or newly
// expanded state.
func simulate(m *MCTS, traj *Trajectory) error {
	traj.Reset()
	tree := binaryTree{}
	for {
		st := tree.state()
		a, err := m.Search(traj, st, st.legal)
		if err != nil {
			return err
		}
		if a == NoAction || traj.Expanded() {
			return nil
		}
		tree = tree.play(a)
	}
}
