package searcher

// StateId is a dense id assigned to a canonical state string on first sight.
type StateId int

// NoState stands in for the missing parent of a root.
const NoState StateId = -1

// State is the view of a game position the search needs.
type State interface {
	String() string // Canonical serialization, equal strings mean equal states
	EndValue() int  // 0 while running, nonzero once the game is over
	Features() []float32
}

// Network evaluates states into a policy over the action space and a scalar value.
type Network interface {
	Predict(x []float32) ([]float32, float32, error)
	BatchPredict(xs [][]float32) ([][]float32, []float32, error)
}

// Status tracks how far a state's policy has been evaluated.
type Status uint8

const (
	Unseen    Status = iota
	Fanout           // Uniform placeholder policy, network evaluation pending
	Predicted        // Policy and value come from the network
)

func (s Status) String() string {
	switch s {
	case Fanout:
		return "fanout"
	case Predicted:
		return "predicted"
	}
	return "unseen"
}
