package searcher

import (
	"fmt"
	"time"

	"regi/experiments/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

// Example is a training sample taken from a searched state.
type Example struct {
	ID       string
	StateID  StateId
	Phase    string // Canonical state string
	Features []float32
	Policy   []float64
	Mask     []float64
	Value    float64 // Filled in once the episode's outcome is known
	Depth    int
}

// MCTS searches a graph of states deduplicated by canonical string. It is
// not safe for concurrent use; give each self-play worker its own.
type MCTS struct {
	net         Network
	puct        float64
	epsilon     float64
	depthBound  int
	batched     bool
	batchSize   int
	noiseAlpha  float64
	noiseWeight float64
	randomTies  bool
	rng         *rand.Rand
	outcome     func(State) float64
	metrics     metrics.Collector

	index     *StateIndex
	edges     *EdgeTable
	stats     *Statistics
	batcher   *Batcher
	predicted []StateId
}

func WithPUCT(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.puct = c
		}
	}
}

func WithEpsilon(epsilon float64) Option {
	return func(m *MCTS) {
		if epsilon > 0 {
			m.epsilon = epsilon
		}
	}
}

func WithDepthBound(depth int) Option {
	return func(m *MCTS) {
		if depth >= 0 {
			m.depthBound = depth
		}
	}
}

func WithBatchSize(size int) Option {
	return func(m *MCTS) {
		if size > 0 {
			m.batchSize = size
		}
	}
}

// WithBatched defers network evaluation: new states get a uniform fanout
// policy and are predicted in batches.
func WithBatched() Option {
	return func(m *MCTS) {
		m.batched = true
	}
}

func WithNoise(alpha, weight float64) Option {
	return func(m *MCTS) {
		m.noiseAlpha = alpha
		m.noiseWeight = weight
	}
}

func WithRandomTieBreak() Option {
	return func(m *MCTS) {
		m.randomTies = true
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithOutcome sets the value a terminal state propagates.
func WithOutcome(outcome func(State) float64) Option {
	return func(m *MCTS) {
		if outcome != nil {
			m.outcome = outcome
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

func endValue(state State) float64 {
	return float64(state.EndValue())
}

func NewMCTS(net Network, options ...Option) *MCTS {
	if net == nil {
		panic("Must specify a network")
	}
	m := &MCTS{ // Default values
		net:        net,
		puct:       DefaultPUCT,
		epsilon:    Epsilon,
		depthBound: DepthBound,
		batchSize:  BatchSize,
		outcome:    endValue,
		metrics:    metrics.NewDummyCollector(),
		index:      NewStateIndex(),
		edges:      NewEdgeTable(),
		stats:      NewStatistics(),
	}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if m.noiseWeight != 0 && (m.noiseAlpha <= 0 || m.noiseWeight < 0 || m.noiseWeight > 1) {
		panic("Noise needs a positive alpha and a weight in (0, 1]")
	}
	m.batcher = NewBatcher(m.batchSize, m.evaluate)
	return m
}

// Reset starts a new session. All containers are swapped for empty ones, so
// searches in flight are simply dropped.
func (m *MCTS) Reset() {
	m.index = NewStateIndex()
	m.edges = NewEdgeTable()
	m.stats = NewStatistics()
	m.batcher = NewBatcher(m.batchSize, m.evaluate)
	m.predicted = nil
	m.metrics.SetTreeReset(true)
	log.Debug().Msg("search session reset")
}

// Search visits state on the trajectory's simulation and returns the action
// to take there, or NoAction when the state is terminal.
func (m *MCTS) Search(traj *Trajectory, state State, legal []int) (int, error) {
	s, fresh := m.index.Intern(state)
	if fresh {
		m.metrics.AddState()
	}
	prev, action := traj.Last()
	m.edges.Connect(prev, action, s)
	m.stats.SetMask(s, legal)
	end := state.EndValue()
	m.stats.SetEnd(s, end)
	traj.expanded = false

	if end != 0 {
		m.metrics.AddTerminal()
		v := m.outcome(state)
		m.stats.SetValue(s, v)
		m.updateBackwards(s, v)
		traj.advance(s, NoAction)
		return NoAction, nil
	}

	if m.stats.Status(s) == Unseen {
		traj.expanded = true
		if m.batched {
			m.stats.SetFanout(s)
			if err := m.batcher.Enqueue(s); err != nil {
				return NoAction, err
			}
		} else if err := m.expand(s, state); err != nil {
			return NoAction, err
		}
	}

	a := m.selectAction(s)
	traj.advance(s, a)
	return a, nil
}

func (m *MCTS) selectAction(s StateId) int {
	n := m.stats.node(s)
	if n.status == Predicted {
		var rng *rand.Rand
		if m.randomTies {
			rng = m.rng
		}
		return selectPUCT(n, m.puct, m.epsilon, rng)
	}
	return pickFanout(n, m.rng)
}

// expand predicts s right away and propagates its value.
func (m *MCTS) expand(s StateId, state State) error {
	p, v, err := m.net.Predict(state.Features())
	if err != nil {
		return fmt.Errorf("failed to predict state %d: %w", s, err)
	}
	m.metrics.AddPredictions(1, false)
	m.setPrediction(s, p, v)
	return nil
}

// evaluate batch predicts the given fanout states.
func (m *MCTS) evaluate(states []StateId) error {
	xs := make([][]float32, len(states))
	for i, s := range states {
		xs[i] = m.index.Resolve(s).Features()
	}
	ps, vs, err := m.net.BatchPredict(xs)
	if err != nil {
		return fmt.Errorf("failed to batch predict %d states: %w", len(states), err)
	}
	if len(ps) != len(states) || len(vs) != len(states) {
		return fmt.Errorf("batch predict returned %d policies and %d values for %d states", len(ps), len(vs), len(states))
	}
	m.metrics.AddPredictions(len(states), true)
	log.Debug().Msgf("batch predicted %d states", len(states))
	for i, s := range states {
		m.setPrediction(s, ps[i], vs[i])
	}
	return nil
}

func (m *MCTS) setPrediction(s StateId, p32 []float32, v32 float32) {
	p := make([]float64, ActionSpace)
	for i := 0; i < len(p32) && i < ActionSpace; i++ {
		p[i] = float64(p32[i])
	}
	if m.noiseWeight > 0 {
		p = withNoise(p, m.noiseAlpha, m.noiseWeight, m.rng)
	}
	v := float64(v32)
	m.stats.SetPrediction(s, p, v)
	m.predicted = append(m.predicted, s)
	m.updateBackwards(s, v)
}

// Flush forces evaluation of every pending state.
func (m *MCTS) Flush() error {
	return m.batcher.Flush()
}

func (m *MCTS) Pending() int {
	return m.batcher.Pending()
}

// CalcPolicy returns the visit-count policy of s used as a training target.
func (m *MCTS) CalcPolicy(s StateId) []float64 {
	depth, _ := m.edges.Depth(s)
	return calcPolicy(m.stats.node(s), depth, m.depthBound, m.epsilon)
}

// Example builds a training sample for s. Its value is left at zero.
func (m *MCTS) Example(s StateId) Example {
	state := m.index.Resolve(s)
	depth, _ := m.edges.Depth(s)
	return Example{
		ID:       uuid.NewString(),
		StateID:  s,
		Phase:    m.index.Key(s),
		Features: state.Features(),
		Policy:   m.CalcPolicy(s),
		Mask:     m.stats.Mask(s),
		Depth:    depth,
	}
}

func (m *MCTS) Lookup(state State) (StateId, bool) {
	return m.index.Lookup(state.String())
}

func (m *MCTS) Resolve(s StateId) State {
	return m.index.Resolve(s)
}

func (m *MCTS) Status(s StateId) Status {
	return m.stats.Status(s)
}

func (m *MCTS) Visits(s StateId) int {
	return m.stats.Visits(s)
}

func (m *MCTS) ActionVisits(s StateId, action int) int {
	return m.stats.ActionVisits(s, action)
}

func (m *MCTS) Q(s StateId, action int) (float64, bool) {
	return m.stats.Q(s, action)
}

// Prior returns P(s), the predicted or placeholder policy.
func (m *MCTS) Prior(s StateId) []float64 {
	return m.stats.Policy(s)
}

func (m *MCTS) Legal(s StateId) []int {
	return m.stats.Legal(s)
}

func (m *MCTS) Depth(s StateId) (int, bool) {
	return m.edges.Depth(s)
}

func (m *MCTS) Edges() *EdgeTable {
	return m.edges
}

// Predicted lists states in the order the network evaluated them.
func (m *MCTS) Predicted() []StateId {
	return m.predicted
}

// Len is the number of distinct states seen this session.
func (m *MCTS) Len() int {
	return m.index.Len()
}

func (m *MCTS) Metrics() metrics.Collector {
	return m.metrics
}

func (m *MCTS) Batched() bool {
	return m.batched
}

func (m *MCTS) BatchSize() int {
	return m.batchSize
}
