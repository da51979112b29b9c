package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	simulationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regi_search_simulations_total",
		Help: "Number of search simulations run",
	})
	statesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regi_search_states_total",
		Help: "Number of distinct states interned",
	})
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "regi_network_predictions_total",
		Help: "Number of states evaluated by the network",
	}, []string{"mode"})
	flushSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "regi_batch_flush_size",
		Help:    "Number of states per batch predict call",
		Buckets: prometheus.ExponentialBuckets(1, 2, 9),
	})
	terminalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regi_search_terminal_visits_total",
		Help: "Number of terminal states reached during search",
	})
	episodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "regi_selfplay_episodes_total",
		Help: "Number of self-play episodes by outcome",
	}, []string{"outcome"})
)

type SearchMetric struct {
	Batched     bool
	BatchSize   int
	Duration    time.Duration
	Simulations int
	States      int
	Predictions int // States evaluated by the network
	Flushes     int // Batch predict calls
	Terminals   int
	IsTreeReset bool
}

type MoveMetric struct {
	Step   int
	Player int
	SearchMetric
}

type GameMetric struct {
	ID         string
	Players    int
	EndValue   int
	Value      float64 // Training target assigned to the episode's examples
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
	Examples   int
}

type Collector interface {
	Start(batched bool, batchSize int)
	SetTreeReset(value bool)
	AddSimulation()
	AddState()
	AddPredictions(n int, batched bool)
	AddTerminal()
	Complete() SearchMetric
}

type collector struct {
	batched     bool
	batchSize   int
	startTime   time.Time
	simulations atomic.Int32
	states      atomic.Int32
	predictions atomic.Int32
	flushes     atomic.Int32
	terminals   atomic.Int32
	isTreeReset atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

// Start begins a new measurement window, e.g. the simulations behind one move.
func (m *collector) Start(batched bool, batchSize int) {
	m.startTime = time.Now()
	m.batched = batched
	m.batchSize = batchSize
	m.simulations.Store(0)
	m.states.Store(0)
	m.predictions.Store(0)
	m.flushes.Store(0)
	m.terminals.Store(0)
}

func (m *collector) AddSimulation() {
	m.simulations.Add(1)
	simulationsTotal.Inc()
}

func (m *collector) AddState() {
	m.states.Add(1)
	statesTotal.Inc()
}

func (m *collector) AddPredictions(n int, batched bool) {
	m.predictions.Add(int32(n))
	if batched {
		m.flushes.Add(1)
		flushSize.Observe(float64(n))
		predictionsTotal.WithLabelValues("batched").Add(float64(n))
	} else {
		predictionsTotal.WithLabelValues("sync").Add(float64(n))
	}
}

func (m *collector) AddTerminal() {
	m.terminals.Add(1)
	terminalsTotal.Inc()
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Batched:     m.batched,
		BatchSize:   m.batchSize,
		Duration:    time.Since(m.startTime),
		Simulations: int(m.simulations.Load()),
		States:      int(m.states.Load()),
		Predictions: int(m.predictions.Load()),
		Flushes:     int(m.flushes.Load()),
		Terminals:   int(m.terminals.Load()),
		IsTreeReset: m.isTreeReset.Load(),
	}
}

// AddEpisode counts a finished or abandoned self-play episode.
func AddEpisode(outcome string) {
	episodesTotal.WithLabelValues(outcome).Inc()
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(batched bool, batchSize int)  {}
func (m *dummyCollector) SetTreeReset(value bool)            {}
func (m *dummyCollector) AddSimulation()                     {}
func (m *dummyCollector) AddState()                          {}
func (m *dummyCollector) AddPredictions(n int, batched bool) {}
func (m *dummyCollector) AddTerminal()                       {}
func (m *dummyCollector) Complete() SearchMetric             { return SearchMetric{} }
