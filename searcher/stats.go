package searcher

import (
	"fmt"
	"slices"
)

// Statistics stores per-state and per-(state, action) search statistics.
type Statistics struct {
	nodes []*node
}

func NewStatistics() *Statistics {
	return &Statistics{}
}

func (st *Statistics) node(s StateId) *node {
	if s < 0 {
		panic(fmt.Sprintf("invalid state %d", s))
	}
	for int(s) >= len(st.nodes) {
		st.nodes = append(st.nodes, nil)
	}
	if st.nodes[s] == nil {
		st.nodes[s] = &node{}
	}
	return st.nodes[s]
}

func (st *Statistics) peek(s StateId) *node {
	if s < 0 || int(s) >= len(st.nodes) {
		return nil
	}
	return st.nodes[s]
}

func checkAction(action int) {
	if action < 0 || action >= ActionSpace {
		panic(fmt.Sprintf("action %d outside [0, %d)", action, ActionSpace))
	}
}

// SetMask records the legal actions of s. The mask is fixed once set.
func (st *Statistics) SetMask(s StateId, legal []int) {
	var mask [ActionSpace]bool
	for _, a := range legal {
		checkAction(a)
		mask[a] = true
	}
	n := st.node(s)
	if n.masked {
		if n.mask != mask {
			panic(fmt.Sprintf("state %d already has a different action mask", s))
		}
		return
	}
	n.masked = true
	n.mask = mask
	for a, ok := range mask {
		if ok {
			n.legal = append(n.legal, a)
		}
	}
}

func (st *Statistics) Masked(s StateId) bool {
	n := st.peek(s)
	return n != nil && n.masked
}

// Legal returns the legal actions of s in ascending order.
func (st *Statistics) Legal(s StateId) []int {
	if n := st.peek(s); n != nil {
		return slices.Clone(n.legal)
	}
	return nil
}

// Mask returns the legal action mask of s as a 0/1 vector.
func (st *Statistics) Mask(s StateId) []float64 {
	return st.node(s).maskVector()
}

// SetEnd records the end value of s. It may not change once recorded.
func (st *Statistics) SetEnd(s StateId, end int) {
	n := st.node(s)
	if n.endSet && n.end != end {
		panic(fmt.Sprintf("state %d already ended with %d, got %d", s, n.end, end))
	}
	n.endSet = true
	n.end = end
}

func (st *Statistics) End(s StateId) int {
	if n := st.peek(s); n != nil {
		return n.end
	}
	return 0
}

// Update adds an observed value v for (s, a) and counts a visit of s.
func (st *Statistics) Update(s StateId, action int, v float64) {
	checkAction(action)
	st.node(s).update(action, v)
}

// SetFanout gives s a uniform placeholder policy over its legal actions.
func (st *Statistics) SetFanout(s StateId) {
	n := st.node(s)
	if !n.masked {
		panic(fmt.Sprintf("state %d has no action mask", s))
	}
	n.p = normalize(n.maskVector())
	n.status = Fanout
}

// SetPrediction stores the network's policy, masked and normalized, and value.
func (st *Statistics) SetPrediction(s StateId, p []float64, v float64) {
	n := st.node(s)
	if !n.masked {
		panic(fmt.Sprintf("state %d has no action mask", s))
	}
	if len(p) != ActionSpace {
		panic(fmt.Sprintf("policy of length %d, want %d", len(p), ActionSpace))
	}
	n.p = normalize(masked(p, n.maskVector()))
	n.v = v
	n.status = Predicted
}

func (st *Statistics) SetValue(s StateId, v float64) {
	st.node(s).v = v
}

func (st *Statistics) Status(s StateId) Status {
	if n := st.peek(s); n != nil {
		return n.status
	}
	return Unseen
}

// Visits is N0(s).
func (st *Statistics) Visits(s StateId) int {
	if n := st.peek(s); n != nil {
		return n.n0
	}
	return 0
}

// ActionVisits is N1(s, a).
func (st *Statistics) ActionVisits(s StateId, action int) int {
	checkAction(action)
	if n := st.peek(s); n != nil {
		return n.n1[action]
	}
	return 0
}

// Q returns the mean value of (s, a) and whether it has been observed.
func (st *Statistics) Q(s StateId, action int) (float64, bool) {
	checkAction(action)
	if n := st.peek(s); n != nil {
		return n.q[action], n.qSet[action]
	}
	return 0, false
}

// Policy returns a copy of P(s), nil before first touch.
func (st *Statistics) Policy(s StateId) []float64 {
	if n := st.peek(s); n != nil {
		return slices.Clone(n.p)
	}
	return nil
}

func (st *Statistics) Value(s StateId) float64 {
	if n := st.peek(s); n != nil {
		return n.v
	}
	return 0
}

func (st *Statistics) Clear() {
	st.nodes = nil
}
