package searcher

// node holds the statistics of one state, dense over the action space.
type node struct {
	status Status
	masked bool
	mask   [ActionSpace]bool
	legal  []int // Actions with mask set, ascending
	endSet bool
	end    int
	n0     int
	n1     [ActionSpace]int
	q      [ActionSpace]float64
	qSet   [ActionSpace]bool
	tried  [ActionSpace]bool // Picked while the state was a fanout
	p      []float64
	v      float64
}

// update folds v into the running mean of Q(s, a).
func (n *node) update(action int, v float64) {
	if n.qSet[action] {
		n.q[action] = (float64(n.n1[action])*n.q[action] + v) / float64(n.n1[action]+1)
	} else {
		n.q[action] = v
		n.qSet[action] = true
	}
	n.n1[action]++
	n.n0++
}

func (n *node) maskVector() []float64 {
	m := make([]float64, ActionSpace)
	for _, a := range n.legal {
		m[a] = 1
	}
	return m
}
