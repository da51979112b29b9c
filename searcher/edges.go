package searcher

import (
	"fmt"
	"slices"
)

// Edge is a (parent, action) pair leading to a child.
type Edge struct {
	Parent StateId
	Action int
}

// EdgeTable records the search graph. Children of a (state, action) pair are
// kept as a list since chance events can lead the same move to different states.
type EdgeTable struct {
	forward  map[Edge][]StateId
	backward map[StateId][]Edge
	depth    map[StateId]int
	size     int
}

func NewEdgeTable() *EdgeTable {
	return &EdgeTable{
		forward:  make(map[Edge][]StateId),
		backward: make(map[StateId][]Edge),
		depth:    make(map[StateId]int),
	}
}

// Connect links parent --action--> child. A root (parent == NoState) only
// gets depth 0. Depth is otherwise set by the first parent to reach the child.
func (t *EdgeTable) Connect(parent StateId, action int, child StateId) {
	if parent == NoState {
		t.depth[child] = 0
		return
	}
	edge := Edge{Parent: parent, Action: action}
	if !slices.Contains(t.forward[edge], child) {
		t.forward[edge] = append(t.forward[edge], child)
		t.size++
	}
	if !slices.Contains(t.backward[child], edge) {
		t.backward[child] = append(t.backward[child], edge)
	}
	if _, ok := t.depth[child]; !ok {
		t.depth[child] = t.depth[parent] + 1
	}
}

// Child returns the first child recorded for (state, action).
func (t *EdgeTable) Child(state StateId, action int) StateId {
	children := t.forward[Edge{Parent: state, Action: action}]
	if len(children) == 0 {
		panic(fmt.Sprintf("no edge from state %d with action %d", state, action))
	}
	return children[0]
}

func (t *EdgeTable) Children(state StateId, action int) []StateId {
	return t.forward[Edge{Parent: state, Action: action}]
}

func (t *EdgeTable) Parents(child StateId) []Edge {
	return t.backward[child]
}

// Depth returns the recorded depth of state, if any.
func (t *EdgeTable) Depth(state StateId) (int, bool) {
	d, ok := t.depth[state]
	return d, ok
}

// Len is the number of distinct (parent, action, child) triples.
func (t *EdgeTable) Len() int {
	return t.size
}

func (t *EdgeTable) Clear() {
	*t = *NewEdgeTable()
}
