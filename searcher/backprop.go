package searcher

// updateBackwards propagates v from child to its ancestors. Every back-edge
// whose parent has a predicted policy gets v folded into Q(parent, action).
// Each state's back-edges are walked once, so cycles terminate.
func (m *MCTS) updateBackwards(child StateId, v float64) {
	visited := map[StateId]bool{child: true}
	stack := []StateId{child}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, edge := range m.edges.Parents(s) {
			if m.stats.Status(edge.Parent) != Predicted {
				continue
			}
			m.stats.Update(edge.Parent, edge.Action, v)
			if !visited[edge.Parent] {
				visited[edge.Parent] = true
				stack = append(stack, edge.Parent)
			}
		}
	}
}
