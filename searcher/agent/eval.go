package agent

// Selector picks the move to actually play from a searched policy.
type Selector func(policy []float64, legal []int) int

// NewGreedySelector plays the most visited legal action, for evaluation.
func NewGreedySelector() Selector {
	return findMax
}

func findMax(policy []float64, legal []int) int {
	if len(legal) == 0 {
		return -1
	}
	maxAction := legal[0]
	maxVisit := -1.0
	for _, a := range legal {
		if policy[a] > maxVisit {
			maxVisit = policy[a]
			maxAction = a
		}
	}
	return maxAction
}
