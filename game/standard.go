package game

type StandardRules struct {
	HandSizes   map[int]int
	JokerCounts map[int]int
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		HandSizes:   map[int]int{2: 7, 3: 6, 4: 5},
		JokerCounts: map[int]int{2: 0, 3: 1, 4: 2},
	}
}

func (sr *StandardRules) MinPlayers() int {
	return 2
}

func (sr *StandardRules) MaxPlayers() int {
	return 4
}

func (sr *StandardRules) HandSize(players int) int {
	return sr.HandSizes[players]
}

func (sr *StandardRules) Jokers(players int) int {
	return sr.JokerCounts[players]
}
