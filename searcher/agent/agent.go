package agent

import (
	"slices"

	"regi/game"
	"regi/searcher"
)

// Agent plays decision points inside simulations by asking the search which
// action to take. It implements game.Strategy.
type Agent struct {
	mcts *searcher.MCTS
	traj *searcher.Trajectory
}

func New(mcts *searcher.MCTS, traj *searcher.Trajectory) *Agent {
	return &Agent{mcts: mcts, traj: traj}
}

// Actions maps candidate combos to their action ids.
func Actions(combos []game.Combo) []int {
	actions := make([]int, len(combos))
	for i, combo := range combos {
		actions[i] = combo.Bits
	}
	return actions
}

func (a *Agent) ChooseAttack(phase *game.Phase, combos []game.Combo) (int, error) {
	return a.choose(phase, combos)
}

func (a *Agent) ChooseDefense(phase *game.Phase, combos []game.Combo, _ int) (int, error) {
	return a.choose(phase, combos)
}

// choose returns the index of the searched action among combos, or -1 to
// decline when the search picked nothing playable.
func (a *Agent) choose(phase *game.Phase, combos []game.Combo) (int, error) {
	legal := Actions(combos)
	action, err := a.mcts.Search(a.traj, phase, legal)
	if err != nil {
		return 0, err
	}
	return slices.Index(legal, action), nil
}

// Observe searches a finished phase so its outcome propagates to the states
// that led to it. The engine asks no strategy once the game is over.
func (a *Agent) Observe(phase *game.Phase) error {
	if phase.EndValue() == game.Ongoing {
		return nil
	}
	_, err := a.mcts.Search(a.traj, phase, nil)
	return err
}
