package game

import "errors"

// End values reported by a phase snapshot.
const (
	Defeat  = -1
	Ongoing = 0
	Victory = 1
)

var (
	ErrBadPhase      = errors.New("malformed phase")
	ErrIllegalChoice = errors.New("illegal choice")
	ErrGameOver      = errors.New("game is over")
)

// Strategy is asked by the engine to pick one of the candidate combos at a
// decision point. A negative index declines, which loses the game.
type Strategy interface {
	ChooseAttack(phase *Phase, combos []Combo) (int, error)
	ChooseDefense(phase *Phase, combos []Combo, damage int) (int, error)
}

// Evaluate scores a finished (or cut off) phase for training targets.
type Evaluate func(*Phase) float64
