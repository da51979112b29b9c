package game

import "golang.org/x/exp/rand"

type randomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy picks uniformly among the candidates.
func NewRandomStrategy(rng *rand.Rand) Strategy {
	return randomStrategy{rng: newRand(rng)}
}

func (s randomStrategy) ChooseAttack(_ *Phase, combos []Combo) (int, error) {
	return s.rng.Intn(len(combos)), nil
}

func (s randomStrategy) ChooseDefense(_ *Phase, combos []Combo, _ int) (int, error) {
	return s.rng.Intn(len(combos)), nil
}

type damageStrategy struct{}

// NewDamageStrategy kills the current enemy with the weakest sufficient combo,
// otherwise deals the most damage, and defends with the weakest sufficient block.
func NewDamageStrategy() Strategy {
	return damageStrategy{}
}

func comboDamage(p *Phase, combo Combo) int {
	immune := p.Enemies[0].Power()
	for _, used := range p.Used {
		if used.Powers()&JokerNerf != 0 {
			immune = 0
		}
	}
	if combo.Powers()&JokerNerf != 0 {
		immune = 0
	}
	dmg := combo.Damage()
	if combo.Powers()&^immune&ClubsDouble != 0 {
		dmg *= 2
	}
	return dmg
}

func (damageStrategy) ChooseAttack(p *Phase, combos []Combo) (int, error) {
	hp := p.Enemies[0].HP
	pick := 0
	best := comboDamage(p, combos[0])
	for i, combo := range combos[1:] {
		dmg := comboDamage(p, combo)
		switch {
		case dmg >= hp && (best < hp || dmg < best):
			best, pick = dmg, i+1
		case dmg < hp && best < hp && dmg > best:
			best, pick = dmg, i+1
		}
	}
	return pick, nil
}

func (damageStrategy) ChooseDefense(_ *Phase, combos []Combo, _ int) (int, error) {
	pick := 0
	for i, combo := range combos {
		if combo.Defense() < combos[pick].Defense() {
			pick = i
		}
	}
	return pick, nil
}
