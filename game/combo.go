package game

import "strings"

// MaxHandSlots bounds the hand size so combo bitmasks fit the action universe.
const MaxHandSlots = 7

// Combo is a set of cards played together. Bits addresses the cards by
// their slot in the owner's sorted hand; a yield is the empty combo with
// Bits == 0.
type Combo struct {
	Cards []Card
	Bits  int
}

func comboFromBits(hand []Card, bits int) Combo {
	combo := Combo{Bits: bits}
	for i, c := range hand {
		if bits&(1<<i) != 0 {
			combo.Cards = append(combo.Cards, c)
		}
	}
	return combo
}

func (c Combo) IsYield() bool {
	return len(c.Cards) == 0
}

// Valid reports whether the combo may be played as an attack.
func (c Combo) Valid(yieldAllowed bool) bool {
	switch len(c.Cards) {
	case 0:
		return yieldAllowed
	case 1:
		return true
	}
	for _, card := range c.Cards {
		if card.Entry == Joker {
			return false
		}
	}
	if len(c.Cards) == 2 && (c.Cards[0].Entry == Ace || c.Cards[1].Entry == Ace) {
		return true
	}
	// Same-entry sets, no aces, total at most 10
	sum := int(c.Cards[0].Entry)
	for _, card := range c.Cards[1:] {
		if card.Entry == Ace || card.Entry != c.Cards[0].Entry {
			return false
		}
		sum += int(card.Entry)
	}
	return sum <= 10
}

func (c Combo) Damage() int {
	dmg := 0
	for _, card := range c.Cards {
		dmg += card.Strength()
	}
	return dmg
}

// Defense is the block value of the cards when discarded; validity does not matter.
func (c Combo) Defense() int {
	return c.Damage()
}

func (c Combo) Powers() Power {
	var p Power
	for _, card := range c.Cards {
		p |= card.Power()
	}
	return p
}

func (c Combo) String() string {
	if c.IsYield() {
		return "-"
	}
	var sb strings.Builder
	for _, card := range c.Cards {
		sb.WriteString(card.String())
	}
	return sb.String()
}

func parseCombo(s string) (Combo, error) {
	if s == "-" {
		return Combo{}, nil
	}
	cards, err := parseCards(s)
	if err != nil {
		return Combo{}, err
	}
	return Combo{Cards: cards}, nil
}

// AttackCombos lists every valid attack from a sorted hand, yield first.
func AttackCombos(hand []Card, yieldAllowed bool) []Combo {
	combos := []Combo{}
	if yieldAllowed {
		combos = append(combos, Combo{})
	}
	for bits := 1; bits < 1<<len(hand); bits++ {
		combo := comboFromBits(hand, bits)
		if combo.Valid(false) {
			combos = append(combos, combo)
		}
	}
	return combos
}

// DefenseCombos lists every subset of the hand whose strength covers damage.
func DefenseCombos(hand []Card, damage int) []Combo {
	combos := []Combo{}
	for bits := 1; bits < 1<<len(hand); bits++ {
		combo := comboFromBits(hand, bits)
		if combo.Defense() >= damage {
			combos = append(combos, combo)
		}
	}
	return combos
}
