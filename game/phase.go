package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase is an immutable, serializable snapshot of a game. Two phases describe
// the same position exactly when their String forms are equal.
type Phase struct {
	End        int
	Attacking  bool
	Players    int
	Active     int
	PastYields int
	Hands      [][]Card
	Enemies    []Enemy
	Draw       []Card
	Discard    []Card
	Used       []Combo
}

func (p *Phase) EndValue() int {
	return p.End
}

func writeCards(sb *strings.Builder, cards []Card) {
	for _, c := range cards {
		sb.WriteString(c.String())
	}
}

// String is the canonical encoding:
//
//	end,attacking,players,active,yields|hand;hand|enemy:hp,...|draw|discard|combo,...
func (p *Phase) String() string {
	var sb strings.Builder
	attacking := 0
	if p.Attacking {
		attacking = 1
	}
	fmt.Fprintf(&sb, "%d,%d,%d,%d,%d|", p.End, attacking, p.Players, p.Active, p.PastYields)
	for i, hand := range p.Hands {
		if i > 0 {
			sb.WriteByte(';')
		}
		writeCards(&sb, hand)
	}
	sb.WriteByte('|')
	for i, e := range p.Enemies {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s:%d", e.Card, e.HP)
	}
	sb.WriteByte('|')
	writeCards(&sb, p.Draw)
	sb.WriteByte('|')
	writeCards(&sb, p.Discard)
	sb.WriteByte('|')
	for i, combo := range p.Used {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(combo.String())
	}
	return sb.String()
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (*Phase, error) {
	fields := strings.Split(s, "|")
	if len(fields) != 6 {
		return nil, fmt.Errorf("expected 6 fields, got %d: %w", len(fields), ErrBadPhase)
	}

	meta := strings.Split(fields[0], ",")
	if len(meta) != 5 {
		return nil, fmt.Errorf("expected 5 header values, got %d: %w", len(meta), ErrBadPhase)
	}
	nums := make([]int, len(meta))
	for i, m := range meta {
		n, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("header value %q: %w", m, ErrBadPhase)
		}
		nums[i] = n
	}
	p := &Phase{
		End:        nums[0],
		Attacking:  nums[1] == 1,
		Players:    nums[2],
		Active:     nums[3],
		PastYields: nums[4],
	}

	for _, h := range strings.Split(fields[1], ";") {
		hand, err := parseCards(h)
		if err != nil {
			return nil, err
		}
		p.Hands = append(p.Hands, hand)
	}

	if fields[2] != "" {
		for _, e := range strings.Split(fields[2], ",") {
			card, hp, ok := strings.Cut(e, ":")
			if !ok {
				return nil, fmt.Errorf("enemy %q: %w", e, ErrBadPhase)
			}
			c, err := parseCard(card)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(hp)
			if err != nil {
				return nil, fmt.Errorf("enemy hp %q: %w", hp, ErrBadPhase)
			}
			p.Enemies = append(p.Enemies, Enemy{Card: c, HP: n})
		}
	}

	var err error
	if p.Draw, err = parseCards(fields[3]); err != nil {
		return nil, err
	}
	if p.Discard, err = parseCards(fields[4]); err != nil {
		return nil, err
	}
	if fields[5] != "" {
		for _, c := range strings.Split(fields[5], ",") {
			combo, err := parseCombo(c)
			if err != nil {
				return nil, err
			}
			p.Used = append(p.Used, combo)
		}
	}

	if err := p.validate(nil); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Phase) validate(rules Rules) error {
	lo, hi := 2, 4
	if rules != nil {
		lo, hi = rules.MinPlayers(), rules.MaxPlayers()
	}
	switch {
	case p.Players < lo || p.Players > hi:
		return fmt.Errorf("%d players: %w", p.Players, ErrBadPhase)
	case len(p.Hands) != p.Players:
		return fmt.Errorf("%d hands for %d players: %w", len(p.Hands), p.Players, ErrBadPhase)
	case p.Active < 0 || p.Active >= p.Players:
		return fmt.Errorf("active player %d: %w", p.Active, ErrBadPhase)
	case p.End < Defeat || p.End > Victory:
		return fmt.Errorf("end value %d: %w", p.End, ErrBadPhase)
	case p.PastYields < 0:
		return fmt.Errorf("past yields %d: %w", p.PastYields, ErrBadPhase)
	case p.End == Ongoing && len(p.Enemies) == 0:
		return fmt.Errorf("running game without enemies: %w", ErrBadPhase)
	}
	for _, hand := range p.Hands {
		if len(hand) > MaxHandSlots {
			return fmt.Errorf("hand of %d cards: %w", len(hand), ErrBadPhase)
		}
	}
	return nil
}
