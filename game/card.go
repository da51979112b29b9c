package game

import (
	"fmt"
	"strings"
)

type Suit uint8

const (
	Glitch Suit = iota // Jokers carry no suit
	Clubs
	Diamonds
	Hearts
	Spades
)

type Entry uint8

const (
	Joker Entry = iota
	Ace
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Power is a bitset of suit effects triggered by a played combo.
type Power uint8

const (
	ClubsDouble Power = 1 << iota
	DiamondsDraw
	HeartsReplenish
	SpadesBlock
	JokerNerf
)

// CardSlots is the number of distinct cards a feature vector distinguishes (52 + joker).
const CardSlots = 53

type Card struct {
	Entry Entry
	Suit  Suit
}

func (c Card) Strength() int {
	switch c.Entry {
	case King:
		return 20
	case Queen:
		return 15
	case Jack:
		return 10
	default:
		return int(c.Entry)
	}
}

func (c Card) Power() Power {
	if c.Entry == Joker {
		return JokerNerf
	}
	switch c.Suit {
	case Clubs:
		return ClubsDouble
	case Diamonds:
		return DiamondsDraw
	case Hearts:
		return HeartsReplenish
	case Spades:
		return SpadesBlock
	}
	return 0
}

// Index maps a card to a dense slot in [0, CardSlots).
func (c Card) Index() int {
	if c.Entry == Joker {
		return CardSlots - 1
	}
	return int(c.Suit-1)*13 + int(c.Entry-1)
}

// Less orders cards by entry, then suit. Hands are kept in this order so
// that combo bitmasks address stable slots.
func (c Card) Less(o Card) bool {
	if c.Entry != o.Entry {
		return c.Entry < o.Entry
	}
	return c.Suit < o.Suit
}

const entryCodes = "XA23456789TJQK"
const suitCodes = "*CDHS"

func (c Card) String() string {
	return string([]byte{entryCodes[c.Entry], suitCodes[c.Suit]})
}

func parseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("card %q: %w", s, ErrBadPhase)
	}
	e := strings.IndexByte(entryCodes, s[0])
	u := strings.IndexByte(suitCodes, s[1])
	if e < 0 || u < 0 || (e == int(Joker)) != (u == int(Glitch)) {
		return Card{}, fmt.Errorf("card %q: %w", s, ErrBadPhase)
	}
	return Card{Entry: Entry(e), Suit: Suit(u)}, nil
}

func parseCards(s string) ([]Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("cards %q: %w", s, ErrBadPhase)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := parseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Enemy is a royal card with remaining health.
type Enemy struct {
	Card
	HP int
}

func NewEnemy(e Entry, s Suit) Enemy {
	c := Card{Entry: e, Suit: s}
	return Enemy{Card: c, HP: 2 * c.Strength()}
}

// TotalEnemyHP is the combined health of a fresh enemy pile.
const TotalEnemyHP = 4 * (20 + 30 + 40)
