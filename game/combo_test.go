package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func card(e Entry, s Suit) Card {
	return Card{Entry: e, Suit: s}
}

func TestComboValid(t *testing.T) {
	t.Run("single cards are always valid", func(t *testing.T) {
		require.True(t, Combo{Cards: []Card{card(King, Hearts)}}.Valid(false))
		require.True(t, Combo{Cards: []Card{card(Joker, Glitch)}}.Valid(false))
	})

	t.Run("yield depends on context", func(t *testing.T) {
		require.True(t, Combo{}.Valid(true))
		require.False(t, Combo{}.Valid(false))
	})

	t.Run("ace pairs with any card", func(t *testing.T) {
		require.True(t, Combo{Cards: []Card{card(Ace, Clubs), card(Nine, Hearts)}}.Valid(false))
		require.True(t, Combo{Cards: []Card{card(Ace, Clubs), card(Ace, Hearts)}}.Valid(false))
	})

	t.Run("same entry sets must total at most ten", func(t *testing.T) {
		require.True(t, Combo{Cards: []Card{card(Five, Clubs), card(Five, Spades)}}.Valid(false))
		require.True(t, Combo{Cards: []Card{card(Two, Clubs), card(Two, Spades), card(Two, Hearts), card(Two, Diamonds)}}.Valid(false))
		require.False(t, Combo{Cards: []Card{card(Six, Clubs), card(Six, Spades)}}.Valid(false))
		require.False(t, Combo{Cards: []Card{card(Three, Clubs), card(Four, Spades)}}.Valid(false))
	})

	t.Run("jokers cannot join a combo", func(t *testing.T) {
		require.False(t, Combo{Cards: []Card{card(Joker, Glitch), card(Ace, Spades)}}.Valid(false))
	})
}

func TestAttackCombos(t *testing.T) {
	hand := []Card{card(Ace, Hearts), card(Five, Clubs), card(Five, Spades)}

	t.Run("lists yield first when allowed", func(t *testing.T) {
		combos := AttackCombos(hand, true)
		require.True(t, combos[0].IsYield())
		require.Equal(t, 0, combos[0].Bits)
	})

	t.Run("addresses cards by hand slot", func(t *testing.T) {
		combos := AttackCombos(hand, false)
		bits := []int{}
		for _, c := range combos {
			bits = append(bits, c.Bits)
		}
		// singles 1,2,4; ace pairs 3,5; fives 6; ace with both fives is invalid
		require.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, bits)
		for _, c := range combos {
			require.Equal(t, c.String(), comboFromBits(hand, c.Bits).String())
		}
	})
}

func TestDefenseCombos(t *testing.T) {
	hand := []Card{card(Two, Hearts), card(Five, Clubs), card(Jack, Spades)}

	t.Run("every combo covers the damage", func(t *testing.T) {
		combos := DefenseCombos(hand, 7)
		require.NotEmpty(t, combos)
		for _, c := range combos {
			require.GreaterOrEqual(t, c.Defense(), 7)
		}
		require.Len(t, combos, 5, "2+5, J, 2+J, 5+J, 2+5+J")
	})

	t.Run("no combo when the hand is too weak", func(t *testing.T) {
		require.Empty(t, DefenseCombos(hand, 18))
	})
}
