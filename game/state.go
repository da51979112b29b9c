package game

import (
	"fmt"
	"slices"
	"time"

	"golang.org/x/exp/rand"
)

type EndReason int

const (
	NotEnded EndReason = iota
	NoEnemies
	BlockFailed
	AttackFailed
)

type DecisionKind int

const (
	NoDecision DecisionKind = iota
	AttackDecision
	DefenseDecision
)

// Decision describes the choice the active player faces.
type Decision struct {
	Kind   DecisionKind
	Combos []Combo
	Damage int // Damage to absorb, defense only
}

// GameState is the live rules engine. Unlike Phase it is mutable: Apply and
// Step advance it to the next decision point in place.
type GameState struct {
	Rules      Rules
	Hands      [][]Card // Sorted, see Card.Less
	Enemies    []Enemy  // Front is the current enemy
	Draw       []Card   // Front is the top of the pile
	Discard    []Card
	Used       []Combo // Combos played against the current enemy
	Active     int
	Attacking  bool
	PastYields int
	Reason     EndReason
	rng        *rand.Rand
}

func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}

// NewGameState shuffles the piles and deals a fresh game.
func NewGameState(players int, rules Rules, rng *rand.Rand) (*GameState, error) {
	if players < rules.MinPlayers() || players > rules.MaxPlayers() {
		return nil, fmt.Errorf("%d players not in [%d, %d]", players, rules.MinPlayers(), rules.MaxPlayers())
	}
	gs := &GameState{
		Rules:     rules,
		Hands:     make([][]Card, players),
		Attacking: true,
		rng:       newRand(rng),
	}
	gs.initEnemies()
	gs.initDraw(players)
	for i := range gs.Hands {
		gs.Hands[i] = []Card{}
		for len(gs.Hands[i]) < gs.handSize() && gs.drawOne(i) {
		}
	}
	gs.settle()
	return gs, nil
}

// FromPhase builds a live engine positioned at the given snapshot.
func FromPhase(p *Phase, rules Rules, rng *rand.Rand) (*GameState, error) {
	gs := &GameState{Rules: rules, rng: newRand(rng)}
	if err := gs.ImportPhase(p); err != nil {
		return nil, err
	}
	return gs, nil
}

func (gs *GameState) initEnemies() {
	gs.Enemies = make([]Enemy, 0, 12)
	for _, e := range []Entry{Jack, Queen, King} {
		start := len(gs.Enemies)
		for _, s := range []Suit{Clubs, Diamonds, Hearts, Spades} {
			gs.Enemies = append(gs.Enemies, NewEnemy(e, s))
		}
		group := gs.Enemies[start:]
		gs.rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
	}
}

func (gs *GameState) initDraw(players int) {
	gs.Draw = make([]Card, 0, 42)
	for _, s := range []Suit{Spades, Hearts, Diamonds, Clubs} {
		for e := Ace; e <= Ten; e++ {
			gs.Draw = append(gs.Draw, Card{Entry: e, Suit: s})
		}
	}
	for i := 0; i < gs.Rules.Jokers(players); i++ {
		gs.Draw = append(gs.Draw, Card{Entry: Joker, Suit: Glitch})
	}
	gs.shuffle(gs.Draw)
}

func (gs *GameState) shuffle(cards []Card) {
	gs.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

func (gs *GameState) Players() int {
	return len(gs.Hands)
}

func (gs *GameState) handSize() int {
	return min(gs.Rules.HandSize(gs.Players()), MaxHandSlots)
}

func (gs *GameState) Ended() bool {
	return gs.Reason != NotEnded
}

func (gs *GameState) EndValue() int {
	switch gs.Reason {
	case NotEnded:
		return Ongoing
	case NoEnemies:
		return Victory
	default:
		return Defeat
	}
}

func (gs *GameState) yieldAllowed() bool {
	return gs.PastYields < gs.Players()-1
}

// enemyPower is the current enemy's immunity, cancelled once a joker was played against it.
func (gs *GameState) enemyPower() Power {
	for _, combo := range gs.Used {
		if combo.Powers()&JokerNerf != 0 {
			return 0
		}
	}
	return gs.Enemies[0].Power()
}

func (gs *GameState) block() int {
	if gs.enemyPower()&SpadesBlock != 0 {
		return 0
	}
	blk := 0
	for _, combo := range gs.Used {
		if combo.Powers()&SpadesBlock != 0 {
			blk += combo.Damage()
		}
	}
	return blk
}

func (gs *GameState) incomingDamage() int {
	return gs.Enemies[0].Strength() - gs.block()
}

func handStrength(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.Strength()
	}
	return total
}

// Decision enumerates the candidates of the current decision point.
func (gs *GameState) Decision() Decision {
	if gs.Ended() {
		return Decision{}
	}
	hand := gs.Hands[gs.Active]
	if gs.Attacking {
		return Decision{Kind: AttackDecision, Combos: AttackCombos(hand, gs.yieldAllowed())}
	}
	damage := gs.incomingDamage()
	return Decision{Kind: DefenseDecision, Combos: DefenseCombos(hand, damage), Damage: damage}
}

// Apply plays the candidate whose hand bitmask equals bits.
func (gs *GameState) Apply(bits int) error {
	d := gs.Decision()
	if d.Kind == NoDecision {
		return ErrGameOver
	}
	for _, combo := range d.Combos {
		if combo.Bits == bits {
			gs.play(d.Kind, combo)
			return nil
		}
	}
	return fmt.Errorf("combo bits %d: %w", bits, ErrIllegalChoice)
}

// Step asks the strategy to choose at the current decision point and advances
// the game to the next one.
func (gs *GameState) Step(s Strategy) error {
	d := gs.Decision()
	if d.Kind == NoDecision {
		return ErrGameOver
	}
	phase := gs.ExportPhase()
	var (
		choice int
		err    error
	)
	if d.Kind == AttackDecision {
		choice, err = s.ChooseAttack(phase, d.Combos)
	} else {
		choice, err = s.ChooseDefense(phase, d.Combos, d.Damage)
	}
	if err != nil {
		return fmt.Errorf("player %d: %w", gs.Active, err)
	}
	if choice < 0 {
		gs.fail(d.Kind)
		return nil
	}
	if choice >= len(d.Combos) {
		return fmt.Errorf("choice %d of %d: %w", choice, len(d.Combos), ErrIllegalChoice)
	}
	gs.play(d.Kind, d.Combos[choice])
	return nil
}

// Run steps the game with one strategy per player until it ends or maxSteps is reached.
func (gs *GameState) Run(strategies []Strategy, maxSteps int) error {
	if len(strategies) != gs.Players() {
		panic("number of strategies does not match number of players")
	}
	for steps := 0; !gs.Ended() && steps < maxSteps; steps++ {
		if err := gs.Step(strategies[gs.Active]); err != nil {
			return err
		}
	}
	return nil
}

func (gs *GameState) fail(kind DecisionKind) {
	if kind == AttackDecision {
		gs.Reason = AttackFailed
	} else {
		gs.Reason = BlockFailed
	}
}

func (gs *GameState) play(kind DecisionKind, combo Combo) {
	gs.removeFromHand(gs.Active, combo)
	if kind == AttackDecision {
		gs.attack(combo)
	} else {
		gs.Discard = append(gs.Discard, combo.Cards...)
		gs.nextPlayer()
	}
	gs.settle()
}

func (gs *GameState) attack(combo Combo) {
	gs.Used = append(gs.Used, combo)
	if combo.IsYield() {
		gs.PastYields++
	} else {
		gs.PastYields = 0
	}

	powers := combo.Powers() &^ gs.enemyPower()
	value := combo.Damage()
	if powers&HeartsReplenish != 0 {
		gs.replenish(value)
	}
	if powers&DiamondsDraw != 0 {
		gs.drawRoundRobin(gs.Active, value)
	}
	damage := value
	if powers&ClubsDouble != 0 {
		damage *= 2
	}

	gs.Enemies[0].HP -= damage
	if gs.Enemies[0].HP <= 0 {
		gs.defeatEnemy() // Same player attacks the next enemy
		return
	}
	gs.Attacking = false
}

func (gs *GameState) defeatEnemy() {
	enemy := gs.Enemies[0]
	gs.Enemies = gs.Enemies[1:]
	if enemy.HP == 0 {
		gs.Draw = append([]Card{enemy.Card}, gs.Draw...)
	} else {
		gs.Discard = append(gs.Discard, enemy.Card)
	}
	for _, combo := range gs.Used {
		gs.Discard = append(gs.Discard, combo.Cards...)
	}
	gs.Used = nil
}

func (gs *GameState) nextPlayer() {
	gs.Active = (gs.Active + 1) % gs.Players()
	gs.Attacking = true
}

// settle resolves automatic transitions until a real decision or the end.
func (gs *GameState) settle() {
	for !gs.Ended() {
		if len(gs.Enemies) == 0 {
			gs.Reason = NoEnemies
			return
		}
		hand := gs.Hands[gs.Active]
		if gs.Attacking {
			if len(AttackCombos(hand, gs.yieldAllowed())) == 0 {
				gs.Reason = AttackFailed
			}
			return
		}
		damage := gs.incomingDamage()
		if damage <= 0 {
			gs.nextPlayer()
			continue
		}
		if handStrength(hand) < damage {
			gs.Reason = BlockFailed
		}
		return
	}
}

// replenish shuffles the discard pile and moves n cards to the bottom of the draw pile.
func (gs *GameState) replenish(n int) {
	gs.shuffle(gs.Discard)
	for ; n > 0 && len(gs.Discard) > 0; n-- {
		last := len(gs.Discard) - 1
		gs.Draw = append(gs.Draw, gs.Discard[last])
		gs.Discard = gs.Discard[:last]
	}
}

// drawRoundRobin deals up to n cards one at a time starting from player first.
func (gs *GameState) drawRoundRobin(first, n int) {
	full := make([]bool, gs.Players())
	for i := first; n > 0; n-- {
		if !gs.drawOne(i) {
			full[i] = true
		}
		if !slices.Contains(full, false) {
			return
		}
		i = (i + 1) % gs.Players()
	}
}

func (gs *GameState) drawOne(player int) bool {
	if len(gs.Draw) == 0 || len(gs.Hands[player]) >= gs.handSize() {
		return false
	}
	card := gs.Draw[0]
	gs.Draw = gs.Draw[1:]
	gs.Hands[player] = insertSorted(gs.Hands[player], card)
	return true
}

func insertSorted(hand []Card, card Card) []Card {
	i := 0
	for i < len(hand) && hand[i].Less(card) {
		i++
	}
	return slices.Insert(hand, i, card)
}

func (gs *GameState) removeFromHand(player int, combo Combo) {
	hand := gs.Hands[player]
	kept := make([]Card, 0, len(hand))
	for i, c := range hand {
		if combo.Bits&(1<<i) == 0 {
			kept = append(kept, c)
		}
	}
	gs.Hands[player] = kept
}

// Copy returns a deep copy sharing rules and random source.
func (gs *GameState) Copy() *GameState {
	cp := &GameState{
		Rules:      gs.Rules,
		Hands:      make([][]Card, len(gs.Hands)),
		Enemies:    slices.Clone(gs.Enemies),
		Draw:       slices.Clone(gs.Draw),
		Discard:    slices.Clone(gs.Discard),
		Used:       make([]Combo, len(gs.Used)),
		Active:     gs.Active,
		Attacking:  gs.Attacking,
		PastYields: gs.PastYields,
		Reason:     gs.Reason,
		rng:        gs.rng,
	}
	for i, hand := range gs.Hands {
		cp.Hands[i] = slices.Clone(hand)
	}
	for i, combo := range gs.Used {
		cp.Used[i] = Combo{Cards: slices.Clone(combo.Cards), Bits: combo.Bits}
	}
	return cp
}

// ExportPhase snapshots the full state.
func (gs *GameState) ExportPhase() *Phase {
	cp := gs.Copy()
	return &Phase{
		End:        gs.EndValue(),
		Attacking:  cp.Attacking,
		Players:    cp.Players(),
		Active:     cp.Active,
		PastYields: cp.PastYields,
		Hands:      cp.Hands,
		Enemies:    cp.Enemies,
		Draw:       cp.Draw,
		Discard:    cp.Discard,
		Used:       cp.Used,
	}
}

// ImportPhase replaces the live state with the snapshot.
func (gs *GameState) ImportPhase(p *Phase) error {
	if err := p.validate(gs.Rules); err != nil {
		return err
	}
	src := &GameState{
		Hands:   p.Hands,
		Enemies: p.Enemies,
		Draw:    p.Draw,
		Discard: p.Discard,
		Used:    p.Used,
	}
	cp := src.Copy()
	gs.Hands = cp.Hands
	gs.Enemies = cp.Enemies
	gs.Draw = cp.Draw
	gs.Discard = cp.Discard
	gs.Used = cp.Used
	for i := range gs.Hands {
		slices.SortFunc(gs.Hands[i], func(a, b Card) int {
			switch {
			case a.Less(b):
				return -1
			case b.Less(a):
				return 1
			}
			return 0
		})
	}
	gs.Active = p.Active
	gs.Attacking = p.Attacking
	gs.PastYields = p.PastYields
	switch {
	case p.End == Victory:
		gs.Reason = NoEnemies
	case p.End == Defeat && p.Attacking:
		gs.Reason = AttackFailed
	case p.End == Defeat:
		gs.Reason = BlockFailed
	default:
		gs.Reason = NotEnded
	}
	gs.settle()
	return nil
}
