package game

const (
	slotFeatures = 6 // present, strength, four suits
	FeatureSize  = 3*CardSlots + 6 + 4 + 3 + MaxHandSlots*slotFeatures
)

// Features encodes the phase from the active player's point of view.
func (p *Phase) Features() []float32 {
	x := make([]float32, FeatureSize)
	off := 0
	for _, c := range p.Hands[p.Active] {
		x[off+c.Index()] = 1
	}
	off += CardSlots
	for _, c := range p.Discard {
		x[off+c.Index()] = 1
	}
	off += CardSlots
	for _, combo := range p.Used {
		for _, c := range combo.Cards {
			x[off+c.Index()] = 1
		}
	}
	off += CardSlots

	if len(p.Enemies) > 0 {
		e := p.Enemies[0]
		x[off+int(e.Suit)-1] = 1
		x[off+4] = float32(e.HP) / 40
		x[off+5] = float32(e.Strength()) / 20
	}
	off += 6
	x[off] = float32(len(p.Enemies)) / 12
	x[off+1] = float32(len(p.Draw)) / 54
	if p.Attacking {
		x[off+2] = 1
	}
	if p.Players > 1 {
		x[off+3] = float32(p.PastYields) / float32(p.Players-1)
	}
	off += 4
	if p.Players >= 2 && p.Players <= 4 {
		x[off+p.Players-2] = 1
	}
	off += 3

	for i, c := range p.Hands[p.Active] {
		slot := x[off+i*slotFeatures : off+(i+1)*slotFeatures]
		slot[0] = 1
		slot[1] = float32(c.Strength()) / 20
		if c.Suit != Glitch {
			slot[1+int(c.Suit)] = 1
		}
	}
	return x
}
