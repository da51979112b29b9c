package game

// EnemyHPLeft sums the remaining health of the enemy pile.
func EnemyHPLeft(p *Phase) int {
	hp := 0
	for _, e := range p.Enemies {
		hp += max(e.HP, 0)
	}
	return hp
}

// EvaluateHP scores a phase by the fraction of total enemy health removed, in [0, 1].
func EvaluateHP(p *Phase) float64 {
	return 1.0 - float64(EnemyHPLeft(p))/float64(TotalEnemyHP)
}

// EvaluateWin scores 1 for a victory and 0 otherwise.
func EvaluateWin(p *Phase) float64 {
	if p.End == Victory {
		return 1.0
	}
	return 0.0
}

// EvaluateRelativeHP scores the health removed since root, normalized by total enemy health.
func EvaluateRelativeHP(root *Phase) Evaluate {
	start := EnemyHPLeft(root)
	return func(p *Phase) float64 {
		return float64(start-EnemyHPLeft(p)) / float64(TotalEnemyHP)
	}
}
