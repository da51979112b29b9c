package searcher

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"
)

// normalize scales v to sum to 1. A zero-sum vector becomes one-hot at FallbackAction.
func normalize(v []float64) []float64 {
	out := slices.Clone(v)
	sum := floats.Sum(out)
	if sum != 0 {
		floats.Scale(1/sum, out)
		return out
	}
	clear(out)
	out[FallbackAction] = 1
	return out
}

func masked(p, mask []float64) []float64 {
	out := slices.Clone(p)
	floats.Mul(out, mask)
	return out
}

type puct struct {
	c     float64
	sqrtN float64 // sqrt(N0)
	sqrtE float64 // sqrt(N0 + epsilon), for actions without a Q value
}

func newPUCT(c float64, n0 int, epsilon float64) puct {
	if c < 0 {
		panic("exploration constant cannot be negative")
	}
	return puct{
		c:     c,
		sqrtN: math.Sqrt(float64(n0)),
		sqrtE: math.Sqrt(float64(n0) + epsilon),
	}
}

func (u puct) evaluate(p, q float64, n1 int, qSet bool) float64 {
	if !qSet {
		return u.c * p * u.sqrtE
	}
	// U = Q + c*P*sqrt(N0)/(1+N1)
	return q + u.c*p*u.sqrtN/float64(1+n1)
}

// selectPUCT returns the legal action maximizing U. Ties go to the lowest
// index unless rng is given, which then breaks them uniformly.
func selectPUCT(n *node, c, epsilon float64, rng *rand.Rand) int {
	if len(n.legal) == 0 {
		return FallbackAction
	}
	u := newPUCT(c, n.n0, epsilon)
	best := math.Inf(-1)
	var ties []int
	for _, a := range n.legal {
		score := u.evaluate(n.p[a], n.q[a], n.n1[a], n.qSet[a])
		switch {
		case score > best:
			best = score
			ties = append(ties[:0], a)
		case score == best:
			ties = append(ties, a)
		}
	}
	if rng == nil || len(ties) == 1 {
		return ties[0]
	}
	return ties[rng.Intn(len(ties))]
}

// pickFanout samples an action weighted by P(s), preferring actions that
// have not been tried from s yet, and marks the pick as tried.
func pickFanout(n *node, rng *rand.Rand) int {
	if len(n.legal) == 0 {
		return FallbackAction
	}
	candidates := make([]int, 0, len(n.legal))
	for _, a := range n.legal {
		if !n.qSet[a] && !n.tried[a] {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		candidates = n.legal
	}
	weights := make([]float64, len(candidates))
	for i, a := range candidates {
		weights[i] = n.p[a]
	}
	a := sampleWeighted(candidates, weights, rng)
	n.tried[a] = true
	return a
}

func sampleWeighted(candidates []int, weights []float64, rng *rand.Rand) int {
	total := floats.Sum(weights)
	if total <= 0 {
		return candidates[rng.Intn(len(candidates))]
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1] // Rounding
}

// calcPolicy turns visit counts into a training target:
// N1(s, a) * mask(s, a) / (N0(s) + epsilon), normalized, and collapsed to
// its argmax past the depth bound.
func calcPolicy(n *node, depth, bound int, epsilon float64) []float64 {
	pol := make([]float64, ActionSpace)
	den := float64(n.n0) + epsilon
	for _, a := range n.legal {
		pol[a] = float64(n.n1[a]) / den
	}
	pol = normalize(pol)
	if depth > bound {
		best := floats.MaxIdx(pol)
		clear(pol)
		pol[best] = 1
	}
	return pol
}

// withNoise mixes Dirichlet(alpha) noise drawn from rng into p:
// (1-w)*p + w*noise.
func withNoise(p []float64, alpha, weight float64, rng *rand.Rand) []float64 {
	if alpha <= 0 || weight <= 0 || weight > 1 {
		panic(fmt.Sprintf("invalid noise alpha=%v weight=%v", alpha, weight))
	}
	alphas := make([]float64, len(p))
	for i := range alphas {
		alphas[i] = alpha
	}
	noise := distmv.NewDirichlet(alphas, rng).Rand(nil)
	out := slices.Clone(p)
	floats.Scale(1-weight, out)
	floats.AddScaled(out, weight, noise)
	return out
}
