package agent

import (
	"math"

	"golang.org/x/exp/rand"
)

// NewTrainingSelector samples a legal action from the temperature adjusted
// policy, for self-play during training.
func NewTrainingSelector(temperature float64, rng *rand.Rand) Selector {
	if temperature <= 0 {
		panic("temperature must be positive")
	}
	return func(policy []float64, legal []int) int {
		if len(legal) == 0 {
			return -1
		}
		return sample(adjustTemperature(policy, legal, temperature), legal, rng)
	}
}

func adjustTemperature(policy []float64, legal []int, temperature float64) []float64 {
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(legal))
	for i, a := range legal {
		prob := math.Pow(policy[a], exponent)
		sum += prob
		adjusted[i] = prob
	}
	if sum == 0 { // No visits on any legal action
		for i := range adjusted {
			adjusted[i] = 1
		}
		sum = float64(len(adjusted))
	}
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}

func sample(probs []float64, legal []int, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for i, prob := range probs {
		cumulative += prob
		if sampled < cumulative {
			return legal[i]
		}
	}
	return legal[len(legal)-1] // Fallback in case of rounding errors
}
