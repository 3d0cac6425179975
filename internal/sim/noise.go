package sim

import "math/rand"

// noiseSource draws bounded uniform perturbations from a single rand.Rand.
// Every model in the engine pulls from the same source in a fixed call
// order, so a seeded engine produces a bit-for-bit reproducible stream.
type noiseSource struct {
	rng *rand.Rand
}

func newNoiseSource(seed int64) *noiseSource {
	return &noiseSource{rng: rand.New(rand.NewSource(seed))}
}

// uniform returns a value in [-amplitude, amplitude].
func (n *noiseSource) uniform(amplitude float64) float64 {
	return (n.rng.Float64()*2 - 1) * amplitude
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
