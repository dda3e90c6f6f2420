package testutil

import (
	"math/rand"
)

// DeterministicNoise generates Gaussian noise with standard deviation std
// and a fixed seed for reproducibility.
func DeterministicNoise(seed int64, std float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.NormFloat64() * std
	}
	return out
}

// StepTrace builds a piecewise constant trace: plateau i has height
// levels[i] and lengths[i] samples. Gaussian noise with standard deviation
// std is added when std > 0.
func StepTrace(levels []float64, lengths []int, std float64, seed int64) []float64 {
	var out []float64
	for i, lv := range levels {
		for range lengths[i] {
			out = append(out, lv)
		}
	}
	if std > 0 {
		noise := DeterministicNoise(seed, std, len(out))
		for i := range out {
			out[i] += noise[i]
		}
	}
	return out
}

// StepPositions returns the sample indices at which the plateaus of a
// StepTrace with the given lengths change.
func StepPositions(lengths []int) []int {
	var out []int
	pos := 0
	for _, l := range lengths[:len(lengths)-1] {
		pos += l
		out = append(out, pos)
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
