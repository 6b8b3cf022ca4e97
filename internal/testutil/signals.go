package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// BlockTone generates a sine with an integer number of cycles per period
// samples, delayed by offset samples: amplitude*sin(2*pi*cycles*(i+offset)/period).
func BlockTone(cycles int, amplitude float64, offset, period, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(cycles)*float64(i+offset)/float64(period))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Mix returns the element-wise sum of the given signals, truncated to the
// shortest one.
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	n := len(signals[0])
	for _, s := range signals[1:] {
		if len(s) < n {
			n = len(s)
		}
	}
	out := make([]float64, n)
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
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
