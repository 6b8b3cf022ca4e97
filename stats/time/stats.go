// Package time computes time-domain level statistics of sample streams.
package time

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Stats holds time-domain signal statistics.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean
	RMS            float64
	RMS_dB         float64
	Peak           float64 // max absolute sample
	PeakPos        int
	Peak_dB        float64
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64
	Energy         float64 // sum of squares
	ZeroCrossings  int
}

// ampTodB converts an amplitude value to decibels: 20 * log10(|value|).
// Returns -Inf for zero values.
func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

// emptyStats returns a zero-valued Stats with -Inf for the level fields.
func emptyStats() Stats {
	return Stats{
		RMS_dB:  math.Inf(-1),
		Peak_dB: math.Inf(-1),
	}
}

// Calculate computes all statistics in a single pass.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	var (
		sum           float64
		peak          float64
		peakPos       int
		zeroCrossings int
	)
	for i, x := range signal {
		sum += x
		if a := math.Abs(x); a > peak {
			peak = a
			peakPos = i
		}
		if i > 0 && signal[i-1]*x < 0 {
			zeroCrossings++
		}
	}

	energy := vecmath.DotProduct(signal, signal)
	rms := math.Sqrt(energy / float64(n))

	var crest, crestdB float64
	if rms > 0 {
		crest = peak / rms
		crestdB = ampTodB(crest)
	}

	return Stats{
		Length:         n,
		DC:             sum / float64(n),
		RMS:            rms,
		RMS_dB:         ampTodB(rms),
		Peak:           peak,
		PeakPos:        peakPos,
		Peak_dB:        ampTodB(peak),
		CrestFactor:    crest,
		CrestFactor_dB: crestdB,
		Energy:         energy,
		ZeroCrossings:  zeroCrossings,
	}
}

// PerBlock computes statistics for each whole block of blockSize samples.
// A trailing partial block is ignored, matching block analysis.
func PerBlock(signal []float64, blockSize int) []Stats {
	if blockSize <= 0 {
		return nil
	}

	blocks := len(signal) / blockSize
	out := make([]Stats, blocks)
	for b := range out {
		out[b] = Calculate(signal[b*blockSize : (b+1)*blockSize])
	}

	return out
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(vecmath.DotProduct(signal, signal) / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	var peak float64
	for _, x := range signal {
		peak = math.Max(peak, math.Abs(x))
	}

	return peak
}

// LevelChangeDB returns the RMS level of b relative to a in dB.
// Returns -Inf when b is silent and +Inf when only a is silent.
func LevelChangeDB(a, b Stats) float64 {
	switch {
	case b.RMS == 0:
		return math.Inf(-1)
	case a.RMS == 0:
		return math.Inf(1)
	default:
		return 20 * math.Log10(b.RMS/a.RMS)
	}
}
