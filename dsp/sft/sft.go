package sft

import "math"

const (
	// BlockSize is the number of samples in one analysis block.
	BlockSize = 512

	// NumBins is the number of analyzed frequencies, 1..NumBins cycles per block.
	NumBins = 256

	// SynthesisBins is the highest frequency used by [Synthesize].
	SynthesisBins = NumBins - 1

	tau = 2 * math.Pi
)

// Block is one window of BlockSize consecutive samples.
type Block [BlockSize]float64

// Bin is the amplitude and phase estimate for one frequency.
type Bin struct {
	Amplitude float64
	Phase     float64
}

// Spectrum holds the NumBins estimates for one block.
// Index k holds frequency k+1 cycles per block.
type Spectrum [NumBins]Bin

// BlockFrom copies the first BlockSize samples of s into a Block.
// Missing samples are left at zero.
func BlockFrom(s []float64) Block {
	var b Block
	copy(b[:], s)
	return b
}

// NumBlocks returns how many whole blocks n samples contain.
func NumBlocks(n int) int {
	if n <= 0 {
		return 0
	}
	return n / BlockSize
}

// At returns the bin for frequency f (1..NumBins) cycles per block.
// It panics if f is out of range.
func (s Spectrum) At(f int) Bin {
	return s[f-1]
}

// Amplitudes returns the bin amplitudes in frequency order.
func (s Spectrum) Amplitudes() []float64 {
	out := make([]float64, NumBins)
	for i, b := range s {
		out[i] = b.Amplitude
	}
	return out
}

// Phases returns the bin phases in frequency order.
func (s Spectrum) Phases() []float64 {
	out := make([]float64, NumBins)
	for i, b := range s {
		out[i] = b.Phase
	}
	return out
}

// BinHz maps frequency f in cycles per block to Hz at sampleRate.
func BinHz(f int, sampleRate float64) float64 {
	return float64(f) * sampleRate / BlockSize
}

// PhaseOffsets returns how many circular phase offsets are searched for
// frequency f: offsets 0 through NumBins/f inclusive.
func PhaseOffsets(f int) int {
	if f < 1 {
		return 0
	}
	return NumBins/f + 1
}

// OffsetPhase converts a winning phase offset j for frequency f to radians.
func OffsetPhase(j, f int) float64 {
	return float64(j) / NumBins * math.Pi * float64(f)
}
