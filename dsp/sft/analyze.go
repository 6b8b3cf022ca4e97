package sft

import "github.com/cwbudde/algo-vecmath"

// Analyze estimates amplitude and phase for every frequency 1..NumBins in b.
//
// For frequency f the reference sine is circularly shifted by j = 0..NumBins/f
// samples and correlated with the block. The largest correlation becomes the
// amplitude and the winning shift j maps to phase j/NumBins*pi*f. The search
// starts from zero, so a bin whose correlations are all non-positive stays at
// amplitude 0 and phase 0.
func Analyze(b *Block) Spectrum {
	var out Spectrum
	for f := 1; f <= NumBins; f++ {
		out[f-1] = AnalyzeBin(b, f)
	}
	return out
}

// AnalyzeBin runs the phase sweep for a single frequency f (1..NumBins).
func AnalyzeBin(b *Block, f int) Bin {
	x := b[:]

	best := 0.0
	bestJ := -1
	n := PhaseOffsets(f)
	for j := 0; j < n; j++ {
		c := vecmath.DotProduct(reference(f, j), x)
		if c > best {
			best = c
			bestJ = j
		}
	}

	if bestJ < 0 {
		return Bin{}
	}
	return Bin{Amplitude: best, Phase: OffsetPhase(bestJ, f)}
}
