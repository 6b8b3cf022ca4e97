package sft

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Synthesize rebuilds a block from s by summing, for f = 1..SynthesisBins,
//
//	(amplitude_f / BlockSize) * sin(f*i/BlockSize*tau + phase_f)
//
// The top bin (f = NumBins) is ignored. The 1/BlockSize gain brings the
// correlation-sum amplitudes back towards sample range; it is not an exact
// inverse of [Analyze].
func Synthesize(s *Spectrum) Block {
	var out Block
	var tmp [BlockSize]float64

	for f := 1; f <= SynthesisBins; f++ {
		bin := s[f-1]
		if bin.Amplitude == 0 {
			continue
		}

		// sin(x+p) = sin(x)cos(p) + cos(x)sin(p)
		gain := bin.Amplitude / BlockSize
		sinP, cosP := math.Sincos(bin.Phase)

		vecmath.ScaleBlock(tmp[:], sineRow(f), gain*cosP)
		vecmath.AddBlockInPlace(out[:], tmp[:])
		vecmath.ScaleBlock(tmp[:], cosineRow(f), gain*sinP)
		vecmath.AddBlockInPlace(out[:], tmp[:])
	}

	return out
}
