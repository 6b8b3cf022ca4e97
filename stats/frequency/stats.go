package frequency

import (
	"math"

	"github.com/cwbudde/algo-sft/dsp/core"
	"github.com/cwbudde/algo-sft/dsp/sft"
)

// Stats holds descriptors of one sine-fit spectrum.
//
// Amplitudes are the analyzer's correlation sums; bin k of an amplitude slice
// is frequency k+1 cycles per block, f_k = (k+1) * sampleRate / BlockSize Hz.
type Stats struct {
	BinCount   int
	Sum        float64 // sum of amplitudes
	Sum_dB     float64
	Max        float64
	PeakBin    int // cycles per block, 0 when every bin is silent
	PeakHz     float64
	Average    float64
	Average_dB float64
	Energy     float64 // sum of squared amplitudes
	SilentBins int     // bins floored at zero amplitude
	// Spectral shape descriptors
	Centroid float64 // spectral centroid (Hz)
	Spread   float64 // spectral spread (Hz)
	Flatness float64 // spectral flatness (Wiener entropy), 0..1
	Rolloff  float64 // frequency below which 85% energy lies (Hz)
}

// binFreq returns the frequency in Hz of amplitude index i.
func binFreq(i int, sampleRate float64) float64 {
	return sft.BinHz(i+1, sampleRate)
}

// Calculate computes statistics for s at sampleRate.
func Calculate(s *sft.Spectrum, sampleRate float64) Stats {
	return CalculateAmplitudes(s.Amplitudes(), sampleRate)
}

// CalculateAmplitudes computes statistics from bin amplitudes in frequency
// order, starting at 1 cycle per block.
func CalculateAmplitudes(amplitude []float64, sampleRate float64) Stats {
	n := len(amplitude)
	if n == 0 {
		return Stats{
			Sum_dB:     math.Inf(-1),
			Average_dB: math.Inf(-1),
		}
	}

	var s Stats
	s.BinCount = n
	for i, v := range amplitude {
		s.Sum += v
		s.Energy += v * v
		if v > s.Max {
			s.Max = v
			s.PeakBin = i + 1
		}
		if v == 0 {
			s.SilentBins++
		}
	}
	if s.PeakBin > 0 {
		s.PeakHz = sft.BinHz(s.PeakBin, sampleRate)
	}
	s.Sum_dB = core.LinearToDB(s.Sum)
	s.Average = s.Sum / float64(n)
	s.Average_dB = core.LinearToDB(s.Average)

	s.Centroid = centroid(amplitude, sampleRate, s.Sum)
	s.Spread = spread(amplitude, sampleRate, s.Centroid, s.Sum)
	s.Flatness = flatness(amplitude)
	s.Rolloff = rolloff(amplitude, sampleRate, 0.85, s.Energy)

	return s
}

// Centroid returns the spectral centroid in Hz.
//
//	centroid = sum(f_i * A_i) / sum(A_i)
func Centroid(amplitude []float64, sampleRate float64) float64 {
	sum := 0.0
	for _, v := range amplitude {
		sum += v
	}
	return centroid(amplitude, sampleRate, sum)
}

func centroid(amplitude []float64, sampleRate float64, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	weightedSum := 0.0
	for i, v := range amplitude {
		weightedSum += binFreq(i, sampleRate) * v
	}
	return weightedSum / sum
}

func spread(amplitude []float64, sampleRate float64, cent float64, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	weightedSqSum := 0.0
	for i, v := range amplitude {
		diff := binFreq(i, sampleRate) - cent
		weightedSqSum += diff * diff * v
	}
	return math.Sqrt(weightedSqSum / sum)
}

// Flatness returns the spectral flatness (Wiener entropy) in the range 0..1.
//
// Flatness = exp(mean(log(A_i))) / mean(A_i)
//
// Any silent bin makes the geometric mean, and so the flatness, zero.
func Flatness(amplitude []float64) float64 {
	return flatness(amplitude)
}

func flatness(amplitude []float64) float64 {
	n := len(amplitude)
	if n == 0 {
		return 0
	}

	sumLin := 0.0
	sumLog := 0.0
	for _, v := range amplitude {
		if v <= 0 {
			return 0
		}
		sumLin += v
		sumLog += math.Log(v)
	}

	meanLin := sumLin / float64(n)
	return math.Exp(sumLog/float64(n)) / meanLin
}

// Rolloff returns the frequency below which the given fraction (0..1) of
// the squared-amplitude energy lies.
func Rolloff(amplitude []float64, sampleRate float64, percent float64) float64 {
	energy := 0.0
	for _, v := range amplitude {
		energy += v * v
	}
	return rolloff(amplitude, sampleRate, percent, energy)
}

func rolloff(amplitude []float64, sampleRate float64, percent float64, totalEnergy float64) float64 {
	if totalEnergy == 0 {
		return 0
	}
	threshold := core.Clamp(percent, 0, 1) * totalEnergy
	cum := 0.0
	for i, v := range amplitude {
		cum += v * v
		if cum >= threshold {
			return binFreq(i, sampleRate)
		}
	}
	return binFreq(len(amplitude)-1, sampleRate)
}
