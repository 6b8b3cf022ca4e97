// Package roundtrip measures how closely a resynthesized signal follows the
// signal it was analyzed from.
//
// The sine-fit transform is lossy by construction, so reconstruction quality
// is reported as similarity figures rather than an equality check.
package roundtrip

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sft/dsp/core"
	"github.com/cwbudde/algo-sft/dsp/sft"
)

// ErrEmptyInput is returned when the signals share less than one block.
var ErrEmptyInput = errors.New("roundtrip: signals share no whole block")

// Config holds comparison parameters.
type Config struct {
	// SampleRate is reported back in the result; it does not affect the figures.
	SampleRate float64
	// BlockSize is the FFT length used for spectral comparison.
	// Zero selects sft.BlockSize.
	BlockSize int
}

// Result holds round-trip similarity figures.
type Result struct {
	SampleRate float64
	Samples    int // compared samples, a whole number of blocks
	Blocks     int

	// NCC is the zero-lag normalized cross-correlation in [-1, 1].
	NCC float64
	// SNRdB compares signal energy with the raw reconstruction error.
	SNRdB float64
	// Gain is the least-squares scale that best maps reconstructed onto original.
	Gain float64
	// GainCorrectedSNRdB is SNRdB after applying Gain to the reconstruction.
	GainCorrectedSNRdB float64
	// MaxAbsError is the largest sample-wise deviation.
	MaxAbsError float64

	// SpectralCorrelation is the mean per-block Pearson correlation between
	// FFT magnitude spectra. Blocks where either spectrum is flat are skipped.
	SpectralCorrelation float64
	SpectralBlocks      int
}

// Compare measures reconstructed against original over their common
// block-aligned prefix.
func Compare(original, reconstructed []float64, cfg Config) (Result, error) {
	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = sft.BlockSize
	}

	n := min(len(original), len(reconstructed))
	blocks := n / blockSize
	if blocks == 0 {
		return Result{}, fmt.Errorf("%w: %d samples, block size %d", ErrEmptyInput, n, blockSize)
	}
	n = blocks * blockSize
	x := original[:n]
	y := reconstructed[:n]

	res := Result{
		SampleRate: cfg.SampleRate,
		Samples:    n,
		Blocks:     blocks,
	}

	exx := vecmath.DotProduct(x, x)
	eyy := vecmath.DotProduct(y, y)
	exy := vecmath.DotProduct(x, y)

	if exx > 0 && eyy > 0 {
		res.NCC = exy / math.Sqrt(exx*eyy)
	}
	if eyy > 0 {
		res.Gain = exy / eyy
	}

	var errRaw, errScaled float64
	for i := range x {
		d := x[i] - y[i]
		errRaw += d * d
		res.MaxAbsError = math.Max(res.MaxAbsError, math.Abs(d))

		ds := x[i] - res.Gain*y[i]
		errScaled += ds * ds
	}
	res.SNRdB = snrDB(exx, errRaw)
	res.GainCorrectedSNRdB = snrDB(exx, errScaled)

	corr, counted, err := spectralCorrelation(x, y, blockSize)
	if err != nil {
		return Result{}, err
	}
	res.SpectralCorrelation = corr
	res.SpectralBlocks = counted

	return res, nil
}

func snrDB(signal, noise float64) float64 {
	if noise == 0 {
		if signal == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return core.LinearPowerToDB(signal / noise)
}

func spectralCorrelation(x, y []float64, blockSize int) (float64, int, error) {
	plan, err := algofft.NewPlan64(blockSize)
	if err != nil {
		return 0, 0, fmt.Errorf("roundtrip: failed to create FFT plan: %w", err)
	}

	bins := blockSize/2 + 1
	in := make([]complex128, blockSize)
	out := make([]complex128, blockSize)
	re := make([]float64, bins)
	im := make([]float64, bins)
	magX := make([]float64, bins)
	magY := make([]float64, bins)

	magnitude := func(block, dst []float64) error {
		for i, v := range block {
			in[i] = complex(v, 0)
		}
		if err := plan.Forward(out, in); err != nil {
			return fmt.Errorf("roundtrip: forward FFT failed: %w", err)
		}
		for k := 0; k < bins; k++ {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}
		vecmath.Magnitude(dst, re, im)
		return nil
	}

	sum := 0.0
	counted := 0
	for start := 0; start+blockSize <= len(x); start += blockSize {
		if err := magnitude(x[start:start+blockSize], magX); err != nil {
			return 0, 0, err
		}
		if err := magnitude(y[start:start+blockSize], magY); err != nil {
			return 0, 0, err
		}
		// DC is not represented by the sine-fit bins.
		r, ok := pearson(magX[1:], magY[1:])
		if !ok {
			continue
		}
		sum += r
		counted++
	}

	if counted == 0 {
		return 0, 0, nil
	}
	return sum / float64(counted), counted, nil
}

func pearson(a, b []float64) (float64, bool) {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, va, vb float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0, false
	}
	return cov / math.Sqrt(va*vb), true
}
