//nolint:funcorder
package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-sft/dsp/sft"
)

// Goertzel evaluates a single DFT term with the Goertzel recurrence.
//
// The target is given in cycles per length samples, so bin k of an N-point
// DFT is NewGoertzel(k, N). The analyzer is stateful: Power, Magnitude and
// DFT describe all samples processed since the last Reset.
type Goertzel struct {
	bin    float64
	length int
	omega  float64
	coeff  float64
	s0, s1 float64
	n      int
}

// NewGoertzel creates an analyzer for bin cycles per length samples.
//
// bin must be between 0 and length/2.
func NewGoertzel(bin float64, length int) (*Goertzel, error) {
	if length <= 0 {
		return nil, fmt.Errorf("goertzel: length must be > 0: %d", length)
	}
	if bin < 0 || bin > float64(length)/2 || math.IsNaN(bin) || math.IsInf(bin, 0) {
		return nil, fmt.Errorf("goertzel: bin must be between 0 and length/2: %v", bin)
	}

	omega := 2 * math.Pi * bin / float64(length)
	return &Goertzel{
		bin:    bin,
		length: length,
		omega:  omega,
		coeff:  2 * math.Cos(omega),
	}, nil
}

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0 = 0
	g.s1 = 0
	g.n = 0
}

// ProcessSample updates the internal state with a single input sample.
func (g *Goertzel) ProcessSample(input float64) {
	s := input + g.coeff*g.s0 - g.s1
	g.s1 = g.s0
	g.s0 = s
	g.n++
}

// ProcessBlock updates the internal state with a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
	g.n += len(input)
}

// Power returns |X|^2 over the processed samples.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X| over the processed samples.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// PowerDB returns the power in decibels (dB) with a safe floor at -300 dB.
func (g *Goertzel) PowerDB() float64 {
	p := g.Power()
	if p <= 1e-30 {
		return -300
	}

	return 10 * math.Log10(p)
}

// DFT returns X = sum x[i] * exp(-j*omega*i) over the processed samples.
func (g *Goertzel) DFT() complex128 {
	if g.n == 0 {
		return 0
	}
	y := complex(g.s0, 0) - cmplx.Rect(g.s1, -g.omega)
	return y * cmplx.Rect(1, -g.omega*float64(g.n-1))
}

// SinePhase returns phi in [0, 2*pi) such that a*sin(omega*i + phi) best
// matches the processed samples at this bin.
func (g *Goertzel) SinePhase() float64 {
	x := g.DFT()
	if x == 0 {
		return 0
	}
	phi := math.Mod(cmplx.Phase(x)+math.Pi/2, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi >= 2*math.Pi {
		phi = 0
	}
	return phi
}

// Bin returns the target in cycles per length samples.
func (g *Goertzel) Bin() float64 { return g.bin }

// Length returns the DFT length the bin refers to.
func (g *Goertzel) Length() int { return g.length }

// MultiGoertzel manages multiple Goertzel analyzers fed with the same input.
type MultiGoertzel struct {
	analyzers []*Goertzel
}

// NewMultiGoertzel creates analyzers for several bins of one DFT length.
func NewMultiGoertzel(bins []float64, length int) (*MultiGoertzel, error) {
	analyzers := make([]*Goertzel, len(bins))
	for i, k := range bins {
		g, err := NewGoertzel(k, length)
		if err != nil {
			return nil, err
		}

		analyzers[i] = g
	}

	return &MultiGoertzel{analyzers: analyzers}, nil
}

// ProcessBlock updates all analyzers with the same input block.
func (m *MultiGoertzel) ProcessBlock(input []float64) {
	for _, g := range m.analyzers {
		g.ProcessBlock(input)
	}
}

// Powers returns the powers for all analyzers.
func (m *MultiGoertzel) Powers() []float64 {
	p := make([]float64, len(m.analyzers))
	for i, g := range m.analyzers {
		p[i] = g.Power()
	}

	return p
}

// DFTs returns the DFT terms for all analyzers.
func (m *MultiGoertzel) DFTs() []complex128 {
	x := make([]complex128, len(m.analyzers))
	for i, g := range m.analyzers {
		x[i] = g.DFT()
	}

	return x
}

// Reset resets all analyzers.
func (m *MultiGoertzel) Reset() {
	for _, g := range m.analyzers {
		g.Reset()
	}
}

var referenceBins = func() []float64 {
	bins := make([]float64, sft.NumBins)
	for i := range bins {
		bins[i] = float64(i + 1)
	}
	return bins
}()

// Reference returns the exact DFT of b at the sine-fit bins, expressed on the
// sine-fit scale: Amplitude is |X[f]| and Phase is the sine phase in
// [0, 2*pi). For an in-grid tone both spectra agree; otherwise the sine-fit
// amplitude is the smaller one.
func Reference(b *sft.Block) sft.Spectrum {
	mg, err := NewMultiGoertzel(referenceBins, sft.BlockSize)
	if err != nil {
		panic(err) // bins 1..NumBins are always within a block
	}
	mg.ProcessBlock(b[:])

	var s sft.Spectrum
	for i, g := range mg.analyzers {
		s[i] = sft.Bin{Amplitude: g.Magnitude(), Phase: g.SinePhase()}
	}
	return s
}
