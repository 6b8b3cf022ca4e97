package sft

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cwbudde/algo-sft/dsp/core"
	"github.com/cwbudde/algo-sft/internal/testutil"
)

func peakBin(s *Spectrum) int {
	peak := 1
	for f := 2; f <= NumBins; f++ {
		if s.At(f).Amplitude > s.At(peak).Amplitude {
			peak = f
		}
	}
	return peak
}

func TestAnalyzer_BlockCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{n: 0, want: 0},
		{n: 1, want: 0},
		{n: 511, want: 0},
		{n: 512, want: 1},
		{n: 513, want: 1},
		{n: 600, want: 1},
		{n: 1024, want: 2},
		{n: 1535, want: 2},
		{n: 1536, want: 3},
	}

	for _, tt := range tests {
		got := AnalyzeSamples(testutil.DeterministicNoise(1, 1, tt.n), core.WithWorkers(2))
		if len(got) != tt.want {
			t.Errorf("N=%d: got %d spectra, want %d", tt.n, len(got), tt.want)
		}
	}
}

func TestAnalyzer_PreservesBlockOrder(t *testing.T) {
	var samples []float64
	for i := 0; i < 6; i++ {
		samples = append(samples, testutil.BlockTone(10*(i+1), 0.5, 0, BlockSize, BlockSize)...)
	}

	spectra := NewAnalyzer(core.WithWorkers(3)).Analyze(samples)
	if len(spectra) != 6 {
		t.Fatalf("got %d spectra, want 6", len(spectra))
	}
	for i := range spectra {
		if got, want := peakBin(&spectra[i]), 10*(i+1); got != want {
			t.Fatalf("block %d: peak bin %d, want %d", i, got, want)
		}
	}
}

func TestAnalyzer_TailIsDropped(t *testing.T) {
	samples := testutil.DeterministicNoise(11, 1, 600)
	spectra := AnalyzeSamples(samples)
	if len(spectra) != 1 {
		t.Fatalf("got %d spectra, want 1", len(spectra))
	}

	head := BlockFrom(samples[:BlockSize])
	if spectra[0] != Analyze(&head) {
		t.Fatal("spectrum differs from analysis of the first 512 samples")
	}

	out := SynthesizeSpectra(spectra)
	if len(out) != BlockSize {
		t.Fatalf("synthesized %d samples, want %d", len(out), BlockSize)
	}
}

func TestZeroInputRoundTrip(t *testing.T) {
	spectra := AnalyzeSamples(make([]float64, 1024))
	if len(spectra) != 2 {
		t.Fatalf("got %d spectra, want 2", len(spectra))
	}
	for i := range spectra {
		for f := 1; f <= NumBins; f++ {
			if bin := spectra[i].At(f); bin != (Bin{}) {
				t.Fatalf("block %d bin %d = %+v, want zero", i, f, bin)
			}
		}
	}

	out := SynthesizeSpectra(spectra)
	if len(out) != 1024 {
		t.Fatalf("synthesized %d samples, want 1024", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

func TestSynthesizer_Length(t *testing.T) {
	for _, n := range []int{0, 1, 3, 8} {
		spectra := make([]Spectrum, n)
		for i := range spectra {
			spectra[i][i] = Bin{Amplitude: float64(i + 1)}
		}
		out := NewSynthesizer(core.WithWorkers(4)).Synthesize(spectra)
		if len(out) != n*BlockSize {
			t.Errorf("%d spectra: got %d samples, want %d", n, len(out), n*BlockSize)
		}
	}
}

func TestRoundTrip_BoundedSimilarity(t *testing.T) {
	// Integer-bin tones whose delays lie inside the swept offset range come
	// back at half amplitude with the right phase.
	const blocks = 3
	n := blocks * BlockSize
	x := testutil.Mix(
		testutil.BlockTone(3, 0.3, 10, BlockSize, n),
		testutil.BlockTone(17, 0.2, 5, BlockSize, n),
		testutil.BlockTone(40, 0.1, 2, BlockSize, n),
	)

	y := SynthesizeSpectra(AnalyzeSamples(x))
	if len(y) != n {
		t.Fatalf("len = %d, want %d", len(y), n)
	}

	ncc, err := testutil.NormalizedCrossCorrelation(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if ncc < 0.999 {
		t.Fatalf("normalized cross-correlation = %v, want >= 0.999", ncc)
	}

	half := make([]float64, n)
	for i := range x {
		half[i] = x[i] / 2
	}
	testutil.RequireSliceNearlyEqual(t, y, half, 1e-9)
}

func TestRoundTrip_NoiseStaysCorrelated(t *testing.T) {
	x := testutil.DeterministicNoise(5, 0.5, 4*BlockSize)
	y := SynthesizeSpectra(AnalyzeSamples(x))
	testutil.RequireFinite(t, y)

	ncc, err := testutil.NormalizedCrossCorrelation(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if ncc <= 0 {
		t.Fatalf("normalized cross-correlation = %v, want > 0", ncc)
	}
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	x := testutil.DeterministicNoise(9, 1, 5*BlockSize+17)

	serial := AnalyzeSamples(x, core.WithWorkers(1))
	parallel := AnalyzeSamples(x, core.WithWorkers(8))
	if len(serial) != len(parallel) {
		t.Fatalf("len mismatch: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("block %d differs between worker counts", i)
		}
	}

	a := SynthesizeSpectra(serial, core.WithWorkers(1))
	b := SynthesizeSpectra(parallel, core.WithWorkers(8))
	testutil.RequireSliceNearlyEqual(t, a, b, 0)
}

func TestProgressReportsEveryBlock(t *testing.T) {
	const blocks = 7
	var (
		mu   sync.Mutex
		seen = make(map[int]bool)
		last int
	)
	progress := func(index, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != blocks {
			t.Errorf("total = %d, want %d", total, blocks)
		}
		if done != last+1 {
			t.Errorf("done = %d after %d, want monotonic count", done, last)
		}
		last = done
		seen[index] = true
	}

	AnalyzeSamples(make([]float64, blocks*BlockSize+100), core.WithWorkers(3), core.WithProgress(progress))

	if last != blocks {
		t.Fatalf("final done = %d, want %d", last, blocks)
	}
	for i := 0; i < blocks; i++ {
		if !seen[i] {
			t.Fatalf("no progress for block %d", i)
		}
	}
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	spectra, err := NewAnalyzer().AnalyzeContext(ctx, make([]float64, 4*BlockSize))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if spectra != nil {
		t.Fatal("expected nil spectra on cancellation")
	}

	out, err := NewSynthesizer().SynthesizeContext(ctx, make([]Spectrum, 2))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if out != nil {
		t.Fatal("expected nil samples on cancellation")
	}
}

func TestCancelAfterLastBlockKeepsResult(t *testing.T) {
	const blocks = 3
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progress := func(_, done, total int) {
		if done == total {
			cancel()
		}
	}
	a := NewAnalyzer(core.WithWorkers(1), core.WithProgress(progress))
	spectra, err := a.AnalyzeContext(ctx, make([]float64, blocks*BlockSize))
	if err != nil {
		t.Fatalf("err = %v, want nil after all blocks completed", err)
	}
	if len(spectra) != blocks {
		t.Fatalf("got %d spectra, want %d", len(spectra), blocks)
	}
}
