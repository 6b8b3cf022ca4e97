package sft

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-sft/dsp/core"
)

// Analyzer applies [Analyze] to consecutive blocks of a sample stream.
type Analyzer struct {
	cfg core.ProcessorConfig
}

// NewAnalyzer creates an Analyzer. Workers and Progress are honored;
// SampleRate is informational only.
func NewAnalyzer(opts ...core.ProcessorOption) *Analyzer {
	return &Analyzer{cfg: core.ApplyProcessorOptions(opts...)}
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() core.ProcessorConfig {
	return a.cfg
}

// Analyze splits samples into NumBlocks(len(samples)) blocks taken from the
// front and returns one Spectrum per block in input order. A trailing
// remainder shorter than BlockSize is ignored; fewer than BlockSize samples
// yield an empty result.
func (a *Analyzer) Analyze(samples []float64) []Spectrum {
	out, _ := a.AnalyzeContext(context.Background(), samples)
	return out
}

// AnalyzeContext is like Analyze but stops early when ctx is cancelled,
// returning nil and ctx.Err().
func (a *Analyzer) AnalyzeContext(ctx context.Context, samples []float64) ([]Spectrum, error) {
	n := NumBlocks(len(samples))
	out := make([]Spectrum, n)

	err := forEachBlock(ctx, a.cfg, n, func(i int) {
		block := BlockFrom(samples[i*BlockSize : (i+1)*BlockSize])
		out[i] = Analyze(&block)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Synthesizer applies [Synthesize] to a sequence of spectra.
type Synthesizer struct {
	cfg core.ProcessorConfig
}

// NewSynthesizer creates a Synthesizer. Workers and Progress are honored.
func NewSynthesizer(opts ...core.ProcessorOption) *Synthesizer {
	return &Synthesizer{cfg: core.ApplyProcessorOptions(opts...)}
}

// Config returns the synthesizer configuration.
func (s *Synthesizer) Config() core.ProcessorConfig {
	return s.cfg
}

// Synthesize rebuilds every spectrum and concatenates the blocks in order.
// The result always holds len(spectra)*BlockSize samples.
func (s *Synthesizer) Synthesize(spectra []Spectrum) []float64 {
	out, _ := s.SynthesizeContext(context.Background(), spectra)
	return out
}

// SynthesizeContext is like Synthesize but stops early when ctx is
// cancelled, returning nil and ctx.Err().
func (s *Synthesizer) SynthesizeContext(ctx context.Context, spectra []Spectrum) ([]float64, error) {
	out := make([]float64, len(spectra)*BlockSize)

	err := forEachBlock(ctx, s.cfg, len(spectra), func(i int) {
		block := Synthesize(&spectra[i])
		copy(out[i*BlockSize:], block[:])
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzeSamples is a one-shot helper for NewAnalyzer(opts...).Analyze.
func AnalyzeSamples(samples []float64, opts ...core.ProcessorOption) []Spectrum {
	return NewAnalyzer(opts...).Analyze(samples)
}

// SynthesizeSpectra is a one-shot helper for NewSynthesizer(opts...).Synthesize.
func SynthesizeSpectra(spectra []Spectrum, opts ...core.ProcessorOption) []float64 {
	return NewSynthesizer(opts...).Synthesize(spectra)
}

// forEachBlock runs fn for block indices 0..n-1 on at most cfg.Workers
// goroutines. Each call must only write to its own output slot.
func forEachBlock(ctx context.Context, cfg core.ProcessorConfig, n int, fn func(i int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		done int
	)
	finish := func(i int) {
		if cfg.Progress == nil {
			return
		}
		mu.Lock()
		done++
		cfg.Progress(i, done, n)
		mu.Unlock()
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			completed.Add(1)
			finish(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// A cancellation that lands after the last block still yields a full result.
	if completed.Load() == int64(n) {
		return nil
	}
	return ctx.Err()
}
