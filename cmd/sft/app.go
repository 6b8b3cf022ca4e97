package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-sft/dsp/core"
	"github.com/cwbudde/algo-sft/dsp/sft"
	"github.com/cwbudde/algo-sft/internal/config"
	"github.com/cwbudde/algo-sft/pcm"
	"github.com/cwbudde/algo-sft/sftfile"
)

type app struct {
	cfg    *config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

type input struct {
	samples    []float64
	sampleRate float64
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("sft "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// load reads samples from path. Raw input has no rate of its own and takes
// the configured one.
func (a *app) load(path string) (input, error) {
	src, err := pcm.Load(path)
	if err != nil {
		return input{}, err
	}
	rate := float64(src.SampleRate)
	if pcm.FormatOf(path) == pcm.FormatRaw {
		rate = a.cfg.SampleRate
	}

	a.log.Info("loaded input",
		"path", path,
		"samples", len(src.Samples),
		"sample_rate", rate,
		"channels", src.Channels,
	)
	switch tail := len(src.Samples) % sft.BlockSize; {
	case len(src.Samples) < sft.BlockSize:
		a.log.Warn("input shorter than one block; nothing to analyze", "samples", len(src.Samples))
	case tail != 0:
		a.log.Debug("dropping partial trailing block", "samples", tail)
	}
	return input{samples: src.Samples, sampleRate: rate}, nil
}

// options returns the processor options for a signal at sampleRate.
func (a *app) options(sampleRate float64) []core.ProcessorOption {
	return append(a.cfg.ProcessorOptions(), core.WithSampleRate(sampleRate))
}

func (a *app) analyzer(sampleRate float64) *sft.Analyzer {
	opts := append(a.options(sampleRate), core.WithProgress(func(index, done, total int) {
		a.log.Debug("analyzed block", "index", index, "done", done, "total", total)
	}))
	return sft.NewAnalyzer(opts...)
}

func (a *app) save(path string, samples []float64, sampleRate float64) error {
	if err := pcm.Save(path, samples, int(math.Round(sampleRate))); err != nil {
		return err
	}
	a.log.Info("wrote output", "path", path, "samples", len(samples))
	return nil
}

// readSpectra loads a spectra file, reporting open, stat and empty failures
// the same way pcm.Load does.
func readSpectra(path string) ([]sft.Spectrum, sftfile.Precision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &pcm.OpenError{Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, 0, &pcm.StatError{Path: path, Err: err}
	}
	if fi.Size() == 0 {
		return nil, 0, fmt.Errorf("%w: %q", pcm.ErrEmptyInput, path)
	}

	spectra, p, err := sftfile.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %q: %w", path, err)
	}
	return spectra, p, nil
}

func writeSpectra(path string, spectra []sft.Spectrum, p sftfile.Precision) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", path, cerr)
		}
	}()
	return sftfile.Encode(f, spectra, p)
}

func isSpectraFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sft")
}

// spectraPath derives the default .sft name for an input file.
func spectraPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".sft"
}
