package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/cwbudde/algo-sft/dsp/sft"
	"github.com/cwbudde/algo-sft/dsp/signal"
	"github.com/cwbudde/algo-sft/dsp/spectrum"
	"github.com/cwbudde/algo-sft/measure/roundtrip"
	"github.com/cwbudde/algo-sft/sftfile"
	"github.com/cwbudde/algo-sft/stats/frequency"
	timestats "github.com/cwbudde/algo-sft/stats/time"
)

func runRoundtrip(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("roundtrip")
	in := fs.String("in", a.cfg.Input, "input samples (.raw, .wav or .flac)")
	out := fs.String("out", a.cfg.Output, "output samples (.raw or .wav)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := a.load(*in)
	if err != nil {
		return err
	}
	spectra, err := a.analyzer(src.sampleRate).AnalyzeContext(ctx, src.samples)
	if err != nil {
		return err
	}
	a.log.Info("analyzed", "blocks", len(spectra))

	samples, err := sft.NewSynthesizer(a.options(src.sampleRate)...).SynthesizeContext(ctx, spectra)
	if err != nil {
		return err
	}
	return a.save(*out, samples, src.sampleRate)
}

func runAnalyze(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("analyze")
	in := fs.String("in", a.cfg.Input, "input samples (.raw, .wav or .flac)")
	out := fs.String("out", "", "output spectra file (default: input name with .sft)")
	precision := fs.Int("precision", a.cfg.Precision, "stored value width in bits: 32 or 16")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := sftfile.ParsePrecision(*precision)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if *out == "" {
		*out = spectraPath(*in)
	}

	src, err := a.load(*in)
	if err != nil {
		return err
	}
	spectra, err := a.analyzer(src.sampleRate).AnalyzeContext(ctx, src.samples)
	if err != nil {
		return err
	}
	if err := writeSpectra(*out, spectra, p); err != nil {
		return err
	}
	a.log.Info("wrote spectra", "path", *out, "blocks", len(spectra), "precision", *precision)
	return nil
}

func runSynth(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("synth")
	in := fs.String("in", "", "input spectra file (.sft)")
	out := fs.String("out", a.cfg.Output, "output samples (.raw or .wav)")
	rate := fs.Float64("rate", a.cfg.SampleRate, "sample rate written to WAV output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("synth: -in is required")
	}

	spectra, p, err := readSpectra(*in)
	if err != nil {
		return err
	}
	a.log.Info("loaded spectra", "path", *in, "blocks", len(spectra), "precision", int(p))

	samples, err := sft.NewSynthesizer(a.options(*rate)...).SynthesizeContext(ctx, spectra)
	if err != nil {
		return err
	}
	return a.save(*out, samples, *rate)
}

func runView(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("view")
	in := fs.String("in", a.cfg.Input, "input samples or spectra file")
	index := fs.Int("block", 0, "block index to show")
	table := fs.Bool("table", false, "print a table with frequency and phase plus summary statistics")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rate := a.cfg.SampleRate
	var (
		fit   sft.Spectrum
		block *sft.Block
	)
	if isSpectraFile(*in) {
		spectra, _, err := readSpectra(*in)
		if err != nil {
			return err
		}
		if *index < 0 || *index >= len(spectra) {
			return fmt.Errorf("view: block %d out of range [0, %d)", *index, len(spectra))
		}
		fit = spectra[*index]
	} else {
		src, err := a.load(*in)
		if err != nil {
			return err
		}
		rate = src.sampleRate
		n := sft.NumBlocks(len(src.samples))
		if *index < 0 || *index >= n {
			return fmt.Errorf("view: block %d out of range [0, %d)", *index, n)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		b := sft.BlockFrom(src.samples[*index*sft.BlockSize:])
		block = &b
		fit = sft.Analyze(block)
	}

	if !*table {
		for _, bin := range fit {
			if _, err := fmt.Fprintf(a.stdout, "%.6g\n", bin.Amplitude); err != nil {
				return err
			}
		}
		return nil
	}
	return printSpectrum(a, &fit, block, rate)
}

// printSpectrum writes a bin table and summary for fit. When the source
// block is known, the exact DFT magnitude and block levels are shown too.
func printSpectrum(a *app, fit *sft.Spectrum, block *sft.Block, sampleRate float64) error {
	var ref *sft.Spectrum
	if block != nil {
		r := spectrum.Reference(block)
		ref = &r
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	if ref != nil {
		fmt.Fprintf(tw, "Bin\tFreq [Hz]\tAmplitude\tPhase [rad]\tDFT Amplitude\tCapture [%%]\n")
		fmt.Fprintf(tw, "---\t---------\t---------\t-----------\t-------------\t-----------\n")
	} else {
		fmt.Fprintf(tw, "Bin\tFreq [Hz]\tAmplitude\tPhase [rad]\n")
		fmt.Fprintf(tw, "---\t---------\t---------\t-----------\n")
	}
	for k, bin := range fit {
		f := k + 1
		fmt.Fprintf(tw, "%d\t%.2f\t%.6g\t%.4f", f, sft.BinHz(f, sampleRate), bin.Amplitude, bin.Phase)
		if ref != nil {
			capture := 0.0
			if ref[k].Amplitude > 0 {
				capture = 100 * bin.Amplitude / ref[k].Amplitude
			}
			fmt.Fprintf(tw, "\t%.6g\t%.1f", ref[k].Amplitude, capture)
		}
		fmt.Fprintf(tw, "\n")
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("view: flush output: %w", err)
	}

	st := frequency.Calculate(fit, sampleRate)
	if _, err := fmt.Fprintf(a.stdout,
		"\npeak bin %d (%.2f Hz, amplitude %.6g)\ncentroid %.2f Hz, spread %.2f Hz, rolloff %.2f Hz\nflatness %.4f, silent bins %d/%d\n",
		st.PeakBin, st.PeakHz, st.Max,
		st.Centroid, st.Spread, st.Rolloff,
		st.Flatness, st.SilentBins, st.BinCount,
	); err != nil {
		return err
	}

	if block != nil {
		lv := timestats.Calculate(block[:])
		if _, err := fmt.Fprintf(a.stdout, "block rms %.2f dBFS, peak %.2f dBFS, crest %.2f dB\n",
			lv.RMS_dB, lv.Peak_dB, lv.CrestFactor_dB); err != nil {
			return err
		}
	}
	return nil
}

func runCompare(_ context.Context, a *app, args []string) error {
	fs := a.flagSet("compare")
	pathA := fs.String("a", a.cfg.Input, "original samples")
	pathB := fs.String("b", a.cfg.Output, "reconstructed samples")
	if err := fs.Parse(args); err != nil {
		return err
	}

	orig, err := a.load(*pathA)
	if err != nil {
		return err
	}
	recon, err := a.load(*pathB)
	if err != nil {
		return err
	}

	res, err := roundtrip.Compare(orig.samples, recon.samples, roundtrip.Config{SampleRate: orig.sampleRate})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "samples\t%d\n", res.Samples)
	fmt.Fprintf(tw, "blocks\t%d\n", res.Blocks)
	fmt.Fprintf(tw, "ncc\t%.6f\n", res.NCC)
	fmt.Fprintf(tw, "gain\t%.6f\n", res.Gain)
	fmt.Fprintf(tw, "snr [dB]\t%.2f\n", res.SNRdB)
	fmt.Fprintf(tw, "gain-corrected snr [dB]\t%.2f\n", res.GainCorrectedSNRdB)
	fmt.Fprintf(tw, "max abs error\t%.6g\n", res.MaxAbsError)
	fmt.Fprintf(tw, "spectral correlation\t%.6f (%d blocks)\n", res.SpectralCorrelation, res.SpectralBlocks)
	levelA := timestats.Calculate(orig.samples[:res.Samples])
	levelB := timestats.Calculate(recon.samples[:res.Samples])
	fmt.Fprintf(tw, "rms a [dBFS]\t%.2f\n", levelA.RMS_dB)
	fmt.Fprintf(tw, "rms b [dBFS]\t%.2f\n", levelB.RMS_dB)
	fmt.Fprintf(tw, "level change [dB]\t%.2f\n", timestats.LevelChangeDB(levelA, levelB))
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("compare: flush output: %w", err)
	}
	return nil
}

func runGen(_ context.Context, a *app, args []string) error {
	fs := a.flagSet("gen")
	out := fs.String("out", a.cfg.Input, "output samples (.raw or .wav)")
	bin := fs.Int("bin", 0, "tone frequency in cycles per block (0 = no tone)")
	amp := fs.Float64("amp", 0.5, "tone amplitude")
	phase := fs.Float64("phase", 0, "tone phase in radians")
	blocks := fs.Int("blocks", 4, "length in blocks")
	noise := fs.Float64("noise", 0, "white noise amplitude (0 = no noise)")
	seed := fs.Int64("seed", 1, "noise seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *bin == 0 && *noise == 0 {
		return errors.New("gen: nothing to generate; set -bin or -noise")
	}
	if *blocks <= 0 {
		return fmt.Errorf("gen: -blocks must be > 0: %d", *blocks)
	}

	g := signal.NewGeneratorWithOptions(a.options(a.cfg.SampleRate), signal.WithSeed(*seed))
	samples := make([]float64, *blocks*sft.BlockSize)
	if *bin != 0 {
		tone, err := g.BinTone(*bin, *amp, *phase, *blocks)
		if err != nil {
			return err
		}
		copy(samples, tone)
	}
	if *noise != 0 {
		n, err := g.WhiteNoise(*noise, len(samples))
		if err != nil {
			return err
		}
		for i, v := range n {
			samples[i] += v
		}
	}

	a.log.Info("generated", "bin", *bin, "amplitude", *amp, "noise", *noise, "blocks", *blocks)
	return a.save(*out, samples, a.cfg.SampleRate)
}
