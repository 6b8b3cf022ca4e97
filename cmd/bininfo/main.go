// Command bininfo prints per-bin properties of the sine-fit transform.
//
// Usage:
//
//	bininfo [flags] [bin ...]
//
// Without arguments it prints every bin. Bins may be given as single
// numbers or inclusive ranges such as 10-20.
//
// Examples:
//
//	bininfo 1 2 3
//	bininfo -rate 48000 100-110
//	bininfo -total
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-sft/dsp/core"
	"github.com/cwbudde/algo-sft/dsp/sft"
)

func main() {
	rate := flag.Float64("rate", core.DefaultSampleRate, "sample rate in Hz used for the frequency column")
	total := flag.Bool("total", false, "print only the total analysis cost per block")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bininfo [flags] [bin ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints per-bin properties of the %d-sample sine-fit transform.\n", sft.BlockSize)
		fmt.Fprintf(os.Stderr, "Without arguments, prints all %d bins.\n\n", sft.NumBins)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bininfo 1 2 3\n")
		fmt.Fprintf(os.Stderr, "  bininfo -rate 48000 100-110\n")
		fmt.Fprintf(os.Stderr, "  bininfo -total\n")
	}
	flag.Parse()

	if *rate <= 0 {
		fmt.Fprintf(os.Stderr, "error: -rate must be positive\n")
		os.Exit(1)
	}

	if *total {
		offsets, macs := totalCost()
		fmt.Printf("%d phase offsets, %d multiply-adds per block\n", offsets, macs)
		return
	}

	bins, err := parseBins(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printBins(os.Stdout, bins, *rate); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// parseBins expands numbers and ranges into bin indices. No arguments
// selects every bin.
func parseBins(args []string) ([]int, error) {
	if len(args) == 0 {
		bins := make([]int, sft.NumBins)
		for i := range bins {
			bins[i] = i + 1
		}
		return bins, nil
	}

	var bins []int
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		lo, hi, isRange := strings.Cut(arg, "-")
		first, err := parseBin(lo)
		if err != nil {
			return nil, err
		}
		last := first
		if isRange {
			if last, err = parseBin(hi); err != nil {
				return nil, err
			}
			if last < first {
				return nil, fmt.Errorf("bin range %q is reversed", arg)
			}
		}
		for f := first; f <= last; f++ {
			bins = append(bins, f)
		}
	}
	return bins, nil
}

func parseBin(s string) (int, error) {
	f, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bin %q", s)
	}
	if f < 1 || f > sft.NumBins {
		return 0, fmt.Errorf("bin %d out of range [1, %d]", f, sft.NumBins)
	}
	return f, nil
}

func totalCost() (offsets, macs int) {
	for f := 1; f <= sft.NumBins; f++ {
		offsets += sft.PhaseOffsets(f)
	}
	return offsets, offsets * sft.BlockSize
}

func printBins(w io.Writer, bins []int, sampleRate float64) error {
	totalOffsets, _ := totalCost()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Bin\tFreq [Hz]\tOffsets\tPhase Step [rad]\tMax Phase [rad]\tCost [%%]\tSynth\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "---\t---------\t-------\t----------------\t---------------\t--------\t-----\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, f := range bins {
		offsets := sft.PhaseOffsets(f)
		synth := "yes"
		if f > sft.SynthesisBins {
			synth = "no"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%.2f\t%d\t%.6f\t%.4f\t%.3f\t%s\n",
			f,
			sft.BinHz(f, sampleRate),
			offsets,
			sft.OffsetPhase(1, f),
			sft.OffsetPhase(offsets-1, f),
			100*float64(offsets)/float64(totalOffsets),
			synth,
		); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
