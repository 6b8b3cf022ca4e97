package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cwbudde/algo-sft/dsp/core"
	"github.com/cwbudde/algo-sft/dsp/sft"
	"github.com/cwbudde/algo-sft/internal/testutil"
	"github.com/cwbudde/algo-sft/pcm"
)

func runCmd(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	code, stdout, stderr := runCmd(t, args...)
	if code != exitOK {
		t.Fatalf("sft %s: exit %d\n%s", strings.Join(args, " "), code, stderr)
	}
	return stdout
}

func loadSamples(t *testing.T, path string) []float64 {
	t.Helper()
	src, err := pcm.Load(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return src.Samples
}

// genTone writes three blocks of a 12 cycle tone plus a partial block.
func genTone(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "in.raw")
	mustRun(t, "gen", "-out", path, "-bin", "12", "-amp", "0.5", "-blocks", "3")
	return path
}

func TestGen(t *testing.T) {
	dir := t.TempDir()
	path := genTone(t, dir)

	x := loadSamples(t, path)
	if len(x) != 3*sft.BlockSize {
		t.Fatalf("generated %d samples, want %d", len(x), 3*sft.BlockSize)
	}

	noisy := filepath.Join(dir, "noise.wav")
	mustRun(t, "gen", "-out", noisy, "-noise", "0.1", "-blocks", "2")
	src, err := pcm.Load(noisy)
	if err != nil {
		t.Fatal(err)
	}
	if len(src.Samples) != 2*sft.BlockSize || src.SampleRate != 44100 {
		t.Fatalf("noise wav = %d samples at %d Hz", len(src.Samples), src.SampleRate)
	}
}

func TestGen_Seed(t *testing.T) {
	dir := t.TempDir()
	gen := func(name, seed string) []float64 {
		path := filepath.Join(dir, name)
		mustRun(t, "gen", "-out", path, "-noise", "0.5", "-blocks", "1", "-seed", seed)
		return loadSamples(t, path)
	}

	a := gen("a.raw", "7")
	b := gen("b.raw", "7")
	c := gen("c.raw", "8")
	testutil.RequireSliceNearlyEqual(t, a, b, 0)
	diff, err := testutil.MaxAbsDiff(a, c)
	if err != nil {
		t.Fatal(err)
	}
	if diff == 0 {
		t.Fatal("different -seed values produced identical noise")
	}
}

func TestRoundtrip(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)
	out := filepath.Join(dir, "out.raw")

	code, _, stderr := runCmd(t, "-log-level", "debug", "roundtrip", "-in", in, "-out", out)
	if code != exitOK {
		t.Fatalf("exit = %d\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "analyzed block") {
		t.Fatalf("debug log should report block progress:\n%s", stderr)
	}

	x := loadSamples(t, in)
	y := loadSamples(t, out)
	if len(y) != len(x) {
		t.Fatalf("output has %d samples, want %d", len(y), len(x))
	}
	ncc, err := testutil.NormalizedCrossCorrelation(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if ncc < 0.999 {
		t.Fatalf("ncc = %v, want >= 0.999", ncc)
	}
}

func TestRoundtrip_DropsTail(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "short.raw")
	if err := pcm.Save(in, testutil.DeterministicNoise(5, 0.3, 600), 44100); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.raw")
	mustRun(t, "roundtrip", "-in", in, "-out", out)

	if got := len(loadSamples(t, out)); got != sft.BlockSize {
		t.Fatalf("output has %d samples, want %d", got, sft.BlockSize)
	}
}

func TestDefaultCommandUsesConfig(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)
	out := filepath.Join(dir, "result.raw")

	cfgPath := filepath.Join(dir, "sft.yaml")
	yaml := "log_level: warn\nworkers: 2\ninput: " + strconv.Quote(in) + "\noutput: " + strconv.Quote(out) + "\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "-config", cfgPath)
	if got := len(loadSamples(t, out)); got != 3*sft.BlockSize {
		t.Fatalf("output has %d samples, want %d", got, 3*sft.BlockSize)
	}
}

func TestWorkersFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)
	out := filepath.Join(dir, "result.raw")

	cfgPath := filepath.Join(dir, "sft.yaml")
	yaml := "workers: -1\ninput: " + strconv.Quote(in) + "\noutput: " + strconv.Quote(out) + "\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := runCmd(t, "-config", cfgPath)
	if code != exitFailure {
		t.Fatalf("negative workers exit = %d, want %d", code, exitFailure)
	}
	if n := strings.Count(stderr, "config:"); n != 1 {
		t.Fatalf("stderr has %d config: prefixes: %q", n, stderr)
	}

	mustRun(t, "-config", cfgPath, "-workers", "2")
	if got := len(loadSamples(t, out)); got != 3*sft.BlockSize {
		t.Fatalf("output has %d samples, want %d", got, 3*sft.BlockSize)
	}
}

func TestAnalyzeSynthMatchesRoundtrip(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)

	mustRun(t, "analyze", "-in", in)
	spectra := filepath.Join(dir, "in.sft")
	if _, err := os.Stat(spectra); err != nil {
		t.Fatalf("analyze did not write %s: %v", spectra, err)
	}

	synth := filepath.Join(dir, "synth.raw")
	mustRun(t, "synth", "-in", spectra, "-out", synth)
	direct := filepath.Join(dir, "direct.raw")
	mustRun(t, "roundtrip", "-in", in, "-out", direct)

	testutil.RequireSliceNearlyEqual(t, loadSamples(t, synth), loadSamples(t, direct), 1e-5)
}

func TestAnalyze_HalfPrecision(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)
	full := filepath.Join(dir, "full.sft")
	half := filepath.Join(dir, "half.sft")

	mustRun(t, "analyze", "-in", in, "-out", full)
	mustRun(t, "analyze", "-in", in, "-out", half, "-precision", "16")

	fullInfo, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}
	halfInfo, err := os.Stat(half)
	if err != nil {
		t.Fatal(err)
	}
	if halfInfo.Size() >= fullInfo.Size() {
		t.Fatalf("half precision file %d bytes, full %d bytes", halfInfo.Size(), fullInfo.Size())
	}

	code, _, _ := runCmd(t, "analyze", "-in", in, "-out", filepath.Join(dir, "bad.sft"), "-precision", "8")
	if code != exitFailure {
		t.Fatalf("precision 8 exit = %d, want %d", code, exitFailure)
	}
}

func TestAnalyze_BadPrecisionWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)

	for _, bits := range []string{"8", "0", "272"} {
		out := filepath.Join(dir, "bad"+bits+".sft")
		code, _, stderr := runCmd(t, "analyze", "-in", in, "-out", out, "-precision", bits)
		if code != exitFailure {
			t.Fatalf("precision %s exit = %d, want %d", bits, code, exitFailure)
		}
		if !strings.Contains(stderr, "unsupported precision") {
			t.Fatalf("precision %s stderr = %q", bits, stderr)
		}
		if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("precision %s left %s behind: stat err = %v", bits, out, err)
		}
	}
}

func TestView(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)

	stdout := mustRun(t, "view", "-in", in, "-block", "1")
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) != sft.NumBins {
		t.Fatalf("view printed %d lines, want %d", len(lines), sft.NumBins)
	}
	amp, err := strconv.ParseFloat(lines[11], 64)
	if err != nil {
		t.Fatal(err)
	}
	if !core.NearlyEqual(amp, 128, 1e-3) {
		t.Fatalf("bin 12 amplitude = %v, want 128", amp)
	}

	table := mustRun(t, "view", "-in", in, "-table")
	for _, want := range []string{"peak bin 12", "DFT Amplitude", "block rms"} {
		if !strings.Contains(table, want) {
			t.Fatalf("table should contain %q:\n%s", want, table)
		}
	}

	code, _, _ := runCmd(t, "view", "-in", in, "-block", "3")
	if code != exitFailure {
		t.Fatalf("out of range block exit = %d, want %d", code, exitFailure)
	}
}

func TestView_SpectraFile(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)
	mustRun(t, "analyze", "-in", in)

	fromSamples := parseAmplitudes(t, mustRun(t, "view", "-in", in, "-block", "2"))
	fromFile := parseAmplitudes(t, mustRun(t, "view", "-in", filepath.Join(dir, "in.sft"), "-block", "2"))
	for k := range fromSamples {
		if !core.NearlyEqual(fromFile[k], fromSamples[k], 1e-4) {
			t.Fatalf("bin %d: spectra file %v, samples %v", k+1, fromFile[k], fromSamples[k])
		}
	}
}

func parseAmplitudes(t *testing.T, out string) []float64 {
	t.Helper()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != sft.NumBins {
		t.Fatalf("got %d lines, want %d", len(lines), sft.NumBins)
	}
	amps := make([]float64, len(lines))
	for i, line := range lines {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		amps[i] = v
	}
	return amps
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	in := genTone(t, dir)
	out := filepath.Join(dir, "out.raw")
	mustRun(t, "roundtrip", "-in", in, "-out", out)

	stdout := mustRun(t, "compare", "-a", in, "-b", out)
	for _, want := range []string{"blocks", "ncc", "gain", "2.000000", "spectral correlation", "level change [dB]", "-6.02"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("compare output missing %q:\n%s", want, stdout)
		}
	}
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.raw")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	emptySpectra := filepath.Join(dir, "empty.sft")
	if err := os.WriteFile(emptySpectra, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	garbage := filepath.Join(dir, "garbage.sft")
	if err := os.WriteFile(garbage, []byte("not a spectra file"), 0o644); err != nil {
		t.Fatal(err)
	}
	badConfig := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("precision: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.raw")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "help", args: []string{"-h"}, want: exitOK},
		{name: "command help", args: []string{"view", "-h"}, want: exitOK},
		{name: "missing input", args: []string{"roundtrip", "-in", missing, "-out", filepath.Join(dir, "o.raw")}, want: exitOpen},
		{name: "missing spectra", args: []string{"synth", "-in", filepath.Join(dir, "missing.sft")}, want: exitOpen},
		{name: "empty input", args: []string{"roundtrip", "-in", empty, "-out", filepath.Join(dir, "o.raw")}, want: exitEmpty},
		{name: "empty spectra", args: []string{"synth", "-in", emptySpectra}, want: exitEmpty},
		{name: "corrupt spectra", args: []string{"synth", "-in", garbage}, want: exitFailure},
		{name: "synth without input", args: []string{"synth"}, want: exitFailure},
		{name: "unknown command", args: []string{"transform"}, want: exitFailure},
		{name: "bad config", args: []string{"-config", badConfig}, want: exitFailure},
		{name: "bad log level", args: []string{"-log-level", "loud", "view"}, want: exitFailure},
		{name: "gen nothing", args: []string{"gen", "-out", filepath.Join(dir, "g.raw")}, want: exitFailure},
		{name: "bad flag", args: []string{"view", "-nope"}, want: exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(t, tt.args...)
			if code != tt.want {
				t.Fatalf("exit = %d, want %d\n%s", code, tt.want, stderr)
			}
		})
	}
}

func TestSpectraPath(t *testing.T) {
	tests := map[string]string{
		"data.raw":      "data.sft",
		"dir/song.wav":  "dir/song.sft",
		"noext":         "noext.sft",
		"a.b/track.f32": "a.b/track.sft",
	}
	for in, want := range tests {
		if got := spectraPath(in); got != want {
			t.Errorf("spectraPath(%q) = %q, want %q", in, got, want)
		}
	}
}
