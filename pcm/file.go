package pcm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-sft/dsp/core"
)

// ErrEmptyInput is returned by Load for a zero-length file.
var ErrEmptyInput = errors.New("pcm: empty input")

// OpenError reports that an input file could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("pcm: open %q: %v", e.Path, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// StatError reports that an opened input file could not be inspected.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string { return fmt.Sprintf("pcm: stat %q: %v", e.Path, e.Err) }
func (e *StatError) Unwrap() error { return e.Err }

// Source is a decoded mono sample stream.
type Source struct {
	Samples []float64
	// SampleRate is taken from the container; raw input reports
	// core.DefaultSampleRate.
	SampleRate int
	Channels   int
}

// Format names a file encoding.
type Format string

// Supported formats.
const (
	FormatRaw  Format = "raw"
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
)

// FormatOf picks the format from the file extension. Anything that is not
// .wav or .flac is treated as raw float32.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return FormatWAV
	case ".flac":
		return FormatFLAC
	default:
		return FormatRaw
	}
}

// Load opens path and decodes it according to its extension.
func Load(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Source{}, &StatError{Path: path, Err: err}
	}
	if fi.Size() == 0 {
		return Source{}, fmt.Errorf("%w: %q", ErrEmptyInput, path)
	}

	switch FormatOf(path) {
	case FormatWAV:
		return ReadWAV(f)
	case FormatFLAC:
		return ReadFLAC(f)
	default:
		samples, err := ReadRaw(f)
		if err != nil {
			return Source{}, err
		}
		return Source{Samples: samples, SampleRate: core.DefaultSampleRate, Channels: 1}, nil
	}
}

// Save writes samples to path, as 16-bit WAV for a .wav extension and as raw
// float32 otherwise. FLAC output is not supported.
func Save(path string, samples []float64, sampleRate int) (err error) {
	format := FormatOf(path)
	if format == FormatFLAC {
		return fmt.Errorf("pcm: cannot write FLAC: %q", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcm: create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("pcm: close %q: %w", path, cerr)
		}
	}()

	if format == FormatWAV {
		return WriteWAV(f, samples, sampleRate)
	}
	return WriteRaw(f, samples)
}
