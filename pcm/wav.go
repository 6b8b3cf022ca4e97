package pcm

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-sft/dsp/core"
)

const (
	wavFormatPCM = 1
	wavBitDepth  = 16
)

// ErrInvalidWAV is returned for input that is not a readable RIFF/WAVE file.
var ErrInvalidWAV = errors.New("pcm: invalid WAV file")

// ReadWAV decodes an integer PCM WAV stream and downmixes it to mono.
func ReadWAV(r io.ReadSeeker) (Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Source{}, ErrInvalidWAV
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return Source{}, fmt.Errorf("pcm: unsupported WAV audio format %d", dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Source{}, fmt.Errorf("pcm: decode WAV: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return Source{}, fmt.Errorf("pcm: WAV reports %d channels", channels)
	}

	bitDepth := int(dec.BitDepth)
	unsigned := bitDepth == 8
	scale := math.Ldexp(1, bitDepth-1)

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			v := float64(buf.Data[i*channels+ch])
			if unsigned {
				v -= scale
			}
			sum += v / scale
		}
		samples[i] = sum / float64(channels)
	}

	return Source{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
	}, nil
}

// WriteWAV encodes samples as 16-bit mono PCM WAV. Samples outside [-1, 1]
// are clipped.
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("pcm: WAV sample rate must be > 0: %d", sampleRate)
	}

	const fullScale = 1<<(wavBitDepth-1) - 1
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(math.Round(core.Clamp(v, -1, 1) * fullScale))
	}

	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("pcm: encode WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("pcm: finish WAV: %w", err)
	}
	return nil
}
