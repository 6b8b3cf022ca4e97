package pcm

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mewkiz/flac"
)

// ReadFLAC decodes a FLAC stream and downmixes it to mono.
func ReadFLAC(r io.Reader) (Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return Source{}, fmt.Errorf("pcm: decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	if channels < 1 {
		return Source{}, fmt.Errorf("pcm: FLAC reports %d channels", channels)
	}
	scale := math.Ldexp(1, int(info.BitsPerSample)-1)

	samples := make([]float64, 0, info.NSamples)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Source{}, fmt.Errorf("pcm: decode FLAC frame: %w", err)
		}

		n := int(frame.Subframes[0].NSamples)
		for i := 0; i < n; i++ {
			sum := 0.0
			for ch := 0; ch < channels; ch++ {
				sum += float64(frame.Subframes[ch].Samples[i]) / scale
			}
			samples = append(samples, sum/float64(channels))
		}
	}

	return Source{
		Samples:    samples,
		SampleRate: int(info.SampleRate),
		Channels:   channels,
	}, nil
}
