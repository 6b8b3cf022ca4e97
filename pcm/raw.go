package pcm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const bytesPerSample = 4

// ReadRaw decodes little-endian float32 samples from r until EOF.
// A trailing partial sample (1 to 3 bytes) is ignored.
func ReadRaw(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pcm: read raw samples: %w", err)
	}
	return DecodeRaw(data), nil
}

// DecodeRaw converts little-endian float32 bytes to samples.
func DecodeRaw(data []byte) []float64 {
	out := make([]float64, len(data)/bytesPerSample)
	for i := range out {
		bits := binary.LittleEndian.Uint32(data[i*bytesPerSample:])
		out[i] = float64(math.Float32frombits(bits))
	}
	return out
}

// WriteRaw encodes samples as headerless little-endian float32.
func WriteRaw(w io.Writer, samples []float64) error {
	bw := bufio.NewWriter(w)
	var buf [bytesPerSample]byte
	for _, v := range samples {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("pcm: write raw samples: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("pcm: write raw samples: %w", err)
	}
	return nil
}
