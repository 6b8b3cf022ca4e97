// Package sftfile stores sequences of sine-fit spectra on disk.
//
// Layout, all integers little endian:
//
//	magic     [4]byte  "SFT1"
//	version   uint8    1
//	precision uint8    32 or 16
//	blocks    uint32
//	bins      blocks * sft.NumBins * (amplitude, phase)
//
// Each value is an IEEE float32 or, at precision 16, an IEEE binary16 half.
// Half precision keeps about three significant digits, enough for viewing
// and rough resynthesis.
package sftfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"

	"github.com/cwbudde/algo-sft/dsp/sft"
)

// Precision selects the on-disk width of each value.
type Precision uint8

// Supported precisions.
const (
	Float32 Precision = 32
	Float16 Precision = 16
)

const version = 1

var magic = [4]byte{'S', 'F', 'T', '1'}

var (
	ErrBadMagic           = errors.New("sftfile: not a spectra file")
	ErrUnsupportedVersion = errors.New("sftfile: unsupported version")
	ErrBadPrecision       = errors.New("sftfile: unsupported precision")
)

type header struct {
	Magic     [4]byte
	Version   uint8
	Precision Precision
	Blocks    uint32
}

// Valid reports whether p is a supported precision.
func (p Precision) Valid() bool {
	return p == Float32 || p == Float16
}

// ParsePrecision converts a bit width to a Precision.
func ParsePrecision(bits int) (Precision, error) {
	if bits != int(Float32) && bits != int(Float16) {
		return 0, fmt.Errorf("%w: %d", ErrBadPrecision, bits)
	}
	return Precision(bits), nil
}

func (p Precision) width() int {
	return int(p) / 8
}

// Encode writes spectra to w at the given precision.
func Encode(w io.Writer, spectra []sft.Spectrum, p Precision) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrBadPrecision, p)
	}
	if uint64(len(spectra)) > math.MaxUint32 {
		return fmt.Errorf("sftfile: too many blocks: %d", len(spectra))
	}

	bw := bufio.NewWriter(w)
	h := header{Magic: magic, Version: version, Precision: p, Blocks: uint32(len(spectra))}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("sftfile: write header: %w", err)
	}

	width := p.width()
	buf := make([]byte, sft.NumBins*2*width)
	for i := range spectra {
		for k, bin := range spectra[i] {
			off := k * 2 * width
			putValue(buf[off:], bin.Amplitude, p)
			putValue(buf[off+width:], bin.Phase, p)
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("sftfile: write block %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("sftfile: flush: %w", err)
	}
	return nil
}

// Decode reads spectra written by Encode. It reports the stored precision.
func Decode(r io.Reader) ([]sft.Spectrum, Precision, error) {
	br := bufio.NewReader(r)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, ErrBadMagic
		}
		return nil, 0, fmt.Errorf("sftfile: read header: %w", err)
	}
	if h.Magic != magic {
		return nil, 0, ErrBadMagic
	}
	if h.Version != version {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !h.Precision.Valid() {
		return nil, 0, fmt.Errorf("%w: %d", ErrBadPrecision, h.Precision)
	}

	p := h.Precision
	width := p.width()
	buf := make([]byte, sft.NumBins*2*width)

	// Grow as blocks arrive so a corrupt count cannot force a huge allocation.
	var spectra []sft.Spectrum
	for i := uint32(0); i < h.Blocks; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, 0, fmt.Errorf("sftfile: read block %d of %d: %w", i, h.Blocks, err)
		}
		var s sft.Spectrum
		for k := range s {
			off := k * 2 * width
			s[k] = sft.Bin{
				Amplitude: value(buf[off:], p),
				Phase:     value(buf[off+width:], p),
			}
		}
		spectra = append(spectra, s)
	}

	return spectra, p, nil
}

func putValue(dst []byte, v float64, p Precision) {
	if p == Float16 {
		binary.LittleEndian.PutUint16(dst, float16.Fromfloat32(float32(v)).Bits())
		return
	}
	binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
}

func value(src []byte, p Precision) float64 {
	if p == Float16 {
		return float64(float16.Frombits(binary.LittleEndian.Uint16(src)).Float32())
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))
}
