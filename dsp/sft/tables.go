package sft

import (
	"math"
	"sync"
)

// Reference waveforms, built once and read-only afterwards.
//
// sineRows[f-1] holds two periods of sin(f*i/BlockSize*tau) so the circular
// shift by j is the contiguous slice [j, j+BlockSize).
var (
	tablesOnce sync.Once
	sineRows   [NumBins][2 * BlockSize]float64
	cosineRows [SynthesisBins][BlockSize]float64
)

func buildTables() {
	for f := 1; f <= NumBins; f++ {
		row := &sineRows[f-1]
		for i := 0; i < BlockSize; i++ {
			v := math.Sin(float64(f) * (float64(i) / BlockSize) * tau)
			row[i] = v
			row[i+BlockSize] = v
		}
	}
	for f := 1; f <= SynthesisBins; f++ {
		row := &cosineRows[f-1]
		for i := range row {
			row[i] = math.Cos(float64(f) * (float64(i) / BlockSize) * tau)
		}
	}
}

// reference returns sin(f*(i+j)/BlockSize*tau) for i in [0, BlockSize).
func reference(f, j int) []float64 {
	tablesOnce.Do(buildTables)
	return sineRows[f-1][j : j+BlockSize]
}

func sineRow(f int) []float64 {
	return reference(f, 0)
}

func cosineRow(f int) []float64 {
	tablesOnce.Do(buildTables)
	return cosineRows[f-1][:]
}
