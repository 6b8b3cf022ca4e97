// Package sft implements a block-based sine-fit transform.
//
// Each 512-sample [Block] is compared against reference sine waves of 1 to
// 256 cycles per block. For every frequency the analyzer sweeps a range of
// circular phase offsets, keeps the offset with the largest correlation, and
// reports that correlation as the bin amplitude together with the matching
// phase. This is a matched-filter search, not a quadrature Fourier
// transform: amplitudes are unnormalized correlation sums, negative
// correlations are floored at zero, and fewer phase offsets are searched at
// higher frequencies.
//
// [Synthesize] rebuilds a block by additive synthesis of bins 1 to 255.
// Bin 256 is analyzed but never synthesized, and the round trip is lossy.
//
// [Analyzer] and [Synthesizer] apply the block transforms to whole sample
// streams. Stream length need not be a multiple of [BlockSize]; trailing
// samples that do not fill a block are dropped, never padded.
package sft
