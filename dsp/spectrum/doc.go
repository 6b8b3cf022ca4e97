// Package spectrum computes exact DFT terms for sine-fit bins.
//
// The sine-fit analyzer searches a coarse grid of phase offsets, so its
// amplitude for bin f never exceeds the DFT magnitude |X[f]| of the same
// block. [Reference] evaluates those DFT terms with the Goertzel recurrence
// and returns them on the same scale as [sft.Spectrum], which makes the two
// directly comparable.
package spectrum
