// Package pcm reads and writes mono sample streams for the sine-fit tools.
//
// The native format is headerless little-endian 32-bit float PCM, one
// channel, at a rate the file does not record. WAV and FLAC input is also
// accepted and downmixed to mono; WAV output is 16-bit.
package pcm
