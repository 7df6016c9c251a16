// Package delay provides a fixed-capacity circular delay line with integer
// writes and integer or fractional reads.
//
// Offsets are counted backwards from the write cursor: Read(1) returns the
// most recently written sample and Read(Len()) the oldest one, which is the
// slot the next Write overwrites.
package delay
