package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-combverb/dsp/core"
	"github.com/cwbudde/algo-combverb/dsp/interp"
)

// Errors returned by Line constructors and validation.
var (
	ErrInvalidSize       = errors.New("delay: size must be > 0")
	ErrInvalidSampleRate = errors.New("delay: sample rate must be positive and finite")
	ErrInvalidDuration   = errors.New("delay: maximum delay must be positive and finite")
	ErrDelayTooLong      = errors.New("delay: delay exceeds line capacity")
	ErrInvalidDelay      = errors.New("delay: delay must be non-negative")
)

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode

	sampleRate float64
	maxDelayMs float64
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional-read interpolation. The default is interp.Linear.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		d.mode = mode
	}
}

// CapacityFor returns the number of samples needed to hold maxDelayMs at sampleRate.
func CapacityFor(sampleRate, maxDelayMs float64) int {
	return int(math.Ceil(sampleRate * maxDelayMs / 1000))
}

// New returns a delay line of fixed size.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	d := &Line{buffer: make([]float64, size)}
	d.apply(opts)
	return d, nil
}

// NewForDuration returns a delay line sized for maxDelayMs at sampleRate.
func NewForDuration(sampleRate, maxDelayMs float64, opts ...Option) (*Line, error) {
	d := &Line{}
	d.apply(opts)
	if err := d.Allocate(sampleRate, maxDelayMs); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Line) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
}

// Allocate sizes the line to ceil(sampleRate*maxDelayMs/1000) samples,
// zero-fills it and rewinds the write cursor. Storage is reused when the
// capacity is unchanged.
func (d *Line) Allocate(sampleRate, maxDelayMs float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	if maxDelayMs <= 0 || !core.IsFinite(maxDelayMs) {
		return fmt.Errorf("%w: %f ms", ErrInvalidDuration, maxDelayMs)
	}

	size := CapacityFor(sampleRate, maxDelayMs)
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	if len(d.buffer) == size {
		d.Reset()
	} else {
		d.buffer = make([]float64, size)
		d.writePos = 0
	}
	d.sampleRate = sampleRate
	d.maxDelayMs = maxDelayMs
	return nil
}

// Release drops the storage. The line reads silence until allocated again.
func (d *Line) Release() {
	d.buffer = nil
	d.writePos = 0
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Mode returns the fractional-read interpolation mode.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// SampleRate returns the rate passed to the last Allocate, or 0.
func (d *Line) SampleRate() float64 {
	return d.sampleRate
}

// MaxDelayMs returns the duration passed to the last Allocate, or 0.
func (d *Line) MaxDelayMs() float64 {
	return d.maxDelayMs
}

// MaxDelay returns the largest fractional delay ReadFractional serves
// without clamping.
func (d *Line) MaxDelay() float64 {
	size := len(d.buffer)
	if d.mode == interp.Hermite {
		return float64(size - 2)
	}
	return float64(size)
}

// CheckDelay reports ErrDelayTooLong when delay samples cannot be read
// without clamping.
func (d *Line) CheckDelay(delay float64) error {
	if math.IsNaN(delay) || delay < 0 {
		return fmt.Errorf("%w: %f samples", ErrInvalidDelay, delay)
	}
	if limit := d.MaxDelay(); delay > limit {
		return fmt.Errorf("%w: %.3f > %.0f samples", ErrDelayTooLong, delay, limit)
	}
	return nil
}

// Write stores one sample at the cursor and advances it, overwriting the
// oldest sample.
func (d *Line) Write(sample float64) {
	if len(d.buffer) == 0 {
		return
	}
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Delays are clamped to [0, Len()];
// 0 and Len() both address the oldest sample.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	if delay < 0 {
		delay = 0
	} else if delay > size {
		delay = size
	}
	readPos := d.writePos - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay in samples. Linear mode serves
// [1, Len()] and Hermite mode [2, Len()-2]; delays outside are clamped to the
// nearest bound. An integer-valued delay returns the stored sample exactly.
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}

	lo, hi := 1.0, float64(size)
	if d.mode == interp.Hermite && size >= 4 {
		lo, hi = 2, float64(size-2)
	}
	if !(delay >= lo) {
		delay = lo
	} else if delay > hi {
		delay = hi
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)
	x0 := d.Read(p)
	if t == 0 {
		return x0
	}

	if d.mode == interp.Hermite && size >= 4 {
		return interp.Hermite4(t, d.Read(p-1), x0, d.Read(p+1), d.Read(p+2))
	}
	return interp.Linear2(t, x0, d.Read(p+1))
}

// Reset clears line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
}
