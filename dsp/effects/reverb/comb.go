package reverb

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-combverb/dsp/core"
	"github.com/cwbudde/algo-combverb/dsp/delay"
	"github.com/cwbudde/algo-combverb/dsp/interp"
)

// Errors returned by comb filter configuration.
var (
	ErrInvalidSampleRate  = errors.New("reverb: sample rate must be positive and finite")
	ErrInvalidDelay       = errors.New("reverb: comb delay time must be positive and finite")
	ErrDelayExceedsBuffer = errors.New("reverb: comb delay time exceeds delay buffer")
)

// CombFilterParameters configures one comb filter. The struct is comparable
// so callers can detect changes with ==.
type CombFilterParameters struct {
	// DecayTimeMs is the time for the loop's impulse response to fall 60 dB.
	// Values <= 0 disable feedback.
	DecayTimeMs float64
	// DelayTimeMs is one round trip through the loop.
	DelayTimeMs float64
	// EnableDamping requests a low-pass in the feedback path. It is stored
	// but not implemented; the feedback path is always broadband.
	EnableDamping bool
	// Interpolate reads fractional delays; otherwise the delay is rounded
	// to the nearest sample.
	Interpolate bool
}

// FeedbackGain returns the loop gain that makes a comb with the given
// round-trip delay decay by 60 dB over decayMs:
//
//	g = 10^(-3 * delayMs / decayMs)
//
// A non-positive or non-finite decay yields 0 (no feedback).
func FeedbackGain(delayMs, decayMs float64) float64 {
	if !(decayMs > 0) || !core.IsFinite(decayMs) || !core.IsFinite(delayMs) || delayMs < 0 {
		return 0
	}
	return math.Pow(10, -3*delayMs/decayMs)
}

// CombFilter is a feedback comb filter:
//
//	y[n] = d[n - D]
//	d[n] = x[n] + g*y[n]
//
// The output is the delayed sample read before the new value is written.
type CombFilter struct {
	sampleRate float64
	mode       interp.Mode
	line       *delay.Line

	params       CombFilterParameters
	configured   bool
	fits         bool
	gain         float64
	delaySamples float64
}

// NewCombFilter returns an empty comb filter. It outputs silence until
// CreateDelayBuffer is called.
func NewCombFilter() *CombFilter {
	return &CombFilter{}
}

// SetInterpolationMode selects the fractional-read algorithm used by delay
// buffers created afterwards. The default is interp.Linear.
func (c *CombFilter) SetInterpolationMode(mode interp.Mode) {
	c.mode = mode
}

// Reset stores the sample rate used for delay offsets and clears the delay
// buffer, if any. It does not allocate. If the active delay no longer fits
// the buffer at the new rate, Reset returns ErrDelayExceedsBuffer and the
// filter stays silent until a fitting buffer or delay is set.
func (c *CombFilter) Reset(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	c.sampleRate = sampleRate
	if c.line != nil {
		c.line.Reset()
	}
	c.updateDelaySamples()
	return c.checkFit()
}

// CreateDelayBuffer allocates a delay buffer holding maxDelayMs at
// sampleRate and adopts sampleRate for delay offsets. Parameters set
// earlier are validated against the new capacity.
func (c *CombFilter) CreateDelayBuffer(sampleRate, maxDelayMs float64) error {
	if c.line == nil || c.line.Mode() != c.mode {
		line, err := delay.NewForDuration(sampleRate, maxDelayMs, delay.WithMode(c.mode))
		if err != nil {
			return fmt.Errorf("reverb: comb delay buffer: %w", err)
		}
		c.line = line
	} else if err := c.line.Allocate(sampleRate, maxDelayMs); err != nil {
		return fmt.Errorf("reverb: comb delay buffer: %w", err)
	}

	c.sampleRate = sampleRate
	c.updateDelaySamples()
	return c.checkFit()
}

// ReleaseDelayBuffer drops the delay buffer. The filter outputs silence
// until CreateDelayBuffer is called again.
func (c *CombFilter) ReleaseDelayBuffer() {
	c.line = nil
}

// SetParameters validates p and recomputes the feedback gain and delay
// offset. A delay that does not fit the allocated buffer is rejected and the
// previous parameters stay active. Unchanged parameters are a no-op.
func (c *CombFilter) SetParameters(p CombFilterParameters) error {
	if c.configured && c.fits && p == c.params {
		return nil
	}
	samples, err := c.validate(p)
	if err != nil {
		return err
	}

	c.params = p
	c.configured = true
	c.fits = true
	c.gain = FeedbackGain(p.DelayTimeMs, p.DecayTimeMs)
	c.delaySamples = samples
	return nil
}

// validate returns the read offset for p, or the error SetParameters would
// report, without changing the filter.
func (c *CombFilter) validate(p CombFilterParameters) (float64, error) {
	if !(p.DelayTimeMs > 0) || !core.IsFinite(p.DelayTimeMs) {
		return 0, fmt.Errorf("%w: %f ms", ErrInvalidDelay, p.DelayTimeMs)
	}
	samples := c.offsetFor(p)
	if c.line != nil && c.sampleRate > 0 {
		if err := c.line.CheckDelay(samples); err != nil {
			return 0, fmt.Errorf("%w: %.3f ms: %w", ErrDelayExceedsBuffer, p.DelayTimeMs, err)
		}
	}
	return samples, nil
}

// checkFit re-validates the active offset against the buffer after a rate
// or buffer change.
func (c *CombFilter) checkFit() error {
	c.fits = true
	if !c.configured || c.line == nil {
		return nil
	}
	if err := c.line.CheckDelay(c.delaySamples); err != nil {
		c.fits = false
		return fmt.Errorf("%w: %.3f ms: %w", ErrDelayExceedsBuffer, c.params.DelayTimeMs, err)
	}
	return nil
}

// Parameters returns the active parameters.
func (c *CombFilter) Parameters() CombFilterParameters {
	return c.params
}

// FeedbackGain returns the active loop gain.
func (c *CombFilter) FeedbackGain() float64 {
	return c.gain
}

// DelaySamples returns the active read offset in samples.
func (c *CombFilter) DelaySamples() float64 {
	return c.delaySamples
}

// SampleRate returns the rate used for delay offsets.
func (c *CombFilter) SampleRate() float64 {
	return c.sampleRate
}

// BufferLen returns the delay buffer capacity in samples, 0 if unallocated.
func (c *CombFilter) BufferLen() int {
	if c.line == nil {
		return 0
	}
	return c.line.Len()
}

// Clear silences the delay buffer without touching parameters.
func (c *CombFilter) Clear() {
	if c.line != nil {
		c.line.Reset()
	}
}

func (c *CombFilter) offsetFor(p CombFilterParameters) float64 {
	samples := core.MsToSamples(p.DelayTimeMs, c.sampleRate)
	if !p.Interpolate {
		samples = math.Round(samples)
	}
	if samples < 1 {
		samples = 1
	}
	return samples
}

func (c *CombFilter) updateDelaySamples() {
	if c.configured {
		c.delaySamples = c.offsetFor(c.params)
	}
}

// ProcessSample processes one sample and returns the delayed sample read
// before xn enters the loop. A non-finite loop value clears the filter and
// yields silence for this sample. A delay that does not fit the buffer
// yields silence.
func (c *CombFilter) ProcessSample(xn float64) float64 {
	if c.line == nil || !c.configured || !c.fits {
		return 0
	}

	var yn float64
	if c.params.Interpolate {
		yn = c.line.ReadFractional(c.delaySamples)
	} else {
		yn = c.line.Read(int(c.delaySamples))
	}

	in := xn + c.gain*yn
	if !core.IsFinite(in) {
		c.line.Reset()
		return 0
	}
	c.line.Write(core.FlushDenormals(in))
	return yn
}

// ProcessInPlace runs the filter over buf.
func (c *CombFilter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}
