package reverb

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-combverb/dsp/core"
	"github.com/cwbudde/algo-combverb/dsp/interp"
)

const (
	// NumChannels is the number of independent comb sets (left, right).
	NumChannels = 2
	// CombsPerChannel is the number of parallel combs summed per channel.
	CombsPerChannel = 4

	// DefaultMaxDelayMs sizes every comb's delay buffer.
	DefaultMaxDelayMs = 100.0
)

// DefaultCombDelaysMs are the round-trip delays of the four combs in a channel.
var DefaultCombDelaysMs = [CombsPerChannel]float64{45, 57, 77, 64}

// CombPolarity is the sign applied to each comb before summation. Inverting
// every second comb spreads the resonant peaks of the set.
var CombPolarity = [CombsPerChannel]float64{1, -1, 1, -1}

// ErrDuplicateDelay is returned when two combs of a channel share a delay time.
var ErrDuplicateDelay = errors.New("reverb: comb delay times must be distinct")

// CombBank holds CombsPerChannel combs for each of NumChannels channels.
// All combs share one decay time; each keeps its fixed delay time.
type CombBank struct {
	delaysMs    [CombsPerChannel]float64
	maxDelayMs  float64
	interpolate bool
	decayMs     float64

	combs [NumChannels][CombsPerChannel]CombFilter
}

// NewCombBank validates the delay set against maxDelayMs and returns an
// unprepared bank with interpolation enabled.
func NewCombBank(delaysMs [CombsPerChannel]float64, maxDelayMs float64) (*CombBank, error) {
	if !(maxDelayMs > 0) || !core.IsFinite(maxDelayMs) {
		return nil, fmt.Errorf("%w: max delay %f ms", ErrInvalidDelay, maxDelayMs)
	}
	for i, d := range delaysMs {
		if !(d > 0) || !core.IsFinite(d) {
			return nil, fmt.Errorf("%w: comb %d: %f ms", ErrInvalidDelay, i+1, d)
		}
		if d > maxDelayMs {
			return nil, fmt.Errorf("%w: comb %d: %.3f ms > %.3f ms", ErrDelayExceedsBuffer, i+1, d, maxDelayMs)
		}
		for j := 0; j < i; j++ {
			if delaysMs[j] == d {
				return nil, fmt.Errorf("%w: combs %d and %d: %.3f ms", ErrDuplicateDelay, j+1, i+1, d)
			}
		}
	}

	return &CombBank{
		delaysMs:    delaysMs,
		maxDelayMs:  maxDelayMs,
		interpolate: true,
		decayMs:     DefaultRT60Ms,
	}, nil
}

// SetInterpolation toggles fractional delay reads for every comb. It takes
// effect with the next SetDecay or Prepare.
func (b *CombBank) SetInterpolation(on bool) {
	b.interpolate = on
}

// SetInterpolationMode selects the delay-line read algorithm. It takes
// effect with the next Prepare.
func (b *CombBank) SetInterpolationMode(mode interp.Mode) {
	for ch := range b.combs {
		for i := range b.combs[ch] {
			b.combs[ch][i].SetInterpolationMode(mode)
		}
	}
}

// Prepare allocates and clears every comb's delay buffer for sampleRate and
// applies the current decay. Buffers are resized before offsets are checked,
// so changing the rate of a prepared bank is safe.
func (b *CombBank) Prepare(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	for ch := range b.combs {
		for i := range b.combs[ch] {
			if err := b.combs[ch][i].CreateDelayBuffer(sampleRate, b.maxDelayMs); err != nil {
				return err
			}
		}
	}
	return b.SetDecay(b.decayMs)
}

// Release drops every delay buffer.
func (b *CombBank) Release() {
	for ch := range b.combs {
		for i := range b.combs[ch] {
			b.combs[ch][i].ReleaseDelayBuffer()
		}
	}
}

// Reset silences every comb, keeping buffers and parameters.
func (b *CombBank) Reset() {
	for ch := range b.combs {
		for i := range b.combs[ch] {
			b.combs[ch][i].Clear()
		}
	}
}

// SetDecay pushes decayMs and each comb's fixed delay into all combs. Every
// comb is validated first; on error no comb changes.
func (b *CombBank) SetDecay(decayMs float64) error {
	for ch := range b.combs {
		for i := range b.combs[ch] {
			if _, err := b.combs[ch][i].validate(b.paramsFor(i, decayMs)); err != nil {
				return fmt.Errorf("reverb: channel %d comb %d: %w", ch, i+1, err)
			}
		}
	}

	for ch := range b.combs {
		for i := range b.combs[ch] {
			if err := b.combs[ch][i].SetParameters(b.paramsFor(i, decayMs)); err != nil {
				return fmt.Errorf("reverb: channel %d comb %d: %w", ch, i+1, err)
			}
		}
	}
	b.decayMs = decayMs
	return nil
}

func (b *CombBank) paramsFor(i int, decayMs float64) CombFilterParameters {
	return CombFilterParameters{
		DecayTimeMs:   decayMs,
		DelayTimeMs:   b.delaysMs[i],
		EnableDamping: false,
		Interpolate:   b.interpolate,
	}
}

// Decay returns the decay time in milliseconds shared by all combs.
func (b *CombBank) Decay() float64 {
	return b.decayMs
}

// DelaysMs returns the fixed per-comb delay times.
func (b *CombBank) DelaysMs() [CombsPerChannel]float64 {
	return b.delaysMs
}

// MaxDelayMs returns the delay buffer size in milliseconds.
func (b *CombBank) MaxDelayMs() float64 {
	return b.maxDelayMs
}

// Filter returns comb i (0-based) of channel ch.
func (b *CombBank) Filter(ch, i int) *CombFilter {
	return &b.combs[ch][i]
}

// ProcessSample feeds xn to every comb of channel ch and returns the
// polarity-adjusted sum o1 - o2 + o3 - o4. Out-of-range channels yield 0.
func (b *CombBank) ProcessSample(ch int, xn float64) float64 {
	if ch < 0 || ch >= NumChannels {
		return 0
	}
	combs := &b.combs[ch]
	var yn float64
	for i := range combs {
		yn += CombPolarity[i] * combs[i].ProcessSample(xn)
	}
	return yn
}
