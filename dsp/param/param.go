// Package param hands control values from a UI or host thread to the audio
// thread without locks.
//
// Each Float stores its plain value as float64 bits in an atomic word. One
// goroutine writes, the audio goroutine reads a Snapshot once per block.
package param

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/cwbudde/algo-combverb/dsp/core"
)

// Float is a bounded float64 parameter safe for one writer and any number
// of readers.
type Float struct {
	ID   string
	Name string
	Unit string

	Min     float64
	Max     float64
	Default float64

	bits atomic.Uint64
}

// NewFloat creates a parameter holding def, clamped to [lo, hi].
func NewFloat(id, name, unit string, lo, hi, def float64) *Float {
	if hi < lo {
		lo, hi = hi, lo
	}
	p := &Float{ID: id, Name: name, Unit: unit, Min: lo, Max: hi}
	p.Default = core.Clamp(def, lo, hi)
	p.bits.Store(math.Float64bits(p.Default))
	return p
}

// Get returns the current plain value.
func (p *Float) Get() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Set stores v clamped to [Min, Max]. NaN restores the default.
func (p *Float) Set(v float64) {
	if math.IsNaN(v) {
		v = p.Default
	}
	p.bits.Store(math.Float64bits(core.Clamp(v, p.Min, p.Max)))
}

// Reset restores the default value.
func (p *Float) Reset() {
	p.bits.Store(math.Float64bits(p.Default))
}

// Normalized returns the current value mapped to [0, 1].
func (p *Float) Normalized() float64 {
	if p.Max <= p.Min {
		return 0
	}
	return (p.Get() - p.Min) / (p.Max - p.Min)
}

// SetNormalized sets the value from a [0, 1] position.
func (p *Float) SetNormalized(n float64) {
	if math.IsNaN(n) {
		p.Reset()
		return
	}
	n = core.Clamp(n, 0, 1)
	p.Set(p.Min + n*(p.Max-p.Min))
}

// Parse sets the value from its decimal text form.
func (p *Float) Parse(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	p.Set(v)
	return nil
}

// String formats the value with its unit.
func (p *Float) String() string {
	s := strconv.FormatFloat(p.Get(), 'f', 2, 64)
	if p.Unit == "" {
		return s
	}
	return s + " " + p.Unit
}
