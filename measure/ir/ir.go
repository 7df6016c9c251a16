package ir

import (
	"errors"
	"math"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrInvalidTime       = errors.New("ir: time must be positive")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// schroederFloorDB is reported where no energy remains.
const schroederFloorDB = -200

// Metrics holds impulse response analysis results.
type Metrics struct {
	RT60         float64 // seconds, from T30 or T20
	EDT          float64 // seconds, 0 to -10 dB extrapolated
	T20          float64 // seconds, -5 to -25 dB extrapolated
	T30          float64 // seconds, -5 to -35 dB extrapolated
	C80          float64 // dB
	D50          float64 // ratio 0-1
	PeakIndex    int     // sample index of the absolute maximum
	FirstArrival int     // first sample within -20 dB of the peak
}

// Analyzer computes IR metrics at a fixed sample rate.
type Analyzer struct {
	SampleRate float64
}

// NewAnalyzer creates an IR analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

func (a *Analyzer) check(ir []float64) error {
	if len(ir) == 0 {
		return ErrEmptyIR
	}
	if a.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}

// Analyze computes all metrics. Energy metrics are measured from the first
// arrival, so a reverb's pre-delay does not count as early energy.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if err := a.check(ir); err != nil {
		return Metrics{}, err
	}

	peak, peakVal := absPeak(ir)
	m := Metrics{
		PeakIndex:    peak,
		FirstArrival: firstAbove(ir, 0.1*peakVal),
	}

	tail := ir[m.FirstArrival:]
	schroeder := schroederDB(tail)

	m.EDT = a.reverbTime(schroeder, 0, -10)
	m.T20 = a.reverbTime(schroeder, -5, -25)
	m.T30 = a.reverbTime(schroeder, -5, -35)
	m.RT60 = m.T30
	if m.RT60 == 0 {
		m.RT60 = m.T20
	}

	early, late := a.splitEnergy(tail, 80)
	m.C80 = clarityDB(early, late)
	early, late = a.splitEnergy(tail, 50)
	if total := early + late; total > 0 {
		m.D50 = early / total
	}
	return m, nil
}

// SchroederIntegral returns the backward-integrated energy decay in dB,
// normalised so the first sample is 0 dB.
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	return schroederDB(ir), nil
}

// RT60 estimates the reverberation time from T30, falling back to T20.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}

	schroeder := schroederDB(ir)
	if rt := a.reverbTime(schroeder, -5, -35); rt > 0 {
		return rt, nil
	}
	if rt := a.reverbTime(schroeder, -5, -25); rt > 0 {
		return rt, nil
	}
	return 0, ErrNoDecay
}

// Clarity returns C(t) = 10*log10(early/late) with the boundary at timeMs.
func (a *Analyzer) Clarity(ir []float64, timeMs float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}
	if timeMs <= 0 {
		return 0, ErrInvalidTime
	}
	early, late := a.splitEnergy(ir, timeMs)
	return clarityDB(early, late), nil
}

func schroederDB(ir []float64) []float64 {
	out := make([]float64, len(ir))

	var acc float64
	for i := len(ir) - 1; i >= 0; i-- {
		acc += ir[i] * ir[i]
		out[i] = acc
	}

	total := out[0]
	if total <= 0 {
		for i := range out {
			out[i] = schroederFloorDB
		}
		return out
	}

	for i, e := range out {
		if e <= 0 {
			out[i] = schroederFloorDB
			continue
		}
		out[i] = 10 * math.Log10(e/total)
	}
	return out
}

// reverbTime fits a line to the Schroeder curve between startDB and endDB
// and extrapolates it to -60 dB. It returns 0 when the range is not reached.
func (a *Analyzer) reverbTime(schroeder []float64, startDB, endDB float64) float64 {
	start, end := -1, -1
	for i, v := range schroeder {
		if start < 0 && v <= startDB {
			start = i
		}
		if start >= 0 && v <= endDB {
			end = i
			break
		}
	}
	if start < 0 || end <= start {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64
	n := float64(end - start + 1)
	for i := start; i <= end; i++ {
		x := float64(i - start)
		y := schroeder[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / denom // dB per sample
	if slope >= 0 {
		return 0
	}
	return -60 / (slope * a.SampleRate)
}

func (a *Analyzer) splitEnergy(ir []float64, timeMs float64) (early, late float64) {
	boundary := int(math.Round(timeMs * 0.001 * a.SampleRate))
	for i, v := range ir {
		if i < boundary {
			early += v * v
		} else {
			late += v * v
		}
	}
	return early, late
}

func clarityDB(early, late float64) float64 {
	switch {
	case late <= 0:
		return math.Inf(1)
	case early <= 0:
		return math.Inf(-1)
	}
	return 10 * math.Log10(early/late)
}

func absPeak(ir []float64) (int, float64) {
	idx, val := 0, 0.0
	for i, v := range ir {
		if av := math.Abs(v); av > val {
			idx, val = i, av
		}
	}
	return idx, val
}

func firstAbove(ir []float64, threshold float64) int {
	for i, v := range ir {
		if math.Abs(v) >= threshold && v != 0 {
			return i
		}
	}
	return 0
}
