package ir

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPeriod is returned for non-positive echo periods or counts.
var ErrInvalidPeriod = errors.New("ir: echo period and count must be positive")

// EchoPeaks measures a periodic echo train. Element k is the largest
// absolute value within half a period of sample k*periodSamples, for
// k = 0..count-1. Windows past the end of ir report 0.
func (a *Analyzer) EchoPeaks(ir []float64, periodSamples, count int) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	if periodSamples <= 0 || count <= 0 {
		return nil, fmt.Errorf("%w: period=%d count=%d", ErrInvalidPeriod, periodSamples, count)
	}

	half := periodSamples / 2
	peaks := make([]float64, count)
	for k := range peaks {
		lo := max(k*periodSamples-half, 0)
		hi := min(k*periodSamples+periodSamples-half, len(ir))
		for i := lo; i < hi; i++ {
			if av := math.Abs(ir[i]); av > peaks[k] {
				peaks[k] = av
			}
		}
	}
	return peaks, nil
}

// EchoPeaksMs is EchoPeaks with the period given in milliseconds, rounded
// to the nearest sample.
func (a *Analyzer) EchoPeaksMs(ir []float64, periodMs float64, count int) ([]float64, error) {
	if a.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	return a.EchoPeaks(ir, int(math.Round(periodMs*0.001*a.SampleRate)), count)
}

// DecayRatio returns peaks[to]/peaks[from]. For a comb filter with delay d
// and decay time T, echoes T/d periods apart have a ratio of 1e-3.
func DecayRatio(peaks []float64, from, to int) (float64, error) {
	if from < 0 || to < 0 || from >= len(peaks) || to >= len(peaks) {
		return 0, fmt.Errorf("ir: echo index out of range: %d, %d of %d", from, to, len(peaks))
	}
	if peaks[from] == 0 {
		return 0, fmt.Errorf("%w: echo %d is silent", ErrNoDecay, from)
	}
	return peaks[to] / peaks[from], nil
}

// DecayRatioDB is DecayRatio in dB (20*log10).
func DecayRatioDB(peaks []float64, from, to int) (float64, error) {
	r, err := DecayRatio(peaks, from, to)
	if err != nil {
		return 0, err
	}
	if r == 0 {
		return math.Inf(-1), nil
	}
	return 20 * math.Log10(r), nil
}

// FirstArrival returns the index of the first sample whose magnitude reaches
// thresholdRatio times the peak magnitude.
func (a *Analyzer) FirstArrival(ir []float64, thresholdRatio float64) (int, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}
	if thresholdRatio <= 0 || thresholdRatio > 1 {
		return 0, fmt.Errorf("ir: threshold ratio must be in (0, 1]: %f", thresholdRatio)
	}
	_, peak := absPeak(ir)
	return firstAbove(ir, thresholdRatio*peak), nil
}
