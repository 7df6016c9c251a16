package ir

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// FrequencyResponse returns the magnitude |H(k)| for bins 0..fftSize/2 of
// the impulse response. fftSize is rounded up to a power of two; 0 selects
// the smallest power of two holding the whole response. Longer responses are
// truncated to fftSize samples.
func FrequencyResponse(ir []float64, fftSize int) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	if fftSize <= 0 {
		fftSize = len(ir)
	}
	fftSize = nextPowerOf2(max(fftSize, 2))

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("ir: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range ir[:min(len(ir), fftSize)] {
		in[i] = complex(v, 0)
	}
	buf := make([]complex128, fftSize)
	if err := plan.Forward(buf, in); err != nil {
		return nil, fmt.Errorf("ir: forward FFT failed: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range re {
		re[k] = real(buf[k])
		im[k] = imag(buf[k])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)
	return mag, nil
}

// BinFrequency returns the centre frequency in Hz of bin k.
func BinFrequency(k, fftSize int, sampleRate float64) float64 {
	if fftSize <= 0 {
		return 0
	}
	return float64(k) * sampleRate / float64(fftSize)
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
