// Package ir analyses impulse responses of reverberators.
//
// Decay metrics follow ISO 3382 and are derived from the Schroeder backward
// integration of the squared response:
//
//   - RT60: reverberation time (T30, falling back to T20)
//   - EDT: early decay time (0 to -10 dB, extrapolated)
//   - T20, T30: -5 to -25 dB and -5 to -35 dB slopes, extrapolated
//   - C80, D50: clarity and definition
//
// Comb-filter responses are periodic, so the package also extracts echo
// trains (EchoPeaks, DecayRatio) and the magnitude response
// (FrequencyResponse) that shows the comb's evenly spaced peaks.
//
// # Usage
//
//	analyzer := ir.NewAnalyzer(44100)
//	metrics, err := analyzer.Analyze(impulseResponse)
//	fmt.Printf("RT60 = %.2f s, C80 = %.1f dB\n", metrics.RT60, metrics.C80)
package ir
