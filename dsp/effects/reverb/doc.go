// Package reverb provides a Schroeder-style parallel comb-filter reverb.
//
// The signal path is intentionally small:
//   - CombFilter: one feedback comb over a fractional-read delay line, with
//     the feedback gain derived from a target RT60 decay time.
//   - CombBank: four combs per stereo channel, summed with alternating
//     polarity (+ - + -).
//   - CombVerb: the engine a host drives. It owns the bank, reads a Settings
//     snapshot once per block and blends the bank output with the dry input.
//
// Allocation happens only in Prepare/CreateDelayBuffer. Process and
// ProcessSample never allocate and never fail mid-block.
package reverb
