package reverb

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-combverb/dsp/core"
	"github.com/cwbudde/algo-combverb/dsp/interp"
	"github.com/cwbudde/algo-combverb/dsp/mix"
)

// Errors returned by the engine.
var (
	ErrNotPrepared       = errors.New("reverb: engine not prepared")
	ErrUnsupportedLayout = errors.New("reverb: unsupported channel layout")
)

type engineConfig struct {
	delaysMs    [CombsPerChannel]float64
	maxDelayMs  float64
	interpolate bool
	mode        interp.Mode
}

// EngineOption configures a CombVerb at construction.
type EngineOption func(*engineConfig)

// WithCombDelays replaces the four per-channel comb delay times.
func WithCombDelays(delaysMs [CombsPerChannel]float64) EngineOption {
	return func(cfg *engineConfig) {
		cfg.delaysMs = delaysMs
	}
}

// WithMaxDelayMs sets the delay buffer size of every comb.
func WithMaxDelayMs(ms float64) EngineOption {
	return func(cfg *engineConfig) {
		cfg.maxDelayMs = ms
	}
}

// WithInterpolation toggles fractional delay reads. Enabled by default.
func WithInterpolation(on bool) EngineOption {
	return func(cfg *engineConfig) {
		cfg.interpolate = on
	}
}

// WithInterpolationMode selects the fractional-read algorithm. Linear by default.
func WithInterpolationMode(mode interp.Mode) EngineOption {
	return func(cfg *engineConfig) {
		cfg.mode = mode
	}
}

// CheckLayout reports whether a host bus layout can be processed: mono or
// stereo, with matching input and output channel counts.
func CheckLayout(inputChannels, outputChannels int) error {
	if outputChannels < 1 || outputChannels > NumChannels {
		return fmt.Errorf("%w: %d output channels", ErrUnsupportedLayout, outputChannels)
	}
	if inputChannels != outputChannels {
		return fmt.Errorf("%w: %d inputs for %d outputs", ErrUnsupportedLayout, inputChannels, outputChannels)
	}
	return nil
}

// CombVerb is the parallel comb-filter reverb engine.
//
// The host calls Prepare from a non-real-time context, then Process once
// per block from a single audio thread, and Release when streaming stops.
type CombVerb struct {
	bank *CombBank
	cfg  core.ProcessorConfig

	prepared bool
	wet      float64
	scratch  [NumChannels][]float64
}

// NewCombVerb builds an unprepared engine.
func NewCombVerb(opts ...EngineOption) (*CombVerb, error) {
	cfg := engineConfig{
		delaysMs:    DefaultCombDelaysMs,
		maxDelayMs:  DefaultMaxDelayMs,
		interpolate: true,
		mode:        interp.Linear,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	bank, err := NewCombBank(cfg.delaysMs, cfg.maxDelayMs)
	if err != nil {
		return nil, err
	}
	bank.SetInterpolation(cfg.interpolate)
	bank.SetInterpolationMode(cfg.mode)

	return &CombVerb{bank: bank, wet: DefaultWet}, nil
}

// Prepare allocates and clears all delay buffers and the per-channel
// scratch for the given sample rate and maximum block size. It may be
// called again at any time to start from scratch.
func (r *CombVerb) Prepare(opts ...core.ProcessorOption) error {
	cfg := core.ApplyProcessorOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reverb: prepare: %w", err)
	}

	r.prepared = false
	if err := r.bank.Prepare(cfg.SampleRate); err != nil {
		return fmt.Errorf("reverb: prepare: %w", err)
	}
	for ch := range r.scratch {
		r.scratch[ch] = core.EnsureLen(r.scratch[ch], cfg.BlockSize)
		core.Zero(r.scratch[ch])
	}

	r.cfg = cfg
	r.prepared = true
	return nil
}

// Release frees the delay buffers. It is safe to call any number of times;
// Prepare makes the engine usable again.
func (r *CombVerb) Release() {
	r.bank.Release()
	for ch := range r.scratch {
		r.scratch[ch] = nil
	}
	r.prepared = false
}

// Prepared reports whether Process can run.
func (r *CombVerb) Prepared() bool {
	return r.prepared
}

// Config returns the sample rate and block size of the last Prepare.
func (r *CombVerb) Config() core.ProcessorConfig {
	return r.cfg
}

// Bank exposes the comb bank for inspection.
func (r *CombVerb) Bank() *CombBank {
	return r.bank
}

// Reset silences the reverb tail without reallocating.
func (r *CombVerb) Reset() {
	r.bank.Reset()
}

// Wet returns the mix amount in effect.
func (r *CombVerb) Wet() float64 {
	return r.wet
}

// TailSeconds returns how long the output keeps ringing after the input
// stops, i.e. the decay time in seconds, or 0 without feedback.
func (r *CombVerb) TailSeconds() float64 {
	if d := r.bank.Decay(); d > 0 && core.IsFinite(d) {
		return d / 1000
	}
	return 0
}

// ApplySettings pushes a parameter snapshot into the engine: the decay goes
// to all combs, the wet amount is clamped to [0, 1] and held until the next
// call.
func (r *CombVerb) ApplySettings(s Settings) error {
	if err := r.bank.SetDecay(s.DecayTimeMs); err != nil {
		return err
	}
	r.wet = mix.ClampAmount(s.Wet)
	return nil
}

// ProcessSample runs one sample of channel ch through the combs and blends
// it with the dry input using the wet amount from the last ApplySettings.
// An unprepared engine or an out-of-range channel passes x through.
func (r *CombVerb) ProcessSample(ch int, x float64) float64 {
	if !r.prepared || ch < 0 || ch >= NumChannels {
		return x
	}
	return mix.DryWet(x, r.bank.ProcessSample(ch, x), r.wet)
}

// Process applies the reverb to buf in place. buf holds one slice per
// channel; one (mono, left combs only) or two channels of equal length are
// accepted. Layout and preparation are checked before any sample is touched.
func (r *CombVerb) Process(buf [][]float64, s Settings) error {
	if !r.prepared {
		return ErrNotPrepared
	}
	if err := CheckLayout(len(buf), len(buf)); err != nil {
		return err
	}
	n, ok := core.ChannelsEqualLen(buf)
	if !ok {
		return fmt.Errorf("%w: channel lengths differ", ErrUnsupportedLayout)
	}
	if err := r.ApplySettings(s); err != nil {
		return err
	}

	block := r.cfg.BlockSize
	for start := 0; start < n; start += block {
		end := min(start+block, n)
		for ch, samples := range buf {
			r.processChannel(ch, samples[start:end])
		}
	}
	return nil
}

func (r *CombVerb) processChannel(ch int, samples []float64) {
	wet := r.scratch[ch][:len(samples)]
	for i, x := range samples {
		wet[i] = r.bank.ProcessSample(ch, x)
	}
	mix.DryWetBlock(samples, samples, wet, r.wet)
}
