package reverb

const (
	// DefaultRT60Ms is the decay time a freshly built engine uses.
	DefaultRT60Ms = 500.0
	// DefaultWet is the wet amount a freshly built engine uses.
	DefaultWet = 1.0

	// MinRT60Ms and MaxRT60Ms bound the recommended decay range.
	MinRT60Ms = 0.0
	MaxRT60Ms = 10000.0
)

// Settings is the per-block parameter snapshot a host hands to Process.
type Settings struct {
	// DecayTimeMs is the RT60 shared by all combs. Values <= 0 disable feedback.
	DecayTimeMs float64
	// Wet is the mix amount in [0, 1]; out-of-range values are clamped.
	Wet float64
}

// DefaultSettings returns 500 ms decay, fully wet.
func DefaultSettings() Settings {
	return Settings{DecayTimeMs: DefaultRT60Ms, Wet: DefaultWet}
}
