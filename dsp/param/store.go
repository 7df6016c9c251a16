package param

import "github.com/cwbudde/algo-combverb/dsp/effects/reverb"

// Parameter IDs.
const (
	IDRT60 = "Rt60"
	IDWet  = "Wet"
)

// Store holds the reverb's automatable parameters.
type Store struct {
	RT60 *Float
	Wet  *Float

	all []*Float
}

// NewStore returns a store at default settings.
func NewStore() *Store {
	s := &Store{
		RT60: NewFloat(IDRT60, "RT60", "ms", reverb.MinRT60Ms, reverb.MaxRT60Ms, reverb.DefaultRT60Ms),
		Wet:  NewFloat(IDWet, "Wet", "", 0, 1, reverb.DefaultWet),
	}
	s.all = []*Float{s.RT60, s.Wet}
	return s
}

// Params returns the parameters in display order.
func (s *Store) Params() []*Float {
	return s.all
}

// Lookup finds a parameter by ID.
func (s *Store) Lookup(id string) (*Float, bool) {
	for _, p := range s.all {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Reset restores every parameter to its default.
func (s *Store) Reset() {
	for _, p := range s.all {
		p.Reset()
	}
}

// Snapshot reads the current values for one processing block.
func (s *Store) Snapshot() reverb.Settings {
	return reverb.Settings{
		DecayTimeMs: s.RT60.Get(),
		Wet:         s.Wet.Get(),
	}
}
