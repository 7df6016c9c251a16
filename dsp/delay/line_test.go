package delay

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-combverb/dsp/interp"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// fillRamp fills a delay line with a linear ramp [0, 1, 2, ..., size-1].
func fillRamp(d *Line) {
	for i := 0; i < d.Len(); i++ {
		d.Write(float64(i))
	}
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("New(0) err = %v, want ErrInvalidSize", err)
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestNewDefaults(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 16 {
		t.Fatalf("Len: got %d want 16", d.Len())
	}

	if d.Mode() != interp.Linear {
		t.Fatalf("default mode: got %v want Linear", d.Mode())
	}
}

func TestNewWithOptions(t *testing.T) {
	d, err := New(16, WithMode(interp.Hermite), nil)
	if err != nil {
		t.Fatal(err)
	}

	if d.Mode() != interp.Hermite {
		t.Fatalf("mode: got %v want Hermite", d.Mode())
	}
}

func TestNewForDurationCapacity(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		maxDelayMs float64
		want       int
	}{
		{name: "cd rate 100ms", sampleRate: 44100, maxDelayMs: 100, want: 4410},
		{name: "rounds up", sampleRate: 44100, maxDelayMs: 0.01, want: 1},
		{name: "48k 77ms", sampleRate: 48000, maxDelayMs: 77, want: 3696},
		{name: "fractional product", sampleRate: 1000, maxDelayMs: 2.5, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewForDuration(tt.sampleRate, tt.maxDelayMs)
			if err != nil {
				t.Fatal(err)
			}
			if d.Len() != tt.want {
				t.Fatalf("Len: got %d want %d", d.Len(), tt.want)
			}
			if d.SampleRate() != tt.sampleRate || d.MaxDelayMs() != tt.maxDelayMs {
				t.Fatalf("got rate=%v max=%v", d.SampleRate(), d.MaxDelayMs())
			}
		})
	}
}

func TestAllocateValidation(t *testing.T) {
	d := &Line{}
	if err := d.Allocate(0, 100); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("rate 0: err = %v", err)
	}
	if err := d.Allocate(math.Inf(1), 100); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("rate Inf: err = %v", err)
	}
	if err := d.Allocate(44100, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("duration 0: err = %v", err)
	}
	if err := d.Allocate(44100, math.NaN()); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("duration NaN: err = %v", err)
	}
}

func TestAllocateClearsAndResizes(t *testing.T) {
	d, err := NewForDuration(1000, 10)
	if err != nil {
		t.Fatal(err)
	}
	fillRamp(d)
	d.Write(42)

	// Same capacity: storage reused but silent.
	if err := d.Allocate(1000, 10); err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= d.Len(); i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("after re-allocate Read(%d) = %v want 0", i, got)
		}
	}

	d.Write(1)
	if err := d.Allocate(2000, 10); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 20 {
		t.Fatalf("Len after rate change: got %d want 20", d.Len())
	}
	for i := 0; i <= d.Len(); i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("after rate change Read(%d) = %v want 0", i, got)
		}
	}
}

func TestReleaseReadsSilence(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	d.Write(1)
	d.Release()
	d.Write(2)

	if d.Len() != 0 {
		t.Fatalf("Len after release: got %d want 0", d.Len())
	}
	if got := d.Read(1); got != 0 {
		t.Fatalf("Read after release = %v want 0", got)
	}
	if got := d.ReadFractional(1.5); got != 0 {
		t.Fatalf("ReadFractional after release = %v want 0", got)
	}
}

// --- integer Read/Write ---

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i))
	}
	// delay=1 => most recently written (7)
	if got := d.Read(1); got != 7 {
		t.Fatalf("got %v want 7", got)
	}
	// delay=3 => 3 samples back from write head
	if got := d.Read(3); got != 5 {
		t.Fatalf("got %v want 5", got)
	}
	// delay=Len => oldest
	if got := d.Read(8); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
}

func TestReadWraparound(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		d.Write(float64(i))
	}
	// buffer should contain [8, 9, 6, 7], writePos=2
	if got := d.Read(1); got != 9 {
		t.Fatalf("got %v want 9", got)
	}
	if got := d.Read(4); got != 6 {
		t.Fatalf("got %v want 6", got)
	}
}

func TestReadClampsOutOfRange(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		d.Write(float64(i + 1))
	}

	if got, want := d.Read(100), d.Read(4); got != want {
		t.Fatalf("Read(100) = %v want clamp to Read(4) = %v", got, want)
	}
	if got, want := d.Read(-3), d.Read(0); got != want {
		t.Fatalf("Read(-3) = %v want clamp to Read(0) = %v", got, want)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := 0; i < 4; i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("after reset Read(%d): got %v want 0", i, got)
		}
	}
}

// --- fractional reads ---

func TestReadFractionalLinear(t *testing.T) {
	d, err := New(32)
	if err != nil {
		t.Fatal(err)
	}

	fillRamp(d)
	// With a linear ramp, linear interpolation is exact.
	got := d.ReadFractional(5.5)

	want := float64(d.Len()) - 5.5 // 26.5
	if !approxEqual(got, want, 1e-10) {
		t.Fatalf("Linear: got %v want %v", got, want)
	}
}

func TestReadFractionalLinearFormula(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{0, 0, 0, 0, 0, 3, -1, 2} {
		d.Write(v)
	}

	// y0 at floor(2.25)=2 is -1, y1 at 3 is 3.
	want := -1 + 0.25*(3-(-1))
	if got := d.ReadFractional(2.25); got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestReadFractionalIntegerMatchesRead(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Linear, interp.Hermite} {
		d, err := New(64, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < d.Len(); i++ {
			d.Write(math.Sin(0.37 * float64(i)))
		}
		for _, delay := range []int{2, 7, 31, 62} {
			if got, want := d.ReadFractional(float64(delay)), d.Read(delay); got != want {
				t.Fatalf("%v delay %d: got %v want %v", mode, delay, got, want)
			}
		}
	}
}

func TestReadFractionalClamps(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		d.Write(float64(i + 1))
	}

	if got, want := d.ReadFractional(-1.0), d.Read(1); got != want {
		t.Fatalf("negative delay: got %v want %v", got, want)
	}
	if got, want := d.ReadFractional(math.NaN()), d.Read(1); got != want {
		t.Fatalf("NaN delay: got %v want %v", got, want)
	}
	if got, want := d.ReadFractional(50), d.Read(8); got != want {
		t.Fatalf("delay past capacity: got %v want %v", got, want)
	}
}

func TestReadFractionalAtCapacityEdge(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{10, 20, 30, 40} {
		d.Write(v)
	}
	// delay 3.5 blends the second-oldest (20) with the oldest (10).
	if got := d.ReadFractional(3.5); got != 15 {
		t.Fatalf("got %v want 15", got)
	}
}

func TestReadFractionalHermite(t *testing.T) {
	d, err := New(32, WithMode(interp.Hermite))
	if err != nil {
		t.Fatal(err)
	}

	fillRamp(d)
	got := d.ReadFractional(5.5)

	want := float64(d.Len()) - 5.5
	if !approxEqual(got, want, 1e-10) {
		t.Fatalf("Hermite: got %v want %v", got, want)
	}
}

func TestAllModesDCPreservation(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Linear, interp.Hermite} {
		d, err := New(32, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < d.Len(); i++ {
			d.Write(42.0)
		}

		got := d.ReadFractional(5.3)
		if !approxEqual(got, 42.0, 1e-9) {
			t.Fatalf("%v DC: got %v want 42", mode, got)
		}
	}
}

func TestAllModesSineQuality(t *testing.T) {
	freq := 0.02
	size := 256

	modes := []struct {
		mode interp.Mode
		tol  float64
	}{
		{interp.Linear, 0.01},
		{interp.Hermite, 1e-4},
	}

	for _, tc := range modes {
		d, err := New(size, WithMode(tc.mode))
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < size; i++ {
			d.Write(math.Sin(2 * math.Pi * freq * float64(i)))
		}

		delay := 20.37
		// Read(k) returns the sample written at index (size-k).
		exactSample := float64(size) - delay
		want := math.Sin(2 * math.Pi * freq * exactSample)
		got := d.ReadFractional(delay)

		if diff := math.Abs(got - want); diff > tc.tol {
			t.Fatalf("%v sine: got %v want %v (err=%e, tol=%e)", tc.mode, got, want, diff, tc.tol)
		}
	}
}

// --- capacity checks ---

func TestCheckDelay(t *testing.T) {
	d, err := NewForDuration(1000, 100) // 100 samples
	if err != nil {
		t.Fatal(err)
	}

	if err := d.CheckDelay(100); err != nil {
		t.Fatalf("CheckDelay(100) = %v, want nil", err)
	}
	if err := d.CheckDelay(100.5); !errors.Is(err, ErrDelayTooLong) {
		t.Fatalf("CheckDelay(100.5) = %v, want ErrDelayTooLong", err)
	}
	for _, bad := range []float64{-1, math.NaN()} {
		if err := d.CheckDelay(bad); !errors.Is(err, ErrInvalidDelay) {
			t.Fatalf("CheckDelay(%v) = %v, want ErrInvalidDelay", bad, err)
		}
	}

	h, err := NewForDuration(1000, 100, WithMode(interp.Hermite))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.CheckDelay(99); !errors.Is(err, ErrDelayTooLong) {
		t.Fatalf("Hermite CheckDelay(99) = %v, want ErrDelayTooLong", err)
	}
}

// --- benchmarks ---

func BenchmarkReadFractionalLinear(b *testing.B) {
	d, _ := New(1024)
	fillRamp(d)
	b.ResetTimer()

	for b.Loop() {
		d.ReadFractional(100.37)
	}
}

func BenchmarkReadFractionalHermite(b *testing.B) {
	d, _ := New(1024, WithMode(interp.Hermite))
	fillRamp(d)
	b.ResetTimer()

	for b.Loop() {
		d.ReadFractional(100.37)
	}
}
