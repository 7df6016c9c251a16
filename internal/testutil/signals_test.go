package testutil

import (
	"math"
	"testing"
)

func TestImpulse(t *testing.T) {
	got := Impulse(5, 2)
	want := []float64{0, 0, 1, 0, 0}
	RequireSliceNearlyEqual(t, got, want, 0)

	for _, pos := range []int{-1, 5} {
		for i, v := range Impulse(5, pos) {
			if v != 0 {
				t.Fatalf("pos %d: index %d = %v, want silence", pos, i, v)
			}
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(7, 0.5, 256)
	b := DeterministicNoise(7, 0.5, 256)
	RequireSliceNearlyEqual(t, a, b, 0)
	RequireBounded(t, a, 0.5)

	c := DeterministicNoise(8, 0.5, 256)
	if d, _ := MaxAbsDiff(a, c); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 8000, 0.5, 8)
	want := []float64{0, 0.5 * math.Sqrt2 / 2, 0.5, 0.5 * math.Sqrt2 / 2, 0, -0.5 * math.Sqrt2 / 2, -0.5, -0.5 * math.Sqrt2 / 2}
	RequireSliceNearlyEqual(t, s, want, 1e-12)
}

func TestChannelsCopies(t *testing.T) {
	left := []float64{1, 2}
	right := []float64{3, 4}
	buf := Channels(left, right)
	buf[0][0] = 9
	buf[1][1] = 9

	if left[0] != 1 || right[1] != 4 {
		t.Fatalf("source mutated: %v %v", left, right)
	}
	if len(buf) != 2 || len(buf[0]) != 2 {
		t.Fatalf("unexpected shape %v", buf)
	}
}
