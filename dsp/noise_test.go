package dsp

import (
	"math"
	"testing"
)

func TestFieldDeterminism(t *testing.T) {
	a := NewField(123)
	b := NewField(123)
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.3
		y := float64(i) * 0.7
		if a.At(x, y) != b.At(x, y) {
			t.Fatalf("same seed diverged at (%v,%v)", x, y)
		}
	}
}

func TestFieldRange(t *testing.T) {
	f := NewField(9)
	for i := 0; i < 50; i++ {
		for j := 0; j < 50; j++ {
			v := f.At(float64(i)*0.23, float64(j)*0.41)
			if v < -1-1e-9 || v > 1+1e-9 {
				t.Fatalf("At(%d,%d) = %v outside [-1,1]", i, j, v)
			}
		}
	}
}

func TestFieldInterpolatesLattice(t *testing.T) {
	f := NewField(77)
	// On integer lattice points At returns the lattice value exactly;
	// midpoints sit between the corner values.
	v00 := f.At(2, 3)
	v10 := f.At(3, 3)
	mid := f.At(2.5, 3)
	lo, hi := v00, v10
	if lo > hi {
		lo, hi = hi, lo
	}
	if mid < lo-1e-9 || mid > hi+1e-9 {
		t.Fatalf("midpoint %v outside corner range [%v,%v]", mid, lo, hi)
	}
}

func TestFieldContinuity(t *testing.T) {
	f := NewField(5)
	const dt = 1e-4
	for i := 0; i < 400; i++ {
		x := float64(i) * 0.05
		d := math.Abs(f.At(x+dt, 1.5) - f.At(x, 1.5))
		if d > 0.01 {
			t.Fatalf("jump of %v at x=%v", d, x)
		}
	}
}

func TestSmoothstep(t *testing.T) {
	if Smoothstep(0) != 0 || Smoothstep(1) != 1 {
		t.Fatal("smoothstep endpoints wrong")
	}
	if got := Smoothstep(0.5); got != 0.5 {
		t.Fatalf("Smoothstep(0.5) = %v, want 0.5", got)
	}
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := Smoothstep(float64(i) / 100)
		if v < prev {
			t.Fatalf("smoothstep not monotonic at %d", i)
		}
		prev = v
	}
}

func TestClampAndLerp(t *testing.T) {
	if Clamp(5, 0, 1) != 1 || Clamp(-5, 0, 1) != 0 || Clamp(0.3, 0, 1) != 0.3 {
		t.Fatal("clamp wrong")
	}
	if Lerp(2, 4, 0.5) != 3 {
		t.Fatal("lerp wrong")
	}
}

func TestFadeShape(t *testing.T) {
	if Fade(0) != 0 {
		t.Fatalf("Fade(0) = %v", Fade(0))
	}
	if math.Abs(Fade(1)-1) > 1e-12 {
		t.Fatalf("Fade(1) = %v", Fade(1))
	}
	if math.Abs(Fade(0.5)-0.5) > 1e-12 {
		t.Fatalf("Fade(0.5) = %v", Fade(0.5))
	}
	prev := -1.0
	for i := 0; i <= 100; i++ {
		v := Fade(float64(i) / 100)
		if v < prev {
			t.Fatalf("fade not monotonic at %d", i)
		}
		prev = v
	}
}
