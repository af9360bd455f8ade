package dsp

import "math"

// Field is a deterministic 2-D value-noise field. Sampling it along one axis
// gives smooth, non-repeating motion with O(1) evaluation and no state, so a
// sample may be taken out of order or skipped entirely.
type Field struct {
	seed uint64
}

func NewField(seed uint64) *Field {
	return &Field{seed: seed}
}

// lattice hashes an integer lattice point to a value in [-1, 1].
func (f *Field) lattice(ix, iy int64) float64 {
	h := f.seed
	h ^= uint64(ix) * 0x9e3779b97f4a7c15
	h = (h ^ (h >> 27)) * 0xbf58476d1ce4e5b9
	h ^= uint64(iy) * 0x94d049bb133111eb
	h = (h ^ (h >> 31)) * 0xd6e8feb86659fd93
	h ^= h >> 32
	return float64(h&0xfffff)/float64(0xfffff)*2 - 1
}

// At returns the field value at (x, y), smoothly interpolated, in [-1, 1].
func (f *Field) At(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix := int64(x0)
	iy := int64(y0)

	tx := Smoothstep(x - x0)
	ty := Smoothstep(y - y0)

	v00 := f.lattice(ix, iy)
	v10 := f.lattice(ix+1, iy)
	v01 := f.lattice(ix, iy+1)
	v11 := f.lattice(ix+1, iy+1)

	return Lerp(Lerp(v00, v10, tx), Lerp(v01, v11, tx), ty)
}

func Smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
