package mathutil

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Extents is an axis-aligned bounding box. The zero value is not empty;
// use NewExtents for an empty box.
type Extents struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewExtents returns an empty box that any point will grow.
func NewExtents() Extents {
	inf := math32.Inf(1)
	return Extents{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Reset empties the box.
func (e *Extents) Reset() { *e = NewExtents() }

// IsEmpty reports whether no point was added.
func (e Extents) IsEmpty() bool {
	return e.Min[0] > e.Max[0] || e.Min[1] > e.Max[1] || e.Min[2] > e.Max[2]
}

// AddPoint grows the box to contain p.
func (e *Extents) AddPoint(p mgl32.Vec3) {
	for k := 0; k < 3; k++ {
		e.Min[k] = math32.Min(e.Min[k], p[k])
		e.Max[k] = math32.Max(e.Max[k], p[k])
	}
}

// AddExtents grows the box to contain o.
func (e *Extents) AddExtents(o Extents) {
	if o.IsEmpty() {
		return
	}
	e.AddPoint(o.Min)
	e.AddPoint(o.Max)
}

// Transform replaces the box with the bounds of its eight transformed
// corners.
func (e *Extents) Transform(m mgl32.Mat4) {
	if e.IsEmpty() {
		return
	}
	lo, hi := e.Min, e.Max
	e.Reset()
	for i := 0; i < 8; i++ {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		e.AddPoint(TransformPoint(m, c))
	}
}

// Size returns Max - Min, or zero for an empty box.
func (e Extents) Size() mgl32.Vec3 {
	if e.IsEmpty() {
		return mgl32.Vec3{}
	}
	return e.Max.Sub(e.Min)
}

// Center returns the box midpoint, or zero for an empty box.
func (e Extents) Center() mgl32.Vec3 {
	if e.IsEmpty() {
		return mgl32.Vec3{}
	}
	return e.Min.Add(e.Max).Mul(0.5)
}
