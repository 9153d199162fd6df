package mathutil

import "github.com/go-gl/mathgl/mgl32"

const (
	// Epsilon is the tolerance used for degenerate-length checks.
	Epsilon float32 = 1e-6

	Pi        float32 = 3.14159265358979323846
	PiOverTwo float32 = Pi / 2
)

// UpAxisZRotation turns Z-up content into Y-up: -90° about X.
var UpAxisZRotation = mgl32.QuatRotate(-PiOverTwo, mgl32.Vec3{1, 0, 0})

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
