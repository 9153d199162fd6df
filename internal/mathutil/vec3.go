package mathutil

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3From converts a float64 triple.
func Vec3From(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Vec3s groups a flat float slice into vectors; a trailing partial group is
// dropped.
func Vec3s(values []float64) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, 0, len(values)/3)
	for i := 0; i+2 < len(values); i += 3 {
		out = append(out, mgl32.Vec3{float32(values[i]), float32(values[i+1]), float32(values[i+2])})
	}
	return out
}

// Vec2sFlipV groups pairs into texture coordinates with the V axis flipped.
func Vec2sFlipV(values []float64) []mgl32.Vec2 {
	out := make([]mgl32.Vec2, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		out = append(out, mgl32.Vec2{float32(values[i]), -float32(values[i+1])})
	}
	return out
}

// ColorsRGBA groups quadruples into RGB colors (alpha dropped) and returns
// their average.
func ColorsRGBA(values []float64) ([]mgl32.Vec3, mgl32.Vec3) {
	out := make([]mgl32.Vec3, 0, len(values)/4)
	var sum mgl32.Vec3
	for i := 0; i+3 < len(values); i += 4 {
		c := mgl32.Vec3{float32(values[i]), float32(values[i+1]), float32(values[i+2])}
		sum = sum.Add(c)
		out = append(out, c)
	}
	if len(out) > 0 {
		sum = sum.Mul(1 / float32(len(out)))
	}
	return out, sum
}

// ParseVec3 parses "x, y, z". Missing components repeat the last parsed
// value; unparseable components are 0.
func ParseVec3(s string) mgl32.Vec3 {
	var v mgl32.Vec3
	parts := strings.Split(s, ",")
	n := 0
	for _, p := range parts {
		if n == 3 {
			break
		}
		f, _ := strconv.ParseFloat(strings.TrimSpace(p), 32)
		v[n] = float32(f)
		n++
	}
	for ; n > 0 && n < 3; n++ {
		v[n] = v[n-1]
	}
	return v
}

// MulComponents multiplies a and b component by component.
func MulComponents(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// NonZeroScale replaces zero components with 1.
func NonZeroScale(v mgl32.Vec3) mgl32.Vec3 {
	for i := range v {
		if v[i] == 0 {
			v[i] = 1
		}
	}
	return v
}
