package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Translate returns a translation matrix.
func Translate(v mgl32.Vec3) mgl32.Mat4 { return mgl32.Translate3D(v[0], v[1], v[2]) }

// Scale returns a scaling matrix.
func Scale(v mgl32.Vec3) mgl32.Mat4 { return mgl32.Scale3D(v[0], v[1], v[2]) }

// Mat4FromFloat64s builds a matrix from 16 column-major values. Short input
// yields the identity.
func Mat4FromFloat64s(values []float64) mgl32.Mat4 {
	if len(values) < 16 {
		return mgl32.Ident4()
	}
	var m mgl32.Mat4
	for i := range m {
		m[i] = float32(values[i])
	}
	return m
}

// TransformPoint transforms a point (w=1) by m.
func TransformPoint(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}

// TransformVector transforms a direction (w=0) by m.
func TransformVector(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// ExtractTranslation returns the translation column of an affine matrix.
func ExtractTranslation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// WithAffineRow forces the bottom row to (0, 0, 0, 1).
func WithAffineRow(m mgl32.Mat4) mgl32.Mat4 {
	m[3], m[7], m[11], m[15] = 0, 0, 0, 1
	return m
}

// IsIdentity checks if the matrix is approximately identity.
func IsIdentity(m mgl32.Mat4) bool {
	return m.ApproxEqualThreshold(mgl32.Ident4(), 1e-6)
}
