package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Transform is a translation-rotation-scale triple applied as T·R·S.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns the transform that changes nothing.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// IsIdentity reports whether t changes nothing.
func (t Transform) IsIdentity() bool {
	return t.Translation == (mgl32.Vec3{}) &&
		t.Scale == (mgl32.Vec3{1, 1, 1}) &&
		SameRotation(t.Rotation, mgl32.QuatIdent(), 1e-7)
}

// PostTranslate appends a translation expressed in t's local frame.
func (t *Transform) PostTranslate(v mgl32.Vec3) {
	t.Translation = t.Translation.Add(t.Rotation.Rotate(MulComponents(t.Scale, v)))
}

// PostScale appends a component-wise scale.
func (t *Transform) PostScale(s mgl32.Vec3) {
	t.Scale = MulComponents(t.Scale, s)
}

// Matrix returns T·R·S.
func (t Transform) Matrix() mgl32.Mat4 {
	return Translate(t.Translation).Mul4(t.Rotation.Mat4()).Mul4(Scale(t.Scale))
}
