package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Radians converts each component from degrees.
func Radians(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
}

// Degrees converts each component from radians.
func Degrees(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.RadToDeg(v[0]), mgl32.RadToDeg(v[1]), mgl32.RadToDeg(v[2])}
}

// Axis quaternions for the three principal axes, angle in radians.
func RotX(a float32) mgl32.Quat { return mgl32.QuatRotate(a, mgl32.Vec3{1, 0, 0}) }
func RotY(a float32) mgl32.Quat { return mgl32.QuatRotate(a, mgl32.Vec3{0, 1, 0}) }
func RotZ(a float32) mgl32.Quat { return mgl32.QuatRotate(a, mgl32.Vec3{0, 0, 1}) }
