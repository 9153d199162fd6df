package mathutil

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// EulerToQuat converts Euler angles in radians to a quaternion, applying
// X first, then Y, then Z (q = qZ·qY·qX).
func EulerToQuat(rx, ry, rz float32) mgl32.Quat {
	cx, sx := math32.Cos(rx*0.5), math32.Sin(rx*0.5)
	cy, sy := math32.Cos(ry*0.5), math32.Sin(ry*0.5)
	cz, sz := math32.Cos(rz*0.5), math32.Sin(rz*0.5)

	return mgl32.Quat{
		W: cx*cy*cz + sx*sy*sz,
		V: mgl32.Vec3{
			sx*cy*cz - cx*sy*sz,
			cx*sy*cz + sx*cy*sz,
			cx*cy*sz - sx*sy*cz,
		},
	}
}

// QuatFromDegrees is EulerToQuat for a vector of angles in degrees.
func QuatFromDegrees(deg mgl32.Vec3) mgl32.Quat {
	r := Radians(deg)
	return EulerToQuat(r[0], r[1], r[2])
}

// SafeEulerAngles returns the XYZ Euler angles (radians) of q, handling the
// gimbal-lock poles and keeping z in [-pi/2, pi/2].
func SafeEulerAngles(q mgl32.Quat) mgl32.Vec3 {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.W
	sy := 2 * (y*w - x*z)

	var e mgl32.Vec3
	switch {
	case sy >= 1-Epsilon:
		e = mgl32.Vec3{0, PiOverTwo, -math32.Atan2(x*w-y*z, 0.5-(x*x+z*z))}
	case sy <= -1+Epsilon:
		e = mgl32.Vec3{0, -PiOverTwo, math32.Atan2(x*w-y*z, 0.5-(x*x+z*z))}
	default:
		e = mgl32.Vec3{
			math32.Atan2(y*z+x*w, 0.5-(x*x+y*y)),
			math32.Asin(sy),
			math32.Atan2(x*y+z*w, 0.5-(y*y+z*z)),
		}
	}

	if e[2] < -PiOverTwo || e[2] > PiOverTwo {
		if e[0] < 0 {
			e[0] += Pi
		} else {
			e[0] -= Pi
		}
		e[1] = -e[1]
		if e[1] < 0 {
			e[1] += Pi
		} else {
			e[1] -= Pi
		}
		if e[2] < 0 {
			e[2] += Pi
		} else {
			e[2] -= Pi
		}
	}
	return e
}

// SafeEulerDegrees is SafeEulerAngles converted to degrees.
func SafeEulerDegrees(q mgl32.Quat) mgl32.Vec3 {
	return Degrees(SafeEulerAngles(q))
}

// QuatFromMatrix extracts the rotation of an affine matrix, ignoring scale.
func QuatFromMatrix(m mgl32.Mat4) mgl32.Quat {
	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	if l := c0.Len(); l > Epsilon {
		c0 = c0.Mul(1 / l)
	}
	if l := c1.Len(); l > Epsilon {
		c1 = c1.Mul(1 / l)
	}
	if l := c2.Len(); l > Epsilon {
		c2 = c2.Mul(1 / l)
	}
	m00, m10, m20 := c0[0], c0[1], c0[2]
	m01, m11, m21 := c1[0], c1[1], c1[2]
	m02, m12, m22 := c2[0], c2[1], c2[2]

	var q mgl32.Quat
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		q = mgl32.Quat{W: 0.25 / s, V: mgl32.Vec3{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s}}
	case m00 > m11 && m00 > m22:
		s := 2 * math32.Sqrt(1+m00-m11-m22)
		q = mgl32.Quat{W: (m21 - m12) / s, V: mgl32.Vec3{0.25 * s, (m01 + m10) / s, (m02 + m20) / s}}
	case m11 > m22:
		s := 2 * math32.Sqrt(1+m11-m00-m22)
		q = mgl32.Quat{W: (m02 - m20) / s, V: mgl32.Vec3{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s}}
	default:
		s := 2 * math32.Sqrt(1+m22-m00-m11)
		q = mgl32.Quat{W: (m10 - m01) / s, V: mgl32.Vec3{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s}}
	}
	return q.Normalize()
}

// SameRotation reports whether a and b rotate every vector alike within tol.
func SameRotation(a, b mgl32.Quat, tol float32) bool {
	d := math32.Abs(a.Normalize().Dot(b.Normalize()))
	return d >= 1-tol
}
