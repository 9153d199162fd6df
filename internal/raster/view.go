package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultFOV is the vertical field of view, in degrees, of perspective views.
const DefaultFOV = 35

// View is the preview camera: the model is turned by Yaw then tilted by
// Pitch and looked at from +Z.
type View struct {
	Yaw, Pitch  float32 // degrees
	Perspective bool
	FOV         float32 // degrees, 0 means DefaultFOV
}

// DefaultView looks at the front of a Y-up model from slightly above and to
// the right.
func DefaultView() View {
	return View{Yaw: 30, Pitch: 15}
}

// Rotation returns the view rotation.
func (v View) Rotation() mgl32.Mat3 {
	return mgl32.Rotate3DX(mgl32.DegToRad(v.Pitch)).Mul3(mgl32.Rotate3DY(mgl32.DegToRad(-v.Yaw)))
}

// projector maps view-space points into a square render target.
type projector struct {
	center  mgl32.Vec3
	scale   float32
	half    float32
	persp   bool
	camDist float32
	zCenter float32
}

// newProjector fits the view-space points into renderSize pixels less margin
// on each side.
func newProjector(points []mgl32.Vec3, v View, renderSize, margin int) projector {
	lo := mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi := mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, p := range points {
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], p[k])
			hi[k] = math32.Max(hi[k], p[k])
		}
	}
	p := projector{
		center: lo.Add(hi).Mul(0.5),
		half:   float32(renderSize) / 2,
		persp:  v.Perspective,
	}
	span := math32.Max(math32.Max(hi[0]-lo[0], hi[1]-lo[1]), 0.001)
	p.scale = float32(renderSize-2*margin) / span

	if p.persp {
		fov := v.FOV
		if fov == 0 {
			fov = DefaultFOV
		}
		p.zCenter = p.center[2]
		p.camDist = (span / 2) / math32.Tan(mgl32.DegToRad(fov/2))
	}
	return p
}

// project returns screen x, y (y down) and depth (larger is nearer).
func (p *projector) project(t mgl32.Vec3) (x, y, z float32) {
	dx, dy := t[0]-p.center[0], t[1]-p.center[1]
	if p.persp {
		depth := math32.Max(p.camDist-(t[2]-p.zCenter), 0.1)
		factor := p.camDist / depth
		dx *= factor
		dy *= factor
	}
	return p.half + dx*p.scale, p.half - dy*p.scale, t[2]
}
