package raster

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a projected vertex: screen position, depth (larger is nearer)
// and texture coordinate.
type Vertex struct {
	X, Y, Z float32
	UV      mgl32.Vec2
}

// Surface is what a triangle is painted with. Tex may be nil, in which case
// Color is used flat.
type Surface struct {
	Tex      *image.NRGBA
	Color    [4]uint8
	Additive bool // glow: added onto the frame, no depth test
}

// triangle is the per-face setup shared by both blend modes.
type triangle struct {
	v                      [3]Vertex
	shade                  float32
	minX, maxX, minY, maxY int
	invDet                 float32
}

func setup(fb *FrameBuffer, v [3]Vertex, lc *LightConfig) (triangle, bool) {
	t := triangle{v: v}
	a := mgl32.Vec3{v[0].X, v[0].Y, v[0].Z}
	e1 := mgl32.Vec3{v[1].X, v[1].Y, v[1].Z}.Sub(a)
	e2 := mgl32.Vec3{v[2].X, v[2].Y, v[2].Z}.Sub(a)
	n := e1.Cross(e2)
	if n.Len() < 1e-8 {
		return t, false
	}
	t.shade = lc.ComputeShade(n.Normalize())

	size := fb.Width
	t.minX = max(int(math32.Min(math32.Min(v[0].X, v[1].X), v[2].X)), 0)
	t.maxX = min(int(math32.Max(math32.Max(v[0].X, v[1].X), v[2].X))+1, size-1)
	t.minY = max(int(math32.Min(math32.Min(v[0].Y, v[1].Y), v[2].Y)), 0)
	t.maxY = min(int(math32.Max(math32.Max(v[0].Y, v[1].Y), v[2].Y))+1, fb.Height-1)
	if t.minX >= t.maxX || t.minY >= t.maxY {
		return t, false
	}

	det := (v[1].Y-v[2].Y)*(v[0].X-v[2].X) + (v[2].X-v[1].X)*(v[0].Y-v[2].Y)
	if det > -1e-8 && det < 1e-8 {
		return t, false
	}
	t.invDet = 1 / det
	return t, true
}

// weights returns the barycentric weights of pixel (sx, sy), or false when
// the pixel lies outside.
func (t *triangle) weights(sx, sy int) (w0, w1, w2 float32, ok bool) {
	v := &t.v
	dsx := float32(sx) - v[2].X
	dsy := float32(sy) - v[2].Y
	w0 = ((v[1].Y-v[2].Y)*dsx + (v[2].X-v[1].X)*dsy) * t.invDet
	w1 = ((v[2].Y-v[0].Y)*dsx + (v[0].X-v[2].X)*dsy) * t.invDet
	w2 = 1 - w0 - w1
	return w0, w1, w2, w0 >= -0.001 && w1 >= -0.001 && w2 >= -0.001
}

func (t *triangle) texel(s *Surface, w0, w1, w2 float32) (r, g, b, a uint8) {
	if s.Tex == nil {
		return s.Color[0], s.Color[1], s.Color[2], s.Color[3]
	}
	uv := t.v[0].UV.Mul(w0).Add(t.v[1].UV.Mul(w1)).Add(t.v[2].UV.Mul(w2))
	r, g, b, a = SampleTexture(s.Tex, uv[0], uv[1])
	// modulate by the flat colour
	r = uint8(uint16(r) * uint16(s.Color[0]) / 255)
	g = uint8(uint16(g) * uint16(s.Color[1]) / 255)
	b = uint8(uint16(b) * uint16(s.Color[2]) / 255)
	return r, g, b, a
}

// lit shades one sRGB channel value and returns it in sRGB, scaled to 255.
func lit(c uint8, shade float32, lc *LightConfig) float32 {
	return math32.Pow(ACESTonemap(srgbToLinear[c]*shade*lc.Exposure), lc.InvGamma) * 255
}

// RasterizeTriangle rasterizes one flat-shaded triangle with z-buffer,
// sRGB-correct lighting and ACES tone mapping. The inner loop does not
// allocate.
func RasterizeTriangle(fb *FrameBuffer, v [3]Vertex, s *Surface, lc *LightConfig) {
	t, ok := setup(fb, v, lc)
	if !ok {
		return
	}
	for sy := t.minY; sy <= t.maxY; sy++ {
		rowOff := sy * fb.Width
		for sx := t.minX; sx <= t.maxX; sx++ {
			w0, w1, w2, inside := t.weights(sx, sy)
			if !inside {
				continue
			}
			zIdx := rowOff + sx
			z := w0*v[0].Z + w1*v[1].Z + w2*v[2].Z
			if !s.Additive && z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := t.texel(s, w0, w1, w2)
			// skip transparent texels
			if ca < 8 {
				continue
			}
			fr, fg, fb2 := lit(cr, t.shade, lc), lit(cg, t.shade, lc), lit(cb, t.shade, lc)

			px := zIdx * 4
			if s.Additive {
				fb.Color[px] = clamp255(float32(fb.Color[px]) + fr)
				fb.Color[px+1] = clamp255(float32(fb.Color[px+1]) + fg)
				fb.Color[px+2] = clamp255(float32(fb.Color[px+2]) + fb2)
				// dark glow stays transparent
				if a := clamp255(fr*0.299 + fg*0.587 + fb2*0.114); a > fb.Color[px+3] {
					fb.Color[px+3] = a
				}
				continue
			}
			fb.ZBuf[zIdx] = z
			fb.Color[px] = clamp255(fr)
			fb.Color[px+1] = clamp255(fg)
			fb.Color[px+2] = clamp255(fb2)
			fb.Color[px+3] = ca
		}
	}
}

func clamp255(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
