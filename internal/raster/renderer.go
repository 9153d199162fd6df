// Package raster draws a flat-shaded software preview of imported geometry
// in its bind pose.
package raster

import (
	"image"

	"fbx-model-importer/internal/filter"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/texture"

	"github.com/go-gl/mathgl/mgl32"
)

var defaultColor = [4]uint8{160, 160, 170, 255}

// draw is one mesh part ready for rasterisation.
type draw struct {
	mesh    int
	indices []int
	surface Surface
}

// RenderGeometry renders every mesh part of g to a size×size NRGBA image.
// Collision hulls, lower levels of detail and proxies are left out.
// Drawing happens at size×supersample; the caller downsamples. texResolver
// may be nil, in which case parts are drawn in their material colour.
func RenderGeometry(g *geometry.Geometry, view View, texResolver texture.Resolver, size, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	renderSize := size * supersample
	if len(g.Meshes) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	}

	// view-space positions of every mesh
	rot := view.Rotation()
	viewPoints := make([][]mgl32.Vec3, len(g.Meshes))
	var all []mgl32.Vec3
	for i := range g.Meshes {
		if filter.IsHelperMesh(g.ModelNameOfMesh(i)) {
			continue
		}
		m := &g.Meshes[i]
		world := g.Offset.Mul4(m.ModelTransform)
		pts := make([]mgl32.Vec3, len(m.Vertices))
		for k, v := range m.Vertices {
			pts[k] = rot.Mul3x1(mathutil.TransformPoint(world, v))
		}
		viewPoints[i] = pts
		all = append(all, pts...)
	}
	if len(all) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	}
	proj := newProjector(all, view, renderSize, renderSize/16)

	var opaque, glow []draw
	for i := range g.Meshes {
		if viewPoints[i] == nil {
			continue
		}
		m := &g.Meshes[i]
		for _, part := range m.Parts {
			d := draw{mesh: i, surface: surfaceOf(g.Materials[part.MaterialID], texResolver, len(m.TexCoords) > 0)}
			d.indices = append(append(d.indices, part.QuadTrianglesIndices...), part.TriangleIndices...)
			if d.surface.Additive {
				glow = append(glow, d)
			} else {
				opaque = append(opaque, d)
			}
		}
	}

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()
	for _, d := range append(opaque, glow...) {
		m := &g.Meshes[d.mesh]
		pts := viewPoints[d.mesh]
		for k := 0; k+2 < len(d.indices); k += 3 {
			var tri [3]Vertex
			ok := true
			for c := 0; c < 3; c++ {
				vi := d.indices[k+c]
				if vi < 0 || vi >= len(pts) {
					ok = false
					break
				}
				x, y, z := proj.project(pts[vi])
				tri[c] = Vertex{X: x, Y: y, Z: z}
				if vi < len(m.TexCoords) {
					tri[c].UV = m.TexCoords[vi]
				}
			}
			if ok {
				RasterizeTriangle(fb, tri, &d.surface, &lc)
			}
		}
	}

	return fb.Image()
}

// surfaceOf derives the flat colour and texture of a part from its
// material. Unlit materials glow.
func surfaceOf(m *geometry.Material, texResolver texture.Resolver, hasUV bool) Surface {
	if m == nil {
		return Surface{Color: defaultColor}
	}
	s := Surface{
		Color: [4]uint8{
			unit(m.Albedo[0]), unit(m.Albedo[1]), unit(m.Albedo[2]),
			unit(m.FinalOpacity),
		},
		Additive: m.Unlit,
	}
	if texResolver == nil || m.AlbedoTexture.IsNull() {
		return s
	}
	name := m.AlbedoTexture.Filename
	if name == "" {
		name = m.AlbedoTexture.Name
	}
	tex := texResolver.Resolve(name)
	if tex == nil {
		return s
	}
	if !hasUV {
		r, g, b, _ := averageColor(tex)
		s.Color = [4]uint8{r, g, b, s.Color[3]}
		return s
	}
	s.Tex = tex
	return s
}

func unit(v float32) uint8 {
	return clamp255(mathutil.Clamp(v, 0, 1) * 255)
}

func averageColor(tex *image.NRGBA) (uint8, uint8, uint8, uint8) {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return defaultColor[0], defaultColor[1], defaultColor[2], defaultColor[3]
	}

	var sumR, sumG, sumB float32
	stride := tex.Stride
	for y := 0; y < h; y++ {
		off := y * stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float32(tex.Pix[i])
			sumG += float32(tex.Pix[i+1])
			sumB += float32(tex.Pix[i+2])
		}
	}
	n := float32(w * h)
	return uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), 255
}
