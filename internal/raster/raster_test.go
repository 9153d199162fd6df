package raster

import (
	"image"
	"image/color"
	"testing"

	"fbx-model-importer/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadGeometry(materialID string, mat *geometry.Material) *geometry.Geometry {
	g := &geometry.Geometry{
		Offset:    mgl32.Ident4(),
		Materials: map[string]*geometry.Material{},
	}
	if mat != nil {
		g.Materials[materialID] = mat
	}
	g.Meshes = []geometry.Mesh{{
		Vertices:       []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		TexCoords:      []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		ModelTransform: mgl32.Ident4(),
		Parts: []geometry.MeshPart{{
			QuadIndices:          []int{0, 1, 2, 3},
			QuadTrianglesIndices: []int{0, 1, 3, 1, 2, 3},
			MaterialID:           materialID,
		}},
	}}
	return g
}

type solid struct{ img *image.NRGBA }

func (s solid) Resolve(string) *image.NRGBA { return s.img }

func TestRenderQuadCoversCentre(t *testing.T) {
	img := RenderGeometry(quadGeometry("none", nil), DefaultView(), nil, 32, 2)
	require.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())

	c := img.NRGBAAt(32, 32)
	assert.EqualValues(t, 255, c.A)
	assert.NotZero(t, c.R)
	// corners stay clear of the margin
	assert.Zero(t, img.NRGBAAt(0, 0).A)

	opaque := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			opaque++
		}
	}
	assert.Greater(t, opaque, 1000)
}

func TestRenderTexturedMaterial(t *testing.T) {
	red := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			red.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	mat := &geometry.Material{
		Albedo:        mgl32.Vec3{1, 1, 1},
		FinalOpacity:  1,
		AlbedoTexture: geometry.Texture{Filename: "red.png"},
	}
	img := RenderGeometry(quadGeometry("m", mat), View{}, solid{red}, 16, 1)

	c := img.NRGBAAt(8, 8)
	assert.EqualValues(t, 255, c.A)
	assert.NotZero(t, c.R)
	assert.Zero(t, c.G)
	assert.Zero(t, c.B)
}

func TestRenderUnlitGlows(t *testing.T) {
	mat := &geometry.Material{Albedo: mgl32.Vec3{1, 1, 1}, FinalOpacity: 1, Unlit: true}
	s := surfaceOf(mat, nil, true)
	assert.True(t, s.Additive)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, s.Color)

	img := RenderGeometry(quadGeometry("m", mat), View{}, nil, 16, 1)
	assert.NotZero(t, img.NRGBAAt(8, 8).A)
}

func TestRenderEmpty(t *testing.T) {
	img := RenderGeometry(&geometry.Geometry{}, DefaultView(), nil, 10, 3)
	assert.Equal(t, image.Rect(0, 0, 30, 30), img.Bounds())
	for _, v := range img.Pix {
		require.Zero(t, v)
	}
}

func TestAverageColorWithoutUVs(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, A: 255})
	tex.SetNRGBA(1, 0, color.NRGBA{R: 100, G: 0, B: 50, A: 255})
	mat := &geometry.Material{
		Albedo:        mgl32.Vec3{1, 1, 1},
		FinalOpacity:  1,
		AlbedoTexture: geometry.Texture{Name: "t"},
	}
	s := surfaceOf(mat, solid{tex}, false)
	assert.Nil(t, s.Tex)
	assert.Equal(t, [4]uint8{150, 50, 25, 255}, s.Color)
}

func TestProjectorFitsBounds(t *testing.T) {
	pts := []mgl32.Vec3{{-2, -1, 0}, {2, 1, 0}}
	p := newProjector(pts, View{}, 100, 10)
	x, y, _ := p.project(mgl32.Vec3{-2, 1, 0})
	assert.InDelta(t, 10, x, 1e-4)
	assert.InDelta(t, 30, y, 1e-4)
	x, y, _ = p.project(mgl32.Vec3{0, 0, 0})
	assert.InDelta(t, 50, x, 1e-4)
	assert.InDelta(t, 50, y, 1e-4)
}

func TestRenderSkipsCollisionHulls(t *testing.T) {
	g := quadGeometry("none", nil)
	g.MeshIndicesToModelNames = map[int]string{0: "UCX_Body"}
	img := RenderGeometry(g, DefaultView(), nil, 16, 1)
	for _, v := range img.Pix {
		require.Zero(t, v)
	}
}

func TestSampleTextureWraps(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{R: 0, A: 255})
	tex.SetNRGBA(1, 0, color.NRGBA{R: 200, A: 255})

	r, _, _, a := SampleTexture(tex, 0, 0)
	assert.EqualValues(t, 0, r)
	assert.EqualValues(t, 255, a)
	r, _, _, _ = SampleTexture(tex, 0.5, 0)
	assert.EqualValues(t, 100, r)
	r, _, _, _ = SampleTexture(tex, -1.5, 3)
	assert.EqualValues(t, 100, r)
	r, _, _, _ = SampleTexture(tex, 2, 0)
	assert.EqualValues(t, 0, r)
}
