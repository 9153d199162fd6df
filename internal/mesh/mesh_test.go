package mesh

import (
	"io"
	"testing"

	"fbx-model-importer/internal/fbx"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func geometryNode(t *testing.T, children ...*fbx.Element) fbx.Node {
	t.Helper()
	tree := fbx.Build(fbx.NewElement("Geometry", fbx.Int64(100), fbx.String("Geometry::test"), fbx.String("Mesh")).Add(children...))
	n := tree.Root().Child("Geometry")
	require.True(t, n.Valid())
	return n
}

func vertices(v ...float64) *fbx.Element {
	return fbx.NewElement("Vertices", fbx.Float64Array(v))
}

func polygons(p ...int32) *fbx.Element {
	return fbx.NewElement("PolygonVertexIndex", fbx.Int32Array(p))
}

func normalsLayer(mapping string, n ...float64) *fbx.Element {
	return fbx.NewElement("LayerElementNormal", fbx.Int32(0)).Add(
		fbx.NewElement("MappingInformationType", fbx.String(mapping)),
		fbx.NewElement("ReferenceInformationType", fbx.String("Direct")),
		fbx.NewElement("Normals", fbx.Float64Array(n)),
	)
}

func uvLayer(index int32, name string, uv []float64, uvIndex []int32) *fbx.Element {
	e := fbx.NewElement("LayerElementUV", fbx.Int32(index)).Add(
		fbx.NewElement("Name", fbx.String(name)),
		fbx.NewElement("MappingInformationType", fbx.String("ByPolygonVertex")),
		fbx.NewElement("UV", fbx.Float64Array(uv)),
	)
	if uvIndex != nil {
		e.Add(
			fbx.NewElement("ReferenceInformationType", fbx.String("IndexToDirect")),
			fbx.NewElement("UVIndex", fbx.Int32Array(uvIndex)),
		)
	}
	return e
}

func TestQuadSplitsOnFixedDiagonalWithTangents(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0),
		polygons(0, 1, 2, -4),
		normalsLayer("ByPolygonVertex", 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1),
		uvLayer(0, "map1", []float64{0, 0, 1, 0, 1, 1, 0, 1}, []int32{0, 1, 2, 3}),
	)
	ex := Extract(n, "100", 0, true, quietLog())
	m := &ex.Mesh
	assert.True(t, ex.HasTexCoords)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, m.Parts[0].QuadIndices)
	assert.Equal(t, []int{0, 1, 3, 1, 2, 3}, m.Parts[0].QuadTrianglesIndices)
	assert.Empty(t, m.Parts[0].TriangleIndices)
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, mgl32.Vec2{1, -1}, m.TexCoords[2])

	GenerateTangents(m)
	require.Len(t, m.Tangents, len(m.Vertices))
	for i, tan := range m.Tangents {
		assert.InDelta(t, 1, tan[0], 1e-5, "vertex %d", i)
		assert.InDelta(t, 0, tan[1], 1e-5, "vertex %d", i)
		assert.InDelta(t, 0, tan[2], 1e-5, "vertex %d", i)
	}
}

func TestTrianglesShareVerticesAndAccumulateNormals(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0),
		polygons(0, 1, -3, 1, 2, -4),
		normalsLayer("ByPolygonVertex", 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1),
	)
	ex := Extract(n, "100", 3, true, quietLog())
	m := ex.Mesh
	assert.Equal(t, 3, m.MeshIndex)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, []int{0, 1, 2, 1, 2, 3}, m.Parts[0].TriangleIndices)
	assert.Len(t, m.Vertices, 4)
	assert.Equal(t, mgl32.Vec3{0, 0, 2}, m.Normals[1])
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Normals[0])
	assert.Equal(t, []int{0, 1, 2, 3}, m.OriginalIndices)
	assert.Empty(t, m.Colors)
	assert.Empty(t, m.TexCoords1)
	assert.False(t, ex.HasTexCoords)
	assert.Len(t, m.TexCoords, 4)
}

func TestSingleColorLayerIsKept(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 1, 1, 0),
		polygons(0, 1, -3),
		fbx.NewElement("LayerElementColor", fbx.Int32(0)).Add(
			fbx.NewElement("MappingInformationType", fbx.String("ByPolygonVertex")),
			fbx.NewElement("ReferenceInformationType", fbx.String("IndexToDirect")),
			fbx.NewElement("Colors", fbx.Float64Array([]float64{1, 0.5, 0, 1})),
			fbx.NewElement("ColorIndex", fbx.Int32Array([]int32{0, 0, 0})),
		),
	)
	ex := Extract(n, "100", 0, true, quietLog())
	require.Len(t, ex.Mesh.Colors, 3)
	for _, c := range ex.Mesh.Colors {
		assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, c)
	}
}

func TestDeduplicationOff(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0),
		polygons(0, 1, -3, 1, 2, -4),
	)
	ex := Extract(n, "100", 0, false, quietLog())
	assert.Len(t, ex.Mesh.Vertices, 6)
	assert.Equal(t, []int{1, 3}, ex.NewIndices[1])
}

func TestFanTriangulation(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 2, 1, 0, 1, 2, 0, 0, 1, 0),
		polygons(0, 1, 2, 3, -5),
	)
	ex := Extract(n, "100", 0, true, quietLog())
	assert.Equal(t, []int{0, 1, 2, 0, 2, 3, 0, 3, 4}, ex.Mesh.Parts[0].TriangleIndices)
}

func TestPartsAllocatedPerMaterialTexturePair(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0),
		polygons(0, 1, -3, 1, 2, -4, 0, 2, -4),
		fbx.NewElement("LayerElementMaterial", fbx.Int32(0)).Add(
			fbx.NewElement("MappingInformationType", fbx.String("ByPolygon")),
			fbx.NewElement("Materials", fbx.Int32Array([]int32{1, 0, 1})),
		),
	)
	ex := Extract(n, "100", 0, true, quietLog())
	require.Len(t, ex.Mesh.Parts, 2)
	assert.Equal(t, [][2]int{{1, 0}, {0, 0}}, ex.PartMaterialTextures)
	assert.Len(t, ex.Mesh.Parts[0].TriangleIndices, 6)
	assert.Len(t, ex.Mesh.Parts[1].TriangleIndices, 3)
}

func TestDegeneratePolygonSkipped(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 0, 1, 0),
		polygons(0, -2, 0, 1, -3),
	)
	ex := Extract(n, "100", 0, true, quietLog())
	assert.Equal(t, 1, ex.Warnings)
	require.Len(t, ex.Mesh.Parts, 1)
	assert.Equal(t, 1, ex.Mesh.TriangleCount())
}

func TestSecondUVSetAndDuplicateName(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 0, 1, 0),
		polygons(0, 1, -3),
		uvLayer(0, "map1", []float64{0, 0, 1, 0, 0, 1}, nil),
		uvLayer(1, "lightmap", []float64{0.5, 0.5, 1, 0.5, 0.5, 1}, nil),
		uvLayer(2, "lightmap", []float64{9, 9, 9, 9, 9, 9}, nil),
	)
	ex := Extract(n, "100", 0, true, quietLog())
	assert.Equal(t, map[string]int{"map1": 0, "lightmap": 1}, ex.TexcoordSetMap)
	assert.Equal(t, 1, ex.Warnings)
	require.Len(t, ex.Mesh.TexCoords1, 3)
	assert.Equal(t, mgl32.Vec2{1, -0.5}, ex.Mesh.TexCoords1[1])
}

func TestDeduplicationIdempotent(t *testing.T) {
	// two triangles sharing an edge, split by a UV seam at vertex 2
	first := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0),
		polygons(0, 1, -3, 0, 2, -4),
		uvLayer(0, "map1", []float64{0, 0, 1, 0, 1, 1, 0, 0, 0.5, 0.5, 0, 1}, nil),
	)
	a := Extract(first, "100", 0, true, quietLog())
	require.Len(t, a.Mesh.Vertices, 5)

	var pos, uv []float64
	for i, v := range a.Mesh.Vertices {
		pos = append(pos, float64(v[0]), float64(v[1]), float64(v[2]))
		tc := a.Mesh.TexCoords[i]
		uv = append(uv, float64(tc[0]), -float64(tc[1]))
	}
	var poly []int32
	tris := a.Mesh.Parts[0].TriangleIndices
	for i := 0; i < len(tris); i += 3 {
		poly = append(poly, int32(tris[i]), int32(tris[i+1]), -int32(tris[i+2])-1)
	}
	second := geometryNode(t,
		fbx.NewElement("Vertices", fbx.Float64Array(pos)),
		fbx.NewElement("PolygonVertexIndex", fbx.Int32Array(poly)),
		fbx.NewElement("LayerElementUV", fbx.Int32(0)).Add(
			fbx.NewElement("MappingInformationType", fbx.String("ByVertice")),
			fbx.NewElement("UV", fbx.Float64Array(uv)),
		),
	)
	b := Extract(second, "100", 0, true, quietLog())
	assert.Len(t, b.Mesh.Vertices, len(a.Mesh.Vertices))
	assert.Equal(t, a.Mesh.TriangleCount(), b.Mesh.TriangleCount())
}

func TestAddBlendshapesExpandsAndAccumulates(t *testing.T) {
	n := geometryNode(t,
		vertices(0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0),
		polygons(0, 1, -3, 1, 3, -3),
		uvLayer(0, "map1", []float64{0, 0, 1, 0, 0, 1, 0.2, 0, 1, 1, 0, 1}, nil),
	)
	ex := Extract(n, "100", 0, true, quietLog())
	require.Len(t, ex.NewIndices[1], 2)

	shapeTree := fbx.Build(fbx.NewElement("Geometry", fbx.Int64(7), fbx.String("Shape"), fbx.String("Shape")).Add(
		fbx.NewElement("Indexes", fbx.Int32Array([]int32{1})),
		fbx.NewElement("Vertices", fbx.Float64Array([]float64{0, 0, 1})),
		fbx.NewElement("Normals", fbx.Float64Array([]float64{0, 1, 0})),
	))
	shape := ExtractBlendshape(shapeTree.Root().Child("Geometry"))
	assert.Equal(t, []int{1}, shape.Indices)

	ex.AddBlendshapes(shape, []WeightedIndex{{Index: 2, Weight: 0.5}})
	require.Len(t, ex.Mesh.Blendshapes, 3)
	bs := ex.Mesh.Blendshapes[2]
	assert.Equal(t, ex.NewIndices[1], bs.Indices)
	assert.Equal(t, mgl32.Vec3{0, 0, 0.5}, bs.Vertices[0])

	ex.AddBlendshapes(shape, []WeightedIndex{{Index: 2, Weight: 0.5}})
	bs = ex.Mesh.Blendshapes[2]
	assert.Len(t, bs.Indices, 2)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, bs.Vertices[1])
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, bs.Normals[1])
	assert.Empty(t, ex.Mesh.Blendshapes[0].Indices)
}
