// Package mesh turns Geometry nodes into deduplicated vertex buffers split
// into material parts.
package mesh

import (
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// Extracted is a mesh plus the bookkeeping needed to bind clusters,
// blendshapes and materials to it later.
type Extracted struct {
	ID   string
	Mesh geometry.Mesh

	// NewIndices maps a control point to every output vertex created from
	// it, in creation order.
	NewIndices map[int][]int

	// PartMaterialTextures holds the (material, texture) slot of each part.
	PartMaterialTextures [][2]int

	// TexcoordSetMap maps UV set names to attribute channels.
	TexcoordSetMap map[string]int

	// HasTexCoords is set when the node carried a UV layer. TexCoords is
	// filled with zeros either way.
	HasTexCoords bool

	Warnings int

	blendshapeIndexMaps []map[int]int
}

type vertexKey struct {
	original  int
	texCoord  mgl32.Vec2
	texCoord1 mgl32.Vec2
}

type assembler struct {
	out       *Extracted
	positions []mgl32.Vec3
	polygons  []int
	normals   channel[mgl32.Vec3]
	colors    channel[mgl32.Vec3]
	uvs       []uvSet
	seen      map[vertexKey]int
	dedup     bool
}

// Extract decodes a Geometry (or legacy Model) node. meshIndex is stored on
// the mesh as is.
func Extract(object fbx.Node, id string, meshIndex int, dedup bool, log logrus.FieldLogger) *Extracted {
	out := &Extracted{
		ID:             id,
		NewIndices:     map[int][]int{},
		TexcoordSetMap: map[string]int{},
	}
	out.Mesh.MeshIndex = meshIndex
	out.Mesh.ModelTransform = mgl32.Ident4()
	out.Mesh.MeshExtents = mathutil.NewExtents()

	a := &assembler{out: out, seen: map[vertexKey]int{}, dedup: dedup}
	var materials, textures []int
	for _, child := range object.Children() {
		switch child.Name() {
		case "Vertices":
			a.positions = mathutil.Vec3s(child.Float64s())
		case "PolygonVertexIndex":
			a.polygons = child.Ints()
		case "LayerElementNormal":
			a.normals = readNormals(child)
		case "LayerElementColor":
			a.colors = readColors(child)
		case "LayerElementUV":
			set := readUVs(child)
			if set.index == 0 {
				out.TexcoordSetMap[set.name] = len(a.uvs)
				a.uvs = append(a.uvs, set)
				continue
			}
			if prev, dup := out.TexcoordSetMap[set.name]; dup {
				log.WithFields(logrus.Fields{"id": id, "layer": set.index, "name": set.name}).
					Debugf("mesh: uv layer reuses the name of channel %d, skipped", prev)
				out.Warnings++
				continue
			}
			out.TexcoordSetMap[set.name] = len(a.uvs)
			a.uvs = append(a.uvs, set)
		case "LayerElementMaterial":
			materials = readMaterials(child)
		case "LayerElementTexture":
			textures = readTextureIDs(child)
		}
	}

	parts := map[[2]int]int{}
	polygon := 0
	for begin := 0; begin < len(a.polygons); polygon++ {
		end := begin
		for end < len(a.polygons) {
			last := a.polygons[end] < 0
			end++
			if last {
				break
			}
		}
		corners := end - begin
		if corners < 3 {
			log.WithFields(logrus.Fields{"id": id, "polygon": polygon, "corners": corners}).
				Warn("mesh: degenerate polygon skipped")
			out.Warnings++
			begin = end
			continue
		}

		key := [2]int{at(materials, polygon), at(textures, polygon)}
		pi, ok := parts[key]
		if !ok {
			pi = len(out.Mesh.Parts)
			parts[key] = pi
			out.PartMaterialTextures = append(out.PartMaterialTextures, key)
			out.Mesh.Parts = append(out.Mesh.Parts, geometry.MeshPart{})
		}
		part := &out.Mesh.Parts[pi]

		if corners == 4 {
			var q [4]int
			for k := range q {
				q[k] = a.appendCorner(begin + k)
			}
			part.QuadIndices = append(part.QuadIndices, q[0], q[1], q[2], q[3])
			part.QuadTrianglesIndices = append(part.QuadTrianglesIndices,
				q[0], q[1], q[3],
				q[1], q[2], q[3])
		} else {
			for next := begin + 1; next+1 < end; next++ {
				part.TriangleIndices = append(part.TriangleIndices,
					a.appendCorner(begin), a.appendCorner(next), a.appendCorner(next+1))
			}
		}
		begin = end
	}
	out.HasTexCoords = len(a.uvs) > 0
	return out
}

func at(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}

// appendCorner emits the output vertex for one corner of the index stream
// and returns its index.
func (a *assembler) appendCorner(corner int) int {
	vertex := a.polygons[corner]
	if vertex < 0 {
		vertex = -vertex - 1
	}
	key := vertexKey{original: vertex}
	if len(a.uvs) > 0 {
		key.texCoord, _ = a.uvs[0].at(vertex, corner)
	}
	hasUV1 := len(a.uvs) > 1
	if hasUV1 {
		key.texCoord1, _ = a.uvs[1].at(vertex, corner)
	}
	normal, _ := a.normals.at(vertex, corner)

	m := &a.out.Mesh
	if a.dedup {
		if idx, ok := a.seen[key]; ok {
			// shared corners accumulate, they are not renormalised
			m.Normals[idx] = m.Normals[idx].Add(normal)
			return idx
		}
	}

	idx := len(m.Vertices)
	a.seen[key] = idx
	a.out.NewIndices[vertex] = append(a.out.NewIndices[vertex], idx)

	var position mgl32.Vec3
	if vertex < len(a.positions) {
		position = a.positions[vertex]
	}
	m.Vertices = append(m.Vertices, position)
	m.OriginalIndices = append(m.OriginalIndices, vertex)
	m.Normals = append(m.Normals, normal)
	m.TexCoords = append(m.TexCoords, key.texCoord)
	if len(a.colors.values) > 0 {
		c, _ := a.colors.at(vertex, corner)
		m.Colors = append(m.Colors, c)
	}
	if hasUV1 {
		m.TexCoords1 = append(m.TexCoords1, key.texCoord1)
	}
	return idx
}
