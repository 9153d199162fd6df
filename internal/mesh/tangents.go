package mesh

import (
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// GenerateTangents fills m.Tangents, one per vertex, from the edges of
// every quad and triangle. The result is accumulated and left
// unnormalised. Meshes without texture coordinates are left alone.
func GenerateTangents(m *geometry.Mesh) {
	if len(m.TexCoords) == 0 {
		return
	}
	m.Tangents = make([]mgl32.Vec3, len(m.Vertices))
	for _, part := range m.Parts {
		q := part.QuadIndices
		for i := 0; i+3 < len(q); i += 4 {
			addTangent(m, q[i], q[i+1])
			addTangent(m, q[i+1], q[i+2])
			addTangent(m, q[i+2], q[i+3])
			addTangent(m, q[i+3], q[i])
		}
		t := part.TriangleIndices
		for i := 0; i+2 < len(t); i += 3 {
			addTangent(m, t[i], t[i+1])
			addTangent(m, t[i+1], t[i+2])
			addTangent(m, t[i+2], t[i])
		}
	}
}

func addTangent(m *geometry.Mesh, first, second int) {
	if first >= len(m.Normals) || first >= len(m.TexCoords) || second >= len(m.TexCoords) {
		return
	}
	normal := m.Normals[first]
	bitangent := normal.Cross(m.Vertices[second].Sub(m.Vertices[first]))
	if bitangent.Len() < mathutil.Epsilon || normal.Len() < mathutil.Epsilon {
		return
	}
	delta := m.TexCoords[second].Sub(m.TexCoords[first])
	n := normal.Normalize()
	spin := mgl32.QuatRotate(-math32.Atan2(-delta[1], delta[0]), n)
	m.Tangents[first] = m.Tangents[first].Add(spin.Rotate(bitangent.Normalize()).Cross(n))
}
