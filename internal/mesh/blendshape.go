package mesh

import (
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"
)

// WeightedIndex routes a shape into blendshape slot Index of a mesh,
// scaled by Weight.
type WeightedIndex struct {
	Index  int
	Weight float32
}

// ExtractBlendshape reads a Shape geometry: Indexes, Vertices, Normals, all
// expressed against control points.
func ExtractBlendshape(object fbx.Node) geometry.Blendshape {
	var b geometry.Blendshape
	for _, child := range object.Children() {
		switch child.Name() {
		case "Indexes":
			b.Indices = child.Ints()
		case "Vertices":
			b.Vertices = mathutil.Vec3s(child.Float64s())
		case "Normals":
			b.Normals = mathutil.Vec3s(child.Float64s())
		}
	}
	return b
}

// AddBlendshapes merges shape into every slot listed in targets. Control
// point indices are expanded through NewIndices; deltas landing on the same
// output vertex add up.
func (e *Extracted) AddBlendshapes(shape geometry.Blendshape, targets []WeightedIndex) {
	for _, target := range targets {
		if target.Index < 0 {
			continue
		}
		for len(e.Mesh.Blendshapes) <= target.Index {
			e.Mesh.Blendshapes = append(e.Mesh.Blendshapes, geometry.Blendshape{})
		}
		for len(e.blendshapeIndexMaps) < len(e.Mesh.Blendshapes) {
			e.blendshapeIndexMaps = append(e.blendshapeIndexMaps, map[int]int{})
		}
		dst := &e.Mesh.Blendshapes[target.Index]
		slots := e.blendshapeIndexMaps[target.Index]

		for i, old := range shape.Indices {
			vertex := at3(shape.Vertices, i).Mul(target.Weight)
			normal := at3(shape.Normals, i).Mul(target.Weight)
			for _, idx := range e.NewIndices[old] {
				if slot, ok := slots[idx]; ok {
					dst.Vertices[slot] = dst.Vertices[slot].Add(vertex)
					dst.Normals[slot] = dst.Normals[slot].Add(normal)
					continue
				}
				slots[idx] = len(dst.Indices)
				dst.Indices = append(dst.Indices, idx)
				dst.Vertices = append(dst.Vertices, vertex)
				dst.Normals = append(dst.Normals, normal)
			}
		}
	}
}
