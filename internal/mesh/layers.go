package mesh

import (
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	byVertice     = "ByVertice"
	indexToDirect = "IndexToDirect"
)

// channel is one per-vertex or per-corner attribute stream, optionally
// indirected through an index array.
type channel[T any] struct {
	byVertex bool
	values   []T
	indices  []int
}

// at resolves the value for a corner. vertex is the control point index,
// corner the position in the polygon index stream.
func (c *channel[T]) at(vertex, corner int) (T, bool) {
	var zero T
	i := corner
	if c.byVertex {
		i = vertex
	}
	if len(c.indices) > 0 {
		if i >= len(c.indices) {
			return zero, false
		}
		i = c.indices[i]
	}
	if i < 0 || i >= len(c.values) {
		return zero, false
	}
	return c.values[i], true
}

// uvSet is one LayerElementUV block.
type uvSet struct {
	index int
	name  string
	channel[mgl32.Vec2]
}

func readNormals(n fbx.Node) channel[mgl32.Vec3] {
	var c channel[mgl32.Vec3]
	direct := false
	for _, sub := range n.Children() {
		switch sub.Name() {
		case "Normals":
			c.values = mathutil.Vec3s(sub.Float64s())
		case "NormalsIndex":
			c.indices = sub.Ints()
		case "MappingInformationType":
			c.byVertex = sub.Prop(0).String() == byVertice
		case "ReferenceInformationType":
			direct = sub.Prop(0).String() == indexToDirect
		}
	}
	// Some exporters declare IndexToDirect without writing the index array;
	// their values are laid out per control point.
	if direct && len(c.indices) == 0 {
		c.byVertex = true
	}
	return c
}

func readColors(n fbx.Node) channel[mgl32.Vec3] {
	var c channel[mgl32.Vec3]
	direct := false
	for _, sub := range n.Children() {
		switch sub.Name() {
		case "Colors":
			c.values, _ = mathutil.ColorsRGBA(sub.Float64s())
		case "ColorsIndex", "ColorIndex":
			c.indices = sub.Ints()
		case "MappingInformationType":
			c.byVertex = sub.Prop(0).String() == byVertice
		case "ReferenceInformationType":
			direct = sub.Prop(0).String() == indexToDirect
		}
	}
	if direct && len(c.indices) == 0 {
		c.byVertex = true
	}
	return c
}

func readUVs(n fbx.Node) uvSet {
	set := uvSet{index: int(n.Prop(0).Int())}
	for _, sub := range n.Children() {
		switch sub.Name() {
		case "UV":
			set.values = mathutil.Vec2sFlipV(sub.Float64s())
		case "UVIndex":
			set.indices = sub.Ints()
		case "Name":
			set.name = sub.Prop(0).String()
		case "MappingInformationType":
			set.byVertex = sub.Prop(0).String() == byVertice
		}
	}
	return set
}

func readMaterials(n fbx.Node) []int {
	return n.Child("Materials").Ints()
}

func readTextureIDs(n fbx.Node) []int {
	return n.Child("TextureId").Ints()
}

func at3(values []mgl32.Vec3, i int) mgl32.Vec3 {
	if i < len(values) {
		return values[i]
	}
	return mgl32.Vec3{}
}
