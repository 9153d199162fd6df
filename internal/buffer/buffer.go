// Package buffer packs an extracted mesh into the flat buffers a renderer
// uploads: positions, one block-laid attribute buffer and a 32-bit index
// buffer with a part table.
package buffer

import (
	"bytes"
	"encoding/binary"

	"fbx-model-importer/internal/geometry"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

var (
	ErrNoVertices = errors.New("buffer: mesh has no vertices")
	ErrNoIndices  = errors.New("buffer: mesh has no indices")
)

// Attribute names, in buffer order.
const (
	Normal         = "normal"
	Tangent        = "tangent"
	Color          = "color"
	TexCoord0      = "texcoord0"
	TexCoord1      = "texcoord1"
	ClusterIndices = "clusterIndices"
	ClusterWeights = "clusterWeights"
)

// Attribute locates one attribute block inside MeshBuffers.Attributes.
type Attribute struct {
	Name   string
	Offset int
	Size   int
	Stride int
}

// Topology of a part's indices.
type Topology int

const (
	Triangles Topology = iota
)

// Part is a contiguous run of the index buffer drawn with one material.
type Part struct {
	Offset     int // in indices
	Count      int
	Topology   Topology
	MaterialID string
}

// MeshBuffers is the packed form of one mesh.
type MeshBuffers struct {
	Positions  []byte // float32 x, y, z
	Attributes []byte
	Layout     []Attribute
	Indices    []uint32
	Parts      []Part
}

// Find returns the layout entry of the named attribute.
func (b *MeshBuffers) Find(name string) (Attribute, bool) {
	for _, a := range b.Layout {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

type builder struct {
	buf    bytes.Buffer
	layout []Attribute
}

// add appends one attribute block. Empty data adds nothing.
func (b *builder) add(name string, stride, count int, data any) {
	if count == 0 {
		return
	}
	offset := b.buf.Len()
	// writes to a bytes.Buffer cannot fail for fixed-size data
	_ = binary.Write(&b.buf, binary.LittleEndian, data)
	b.layout = append(b.layout, Attribute{Name: name, Offset: offset, Size: b.buf.Len() - offset, Stride: stride})
}

// Build packs m. Each part's quad triangles precede its triangles.
func Build(m geometry.Mesh) (*MeshBuffers, error) {
	if len(m.Vertices) == 0 {
		return nil, ErrNoVertices
	}
	out := &MeshBuffers{}

	var pos bytes.Buffer
	_ = binary.Write(&pos, binary.LittleEndian, m.Vertices)
	out.Positions = pos.Bytes()

	b := &builder{}
	b.add(Normal, 12, len(m.Normals), m.Normals)
	b.add(Tangent, 12, len(m.Tangents), m.Tangents)
	b.add(Color, 12, len(m.Colors), m.Colors)
	b.add(TexCoord0, 8, len(m.TexCoords), m.TexCoords)
	b.add(TexCoord1, 8, len(m.TexCoords1), m.TexCoords1)
	if len(m.Clusters) > 0 && len(m.ClusterIndices) > 0 {
		indices := make([][4]uint16, len(m.ClusterIndices))
		for i, ci := range m.ClusterIndices {
			for k, c := range ci {
				indices[i][k] = uint16(c)
			}
		}
		weights := make([][4]uint16, len(m.ClusterWeights))
		for i, cw := range m.ClusterWeights {
			weights[i] = packWeights(cw)
		}
		b.add(ClusterIndices, 8, len(indices), indices)
		b.add(ClusterWeights, 8, len(weights), weights)
	}
	out.Attributes = b.buf.Bytes()
	out.Layout = b.layout

	for _, p := range m.Parts {
		part := Part{Offset: len(out.Indices), Topology: Triangles, MaterialID: p.MaterialID}
		for _, i := range p.QuadTrianglesIndices {
			out.Indices = append(out.Indices, uint32(i))
		}
		for _, i := range p.TriangleIndices {
			out.Indices = append(out.Indices, uint32(i))
		}
		part.Count = len(out.Indices) - part.Offset
		out.Parts = append(out.Parts, part)
	}
	if len(out.Indices) == 0 {
		return nil, ErrNoIndices
	}
	return out, nil
}

const maxWeight = 65535

// packWeights converts weights to normalised uint16 so that the packed
// values still sum to 65535.
func packWeights(w [4]float32) [4]uint16 {
	var out [4]uint16
	var total float32
	for _, v := range w {
		total += v
	}
	if total <= 0 {
		out[0] = maxWeight
		return out
	}
	sum := 0
	for k, v := range w {
		out[k] = uint16(math32.Round(v / total * maxWeight))
		sum += int(out[k])
	}
	// rounding drift lands on the heaviest slot
	heaviest := 0
	for k := range out {
		if out[k] > out[heaviest] {
			heaviest = k
		}
	}
	out[heaviest] = uint16(int(out[heaviest]) + maxWeight - sum)
	return out
}
