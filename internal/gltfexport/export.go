// Package gltfexport writes imported geometry as glTF 2.0 for viewing in
// standard tools.
package gltfexport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func float(v float32) *float32 { return &v }

type exporter struct {
	doc       *gltf.Document
	materials map[string]uint32
	images    map[string]uint32
}

// Export converts g into a glTF document: one mesh per geometry mesh, one
// primitive per part, plus the joint hierarchy as plain nodes.
func Export(g *geometry.Geometry) (*gltf.Document, error) {
	if g.IsEmpty() {
		return nil, errors.New("gltfexport: geometry is empty")
	}
	e := &exporter{doc: gltf.NewDocument(), materials: map[string]uint32{}, images: map[string]uint32{}}

	for i := range g.Meshes {
		if err := e.mesh(g, &g.Meshes[i]); err != nil {
			return nil, errors.Wrapf(err, "gltfexport: mesh %d", i)
		}
	}
	e.joints(g)
	return e.doc, nil
}

// WriteGLB exports g as a binary glTF to w.
func WriteGLB(w io.Writer, g *geometry.Geometry) error {
	doc, err := Export(g)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return errors.Wrap(enc.Encode(doc), "gltfexport: encode")
}

func vec3s(v []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(v))
	for i := range v {
		out[i] = v[i]
	}
	return out
}

func (e *exporter) mesh(g *geometry.Geometry, m *geometry.Mesh) error {
	doc := e.doc
	n := len(m.Vertices)
	if n == 0 {
		return errors.New("no vertices")
	}
	attrs := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, vec3s(m.Vertices)),
	}
	if len(m.Normals) == n {
		normals := make([][3]float32, n)
		for i, v := range m.Normals {
			if v.Len() > mathutil.Epsilon {
				v = v.Normalize()
			}
			normals[i] = v
		}
		attrs["NORMAL"] = modeler.WriteNormal(doc, normals)
	}
	if len(m.Tangents) == n {
		tangents := make([][4]float32, n)
		for i, v := range m.Tangents {
			if v.Len() > mathutil.Epsilon {
				v = v.Normalize()
			}
			tangents[i] = [4]float32{v[0], v[1], v[2], 1}
		}
		attrs["TANGENT"] = modeler.WriteTangent(doc, tangents)
	}
	for set, uvs := range [][]mgl32.Vec2{m.TexCoords, m.TexCoords1} {
		if len(uvs) != n {
			continue
		}
		out := make([][2]float32, n)
		for i, uv := range uvs {
			out[i] = uv
		}
		attrs[fmt.Sprintf("TEXCOORD_%d", set)] = modeler.WriteTextureCoord(doc, out)
	}
	if len(m.Colors) == n {
		colors := make([][4]uint8, n)
		for i, c := range m.Colors {
			colors[i] = [4]uint8{unit8(c[0]), unit8(c[1]), unit8(c[2]), 255}
		}
		attrs["COLOR_0"] = modeler.WriteColor(doc, colors)
	}

	gm := &gltf.Mesh{Name: fmt.Sprintf("mesh%d", m.MeshIndex)}
	for _, part := range m.Parts {
		indices := make([]uint32, 0, len(part.QuadTrianglesIndices)+len(part.TriangleIndices))
		for _, i := range part.QuadTrianglesIndices {
			indices = append(indices, uint32(i))
		}
		for _, i := range part.TriangleIndices {
			indices = append(indices, uint32(i))
		}
		if len(indices) == 0 {
			continue
		}
		p := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: attrs,
		}
		if mat, ok := g.Materials[part.MaterialID]; ok {
			idx, err := e.material(mat)
			if err != nil {
				return err
			}
			p.Material = gltf.Index(idx)
		}
		gm.Primitives = append(gm.Primitives, p)
	}
	if len(gm.Primitives) == 0 {
		return errors.New("no indices")
	}

	if name := g.ModelNameOfMesh(m.MeshIndex); name != "" {
		gm.Name = name
	}
	doc.Meshes = append(doc.Meshes, gm)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:   gm.Name,
		Mesh:   gltf.Index(uint32(len(doc.Meshes) - 1)),
		Matrix: [16]float32(g.Offset.Mul4(m.ModelTransform)),
	})
	return nil
}

func unit8(v float32) uint8 {
	return uint8(mathutil.Clamp(v, 0, 1)*255 + 0.5)
}

func (e *exporter) material(m *geometry.Material) (uint32, error) {
	if idx, ok := e.materials[m.ID]; ok {
		return idx, nil
	}
	gm := &gltf.Material{
		Name:        m.Name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{m.Albedo[0], m.Albedo[1], m.Albedo[2], m.FinalOpacity},
			MetallicFactor:  float(m.FinalMetallic),
			RoughnessFactor: float(m.FinalRough),
		},
		EmissiveFactor: [3]float32(m.Emissive),
	}
	if m.FinalOpacity < 1 {
		gm.AlphaMode = gltf.AlphaBlend
	}
	if tex, ok, err := e.texture(m.AlbedoTexture); err != nil {
		return 0, err
	} else if ok {
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: tex}
	}

	idx := uint32(len(e.doc.Materials))
	e.doc.Materials = append(e.doc.Materials, gm)
	e.materials[m.ID] = idx
	return idx, nil
}

// texture embeds inlined texture content; file references are left to the
// caller, which has the document's directory.
func (e *exporter) texture(t geometry.Texture) (uint32, bool, error) {
	if len(t.Content) == 0 {
		return 0, false, nil
	}
	img, ok := e.images[t.Filename]
	if !ok {
		var err error
		img, err = modeler.WriteImage(e.doc, t.Filename, http.DetectContentType(t.Content), bytes.NewReader(t.Content))
		if err != nil {
			return 0, false, errors.Wrapf(err, "image %s", t.Filename)
		}
		e.images[t.Filename] = img
	}
	e.doc.Textures = append(e.doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
	return uint32(len(e.doc.Textures) - 1), true, nil
}

// joints adds the skeleton as a node tree with local transforms.
func (e *exporter) joints(g *geometry.Geometry) {
	doc := e.doc
	base := uint32(len(doc.Nodes))
	for i, j := range g.Joints {
		local := j.Transform
		if j.ParentIndex >= 0 {
			local = g.Joints[j.ParentIndex].Transform.Inv().Mul4(j.Transform)
		}
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: j.Name, Matrix: [16]float32(local)})
		if j.ParentIndex >= 0 {
			parent := doc.Nodes[base+uint32(j.ParentIndex)]
			parent.Children = append(parent.Children, base+uint32(i))
		} else {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, base+uint32(i))
		}
	}
}
