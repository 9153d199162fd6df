package material

import (
	"strings"

	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
)

// TextureParams are the optional sampling settings of a Texture object.
// Assigned is false when none were present.
type TextureParams struct {
	AlphaSource uint8
	BlendMode   uint8
	UseMaterial bool
	Cropping    [4]int
	UVSet       string
	Rotation    mgl32.Vec3
	UVTransform
	Assigned bool
}

// Library holds the texture tables of one document, keyed by texture ID,
// plus inlined Video content keyed by path and per-material UV transforms.
type Library struct {
	filepaths map[string]string
	filenames map[string]string
	names     map[string]string
	params    map[string]TextureParams
	content   map[string][]byte
	materials map[string]UVTransform
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		filepaths: map[string]string{},
		filenames: map[string]string{},
		names:     map[string]string{},
		params:    map[string]TextureParams{},
		content:   map[string][]byte{},
		materials: map[string]UVTransform{},
	}
}

// AddTexture records a Texture object.
func (l *Library) AddTexture(object fbx.Node) {
	id := fbx.ObjectID(object.Props(), 0)
	p := TextureParams{UVTransform: NewUVTransform()}
	for _, sub := range object.Children() {
		props := sub.Props()
		switch sub.Name() {
		case "RelativeFilename":
			if len(props) >= 1 {
				path := strings.ReplaceAll(props[0].String(), `\`, "/")
				l.filepaths[id] = path
				l.filenames[id] = path[strings.LastIndex(path, "/")+1:]
			}
		case "TextureName":
			if len(props) >= 1 {
				name := props[0].String()
				if i := strings.IndexByte(name, '['); i >= 0 {
					name = name[:i]
				}
				l.names[id] = name
			}
		case "Texture_Alpha_Source":
			if len(props) >= 1 {
				p.AlphaSource = uint8(props[0].Int())
				p.Assigned = true
			}
		case "ModelUVTranslation":
			if len(props) >= 2 {
				p.Translation = p.Translation.Add(mgl32.Vec3{float32(props[0].Float()), float32(props[1].Float()), 0})
				p.Assigned = true
			}
		case "ModelUVScaling":
			if len(props) >= 2 {
				s := mathutil.NonZeroScale(mgl32.Vec3{float32(props[0].Float()), float32(props[1].Float()), 1})
				p.Scaling = mathutil.MulComponents(p.Scaling, s)
				p.Assigned = true
			}
		case "Cropping":
			if len(props) >= 4 {
				for i := range p.Cropping {
					p.Cropping[i] = int(props[i].Int())
				}
				p.Assigned = true
			}
		}
	}
	decodeTextureProperties(object, &p)
	if p.Assigned {
		l.params[id] = p
	}
}

// decodeTextureProperties reads the Properties70 entries of a Texture object.
func decodeTextureProperties(object fbx.Node, p *TextureParams) {
	for _, a := range object.Attributes() {
		switch a.Name {
		case "UVSet":
			p.UVSet = a.Value(0).String()
		case "CurrentTextureBlendMode":
			p.BlendMode = uint8(a.Value(0).Int())
		case "UseMaterial":
			p.UseMaterial = a.Value(0).Int() != 0
		case "Translation":
			p.Translation = p.Translation.Add(mathutil.Vec3From(fbx.Triple(a.Values, 0)))
		case "Rotation":
			p.Rotation = mathutil.Vec3From(fbx.Triple(a.Values, 0))
		case "Scaling":
			s := mathutil.NonZeroScale(mathutil.Vec3From(fbx.Triple(a.Values, 0)))
			p.Scaling = mathutil.MulComponents(p.Scaling, s)
		default:
			continue
		}
		p.Assigned = true
	}
}

// AddVideo records the inlined content of a Video object. Videos without
// content are ignored.
func (l *Library) AddVideo(object fbx.Node) {
	var path string
	var content []byte
	for _, sub := range object.Children() {
		switch sub.Name() {
		case "RelativeFilename":
			path = strings.ReplaceAll(sub.Prop(0).String(), `\`, "/")
		case "Content":
			if sub.NumProps() > 0 {
				content = sub.Prop(0).Bytes()
			}
		}
	}
	if len(content) > 0 {
		l.content[path] = content
	}
}

// SetMaterialUV records the UV transform authored on a material.
func (l *Library) SetMaterialUV(materialID string, uv UVTransform) {
	l.materials[materialID] = uv
}

// HasTexture reports whether id names a Texture object with a file.
func (l *Library) HasTexture(id string) bool {
	_, ok := l.filenames[id]
	return ok
}

// Texture resolves a texture ID as used by materialID. Inlined content
// is looked up by the authored path; when present the path becomes the
// filename.
func (l *Library) Texture(textureID, materialID string) geometry.Texture {
	path := l.filepaths[textureID]
	t := geometry.Texture{
		ID:        textureID,
		Name:      l.names[textureID],
		Content:   l.content[path],
		Transform: mathutil.IdentityTransform(),
	}
	if len(t.Content) > 0 {
		t.Filename = path
	} else {
		t.Filename = l.filenames[textureID]
	}
	if p, ok := l.params[textureID]; ok {
		t.Transform.PostTranslate(p.Translation)
		t.Transform.PostScale(p.Scaling)
		if p.UVSet != "" && p.UVSet != "map1" {
			t.TexcoordSet = 1
		}
		t.TexcoordSetName = p.UVSet
	}
	if uv, ok := l.materials[materialID]; ok {
		t.Transform.PostTranslate(uv.Translation)
		t.Transform.PostScale(uv.Scaling)
	}
	return t
}

// Contents returns the inlined blobs keyed by path.
func (l *Library) Contents() map[string][]byte {
	return l.content
}

// MatchUVSet points a texture at the mesh attribute channel carrying its
// named UV set. Unnamed or unknown sets, and channels past the second, use
// the first channel.
func MatchUVSet(t *geometry.Texture, texcoordSets map[string]int) {
	t.TexcoordSet = 0
	if t.TexcoordSetName == "" {
		return
	}
	if set, ok := texcoordSets[t.TexcoordSetName]; ok && set < 2 {
		t.TexcoordSet = set
	}
}
