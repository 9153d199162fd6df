// Package material decodes Material, Texture and Video objects and folds
// their texture-channel connections into finished materials.
package material

import (
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
)

// UVTransform is a texture-coordinate offset and scale. Materials carry one
// from Maya's uv_offset/uv_scale, textures from their own properties.
type UVTransform struct {
	Translation mgl32.Vec3
	Scaling     mgl32.Vec3
}

// NewUVTransform returns a transform that changes nothing.
func NewUVTransform() UVTransform {
	return UVTransform{Scaling: mgl32.Vec3{1, 1, 1}}
}

// NewMaterial returns a material with the authoring-tool defaults used when a
// property is absent.
func NewMaterial(id, name string) *geometry.Material {
	return &geometry.Material{
		ID:                id,
		Name:              name,
		DiffuseColor:      mgl32.Vec3{1, 1, 1},
		DiffuseFactor:     1,
		SpecularColor:     mgl32.Vec3{0.02, 0.02, 0.02},
		SpecularFactor:    1,
		Shininess:         23,
		Opacity:           1,
		Roughness:         1,
		EmissiveIntensity: 1,
		AmbientFactor:     1,
	}
}

// DecodeMaterial reads a Material object.
func DecodeMaterial(object fbx.Node) (*geometry.Material, UVTransform) {
	props := object.Props()
	m := NewMaterial(fbx.ObjectID(props, 0), fbx.MaterialName(props))
	uv := NewUVTransform()

	if sm := object.Child("ShadingModel"); sm.Valid() {
		m.ShadingModel = sm.Prop(0).String()
	}
	for _, a := range object.Attributes() {
		v := mathutil.Vec3From(fbx.Triple(a.Values, 0))
		f := float32(a.Value(0).Float())
		switch a.Name {
		case "DiffuseColor":
			m.DiffuseColor = v
		case "DiffuseFactor":
			m.DiffuseFactor = f
		case "SpecularColor":
			m.SpecularColor = v
		case "SpecularFactor":
			m.SpecularFactor = f
		case "EmissiveColor":
			m.EmissiveColor = v
		case "EmissiveFactor":
			m.EmissiveFactor = f
		case "AmbientFactor":
			m.AmbientFactor = f
		case "Shininess":
			m.Shininess = f
		case "Opacity":
			m.Opacity = f

		// Stingray PBS properties exported by Maya
		case "Maya|use_normal_map":
			m.IsPBS, m.UseNormalMap = true, f != 0
		case "Maya|base_color":
			m.IsPBS, m.DiffuseColor = true, v
		case "Maya|use_color_map":
			m.IsPBS, m.UseAlbedoMap = true, f != 0
		case "Maya|roughness":
			m.IsPBS, m.Roughness = true, f
		case "Maya|use_roughness_map":
			m.IsPBS, m.UseRoughnessMap = true, f != 0
		case "Maya|metallic":
			m.IsPBS, m.Metallic = true, f
		case "Maya|use_metallic_map":
			m.IsPBS, m.UseMetallicMap = true, f != 0
		case "Maya|emissive":
			m.IsPBS, m.EmissiveColor = true, v
		case "Maya|emissive_intensity":
			m.IsPBS, m.EmissiveIntensity = true, f
		case "Maya|use_emissive_map":
			m.IsPBS, m.UseEmissiveMap = true, f != 0
		case "Maya|use_ao_map":
			m.IsPBS, m.UseOcclusionMap = true, f != 0
		case "Maya|uv_scale":
			if len(a.Values) == 2 {
				uv.Scaling = mathutil.MulComponents(uv.Scaling, mathutil.NonZeroScale(mgl32.Vec3{
					float32(a.Values[0].Float()), float32(a.Values[1].Float()), 1,
				}))
			}
		case "Maya|uv_offset":
			if len(a.Values) == 2 {
				uv.Translation = uv.Translation.Add(mgl32.Vec3{
					float32(a.Values[0].Float()), float32(a.Values[1].Float()), 1,
				})
			}
		}
	}
	return m, uv
}
