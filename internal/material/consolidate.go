package material

import (
	"strings"

	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/options"

	"github.com/go-gl/mathgl/mgl32"
)

// Channel is a material slot a texture can be connected to.
type Channel int

const (
	DiffuseFactor Channel = iota
	Diffuse
	Transparent
	Bump
	Normal
	Specular
	Metallic
	Shininess
	Roughness
	Emissive
	Ambient
	AmbientFactor
	Occlusion
	numChannels
)

var channelNames = [numChannels]string{
	"diffuseFactor", "diffuse", "transparent", "bump", "normal", "specular",
	"metallic", "shininess", "roughness", "emissive", "ambient",
	"ambientFactor", "occlusion",
}

func (c Channel) String() string {
	if c < 0 || c >= numChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Channels maps, per channel, a material ID to the texture connected to it.
// A later binding replaces an earlier one.
type Channels struct {
	bound [numChannels]map[string]string
}

// NewChannels returns an empty table.
func NewChannels() *Channels {
	c := &Channels{}
	for i := range c.bound {
		c.bound[i] = map[string]string{}
	}
	return c
}

// Bind connects textureID to channel ch of materialID.
func (c *Channels) Bind(ch Channel, materialID, textureID string) {
	c.bound[ch][materialID] = textureID
}

// Lookup returns the texture bound to ch of materialID.
func (c *Channels) Lookup(ch Channel, materialID string) (string, bool) {
	id, ok := c.bound[ch][materialID]
	return id, ok
}

// Lightmap controls how ambient-colour textures become lightmaps.
type Lightmap struct {
	Load   bool
	Level  float32
	Offset float32
}

// DefaultLightmap loads lightmaps at full level.
func DefaultLightmap() Lightmap {
	return Lightmap{Load: true, Level: 1}
}

// Consolidate binds textures to m and computes its final values. override
// may be nil.
func Consolidate(m *geometry.Material, ch *Channels, lib *Library, lm Lightmap, override *options.MaterialOverride) {
	id := m.ID
	texture := func(textureID string) geometry.Texture { return lib.Texture(textureID, id) }

	diffuseID, hasDiffuse := ch.Lookup(Diffuse, id)
	if factorID, ok := ch.Lookup(DiffuseFactor, id); ok && !hasDiffuse {
		// Maya binds the colour map to DiffuseFactor and halves the factor.
		diffuseID, hasDiffuse = factorID, true
		m.DiffuseFactor = 1
	}
	if hasDiffuse {
		m.AlbedoTexture = texture(diffuseID)
	}

	transparentID, hasTransparent := ch.Lookup(Transparent, id)
	if m.IsPBS {
		// PBS albedo carries opacity in its alpha channel
		transparentID, hasTransparent = diffuseID, hasDiffuse
	}
	if hasTransparent {
		m.OpacityTexture = texture(transparentID)
	}

	if normalID, ok := ch.Lookup(Normal, id); ok {
		m.NormalTexture = texture(normalID)
	} else if bumpID, ok := ch.Lookup(Bump, id); ok {
		m.NormalTexture = texture(bumpID)
		m.NormalTexture.IsBumpmap = true
	}
	if tid, ok := ch.Lookup(Specular, id); ok {
		m.SpecularTexture = texture(tid)
	}
	if tid, ok := ch.Lookup(Metallic, id); ok {
		m.MetallicTexture = texture(tid)
	}
	if tid, ok := ch.Lookup(Roughness, id); ok {
		m.RoughnessTexture = texture(tid)
	}
	if tid, ok := ch.Lookup(Shininess, id); ok {
		m.GlossTexture = texture(tid)
	}
	if tid, ok := ch.Lookup(Emissive, id); ok {
		m.EmissiveTexture = texture(tid)
	}
	if tid, ok := ch.Lookup(Occlusion, id); ok {
		m.OcclusionTexture = texture(tid)
	}
	if tid, ok := ch.Lookup(Ambient, id); ok && lm.Load {
		m.LightmapTexture = texture(tid)
		m.LightmapParams = mgl32.Vec2{lm.Offset, lm.Level}
	}

	lambert := strings.EqualFold(m.ShadingModel, "lambert")
	emissiveFactor := m.EmissiveFactor
	if lambert {
		emissiveFactor = 1
	}
	m.Emissive = m.EmissiveColor.Mul(emissiveFactor)
	m.Albedo = m.DiffuseColor.Mul(m.DiffuseFactor)

	if m.IsPBS {
		m.FinalRough = m.Roughness
		m.FinalMetallic = m.Metallic
	} else {
		m.FinalRough = mathutil.Clamp(1-m.Shininess/100, 0, 1)
		m.FinalMetallic = max(m.SpecularColor[0], m.SpecularColor[1], m.SpecularColor[2])
		if lambert && !hasAlbedo(m.Albedo) {
			m.Unlit = true
			m.Albedo = m.Emissive
			if !m.EmissiveTexture.IsNull() {
				m.AlbedoTexture = m.EmissiveTexture
			}
		}
	}

	m.FinalOpacity = m.Opacity
	if m.Opacity <= 0 {
		m.FinalOpacity = 1
	}

	if override != nil {
		if override.Scattering != nil {
			m.Scattering = *override.Scattering
		}
		if override.ScatteringMap != "" {
			m.ScatteringTexture = geometry.Texture{
				Name:      m.Name + ".scatteringMap",
				Filename:  override.ScatteringMap,
				Transform: mathutil.IdentityTransform(),
			}
		}
	}
}

func hasAlbedo(c mgl32.Vec3) bool {
	return c[0] > 0 || c[1] > 0 || c[2] > 0
}
