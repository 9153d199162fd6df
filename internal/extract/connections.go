package extract

import (
	"strings"

	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/material"
	"fbx-model-importer/internal/mathutil"

	"github.com/sirupsen/logrus"
)

// channelRule routes an OP connection by its lower-cased type string. The
// child (property 1) is bound under the parent (property 2).
type channelRule struct {
	match  func(kind string) bool
	assign func(s *session, parent, child string)
}

func has(sub string) func(string) bool {
	return func(kind string) bool { return strings.Contains(kind, sub) }
}

func hasBut(sub, not string) func(string) bool {
	return func(kind string) bool { return strings.Contains(kind, sub) && !strings.Contains(kind, not) }
}

func is(v string) func(string) bool {
	return func(kind string) bool { return kind == v }
}

func anyOf(fs ...func(string) bool) func(string) bool {
	return func(kind string) bool {
		for _, f := range fs {
			if f(kind) {
				return true
			}
		}
		return false
	}
}

func bindTexture(ch material.Channel) func(*session, string, string) {
	return func(s *session, parent, child string) { s.channels.Bind(ch, parent, child) }
}

func bindCurve(table func(*session) map[string]string) func(*session, string, string) {
	return func(s *session, parent, child string) { table(s)[parent] = child }
}

// channelRules is ordered; the first match wins. Broad substrings such as
// "diffuse" must stay below the narrower ones they would shadow.
var channelRules = []channelRule{
	{has("diffusefactor"), bindTexture(material.DiffuseFactor)},
	{hasBut("diffuse", "tex_global_diffuse"), bindTexture(material.Diffuse)},
	{has("tex_color_map"), bindTexture(material.Diffuse)},
	{has("transparentcolor"), bindTexture(material.Transparent)},   // Maya
	{has("transparencyfactor"), bindTexture(material.Transparent)}, // Blender
	{has("bump"), bindTexture(material.Bump)},
	{has("normal"), bindTexture(material.Normal)},
	{anyOf(hasBut("specular", "tex_global_specular"), has("reflection")), bindTexture(material.Specular)},
	{has("tex_metallic_map"), bindTexture(material.Metallic)},
	{has("shininess"), bindTexture(material.Shininess)},
	{has("tex_roughness_map"), bindTexture(material.Roughness)},
	{has("emissive"), bindTexture(material.Emissive)},
	{has("ambientcolor"), bindTexture(material.Ambient)},
	{has("ambientfactor"), bindTexture(material.AmbientFactor)},
	{has("tex_ao_map"), bindTexture(material.Occlusion)},
	{is("lcl rotation"), bindCurve(func(s *session) map[string]string { return s.localRotations })},
	{is("lcl translation"), bindCurve(func(s *session) map[string]string { return s.localTranslations })},
	{is("d|x"), bindCurve(func(s *session) map[string]string { return s.xComponents })},
	{is("d|y"), bindCurve(func(s *session) map[string]string { return s.yComponents })},
	{is("d|z"), bindCurve(func(s *session) map[string]string { return s.zComponents })},
}

// routeChannel applies the first matching rule and reports whether one did.
func (s *session) routeChannel(kind, parent, child string) bool {
	kind = strings.ToLower(kind)
	for _, r := range channelRules {
		if r.match(kind) {
			r.assign(s, parent, child)
			return true
		}
	}
	return false
}

func (s *session) readConnections(connections fbx.Node) {
	for _, c := range connections.Children() {
		if c.Name() != "C" && c.Name() != "Connect" {
			continue
		}
		props := c.Props()
		if len(props) < 3 {
			continue
		}
		child, parent := fbx.ObjectID(props, 1), fbx.ObjectID(props, 2)
		switch props[0].String() {
		case "OO":
			s.ooChildToParent[child] = parent
			if s.hifiGlobalNodeID != "" && parent == s.hifiGlobalNodeID {
				if light, ok := s.lights[child]; ok {
					s.lightmap.Level = light.Intensity
					if s.lightmap.Level <= 0 {
						s.lightmap.Load = false
					}
					s.lightmap.Offset = mathutil.Clamp(light.Color[0], 0, 1)
				}
			}
		case "OP":
			if len(props) > 3 && !s.routeChannel(props[3].String(), parent, child) {
				s.log.WithFields(logrus.Fields{"type": props[3].String(), "child": child}).
					Debug("extract: unrouted property connection")
			}
		}

		if s.parents.Value(child) == "0" {
			// a child already attached to the scene root keeps that parent
			s.children.Insert(parent, child)
		} else {
			s.parents.Insert(child, parent)
			s.children.Insert(parent, child)
		}
	}
}

// resolveLightmap applies the first light when no hifi node chose one.
func (s *session) resolveLightmap() {
	for _, id := range sortedKeys(s.lights) {
		s.geo.Lights = append(s.geo.Lights, s.lights[id])
	}
	if len(s.geo.Lights) > 0 && s.hifiGlobalNodeID == "" {
		s.lightmap.Level = s.geo.Lights[0].Intensity
	}
}
