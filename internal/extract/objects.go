package extract

import (
	"strings"

	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/material"
	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/mesh"
	"fbx-model-importer/internal/options"
	"fbx-model-importer/internal/skeleton"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// BlendshapeNames are the canonical facial blendshapes, in slot order.
var BlendshapeNames = []string{
	"EyeBlink_L", "EyeBlink_R", "EyeSquint_L", "EyeSquint_R",
	"EyeDown_L", "EyeDown_R", "EyeIn_L", "EyeIn_R",
	"EyeOpen_L", "EyeOpen_R", "EyeOut_L", "EyeOut_R",
	"EyeUp_L", "EyeUp_R", "BrowsD_L", "BrowsD_R",
	"BrowsU_C", "BrowsU_L", "BrowsU_R", "JawFwd",
	"JawLeft", "JawOpen", "JawChew", "JawRight",
	"MouthLeft", "MouthRight", "MouthFrown_L", "MouthFrown_R",
	"MouthSmile_L", "MouthSmile_R", "MouthDimple_L", "MouthDimple_R",
	"LipsStretch_L", "LipsStretch_R", "LipsUpperClose", "LipsLowerClose",
	"LipsUpperUp", "LipsLowerDown", "LipsUpperOpen", "LipsLowerOpen",
	"LipsFunnel", "LipsPucker", "ChinLowerRaise", "ChinUpperRaise",
	"Sneer", "Puff", "CheekSquint_L", "CheekSquint_R",
}

// blendshapeIndices maps source blendshape names to canonical slots. A
// canonical name without a remap is its own source.
func blendshapeIndices(remaps map[string]options.BlendshapeRemaps) map[string][]mesh.WeightedIndex {
	out := map[string][]mesh.WeightedIndex{}
	for i, name := range BlendshapeNames {
		sources := remaps[name]
		if len(sources) == 0 {
			out[name] = append(out[name], mesh.WeightedIndex{Index: i, Weight: 1})
			continue
		}
		for _, r := range sources {
			out[r.Source] = append(out[r.Source], mesh.WeightedIndex{Index: i, Weight: r.Weight})
		}
	}
	return out
}

func (s *session) readHeader(header fbx.Node) {
	for _, object := range header.Children() {
		switch object.Name() {
		case "SceneInfo":
			for _, sub := range object.Children() {
				switch sub.Name() {
				case "MetaData":
					if author := sub.Child("Author"); author.Valid() {
						s.geo.Author = author.Prop(0).String()
					}
				case "Properties70":
					for _, p := range sub.ChildrenNamed("P") {
						if p.NumProps() >= 5 && p.Prop(0).String() == "Original|ApplicationName" {
							s.geo.ApplicationName = p.Prop(4).String()
						}
					}
				}
			}
		case "FBXVersion":
			s.version = int(object.Prop(0).Int())
		}
	}
	s.geo.FBXVersion = s.version
}

func (s *session) readGlobalSettings(settings fbx.Node) {
	for _, block := range settings.ChildrenNamed("Properties70") {
		for _, p := range block.ChildrenNamed("P") {
			props := p.Props()
			if len(props) < 5 {
				continue
			}
			switch props[0].String() {
			case "UnitScaleFactor":
				s.unitScaleFactor = float32(props[4].Float())
			case "AmbientColor":
				s.geo.AmbientColor = mathutil.Vec3From(fbx.Triple(props, 4))
			case "UpAxis":
				s.geo.UpAxis = int(props[4].Int())
				s.upAxisZ = s.geo.UpAxis == 2
			}
		}
	}
	s.geo.UnitScaleFactor = s.unitScaleFactor
}

func (s *session) readObjects(objects fbx.Node) {
	for _, object := range objects.Children() {
		props := object.Props()
		id := fbx.ObjectID(props, 0)
		switch object.Name() {
		case "Geometry":
			if len(props) > 2 && props[2].String() == "Mesh" {
				s.addMesh(object, id)
			} else {
				s.shapes = append(s.shapes, shape{id: id, shape: mesh.ExtractBlendshape(object)})
			}
		case "Model":
			s.readModel(object, id)
		case "Texture":
			s.textures.AddTexture(object)
		case "Video":
			s.textures.AddVideo(object)
		case "Material":
			m, uv := material.DecodeMaterial(object)
			s.materials[m.ID] = m
			s.textures.SetMaterialUV(m.ID, uv)
		case "NodeAttribute":
			s.readNodeAttribute(object, id)
		case "Deformer":
			s.readDeformer(object, id)
		case "AnimationCurve":
			if kv := object.Child("KeyValueFloat"); kv.Valid() {
				s.curves[id] = kv.Float32s()
			} else {
				s.curves[id] = nil
			}
		}
	}
}

func (s *session) addMesh(object fbx.Node, id string) *mesh.Extracted {
	ex := mesh.Extract(object, id, s.meshIndex, s.opts.Deduplicate(), s.log)
	s.meshIndex++
	s.warnings += ex.Warnings
	s.meshes[id] = ex
	return ex
}

func (s *session) readModel(object fbx.Node, id string) {
	props := object.Props()
	name := fbx.ModelName(props)
	s.modelNames[id] = name
	if strings.HasPrefix(strings.ToLower(name), "hifi") {
		s.hifiGlobalNodeID = id
	}
	if role, ok := s.matchRole(name); ok {
		s.roleIDs[role] = id
	}
	for i, n := range s.humanIKNames() {
		if n == name {
			s.humanIKIDs[i] = id
		}
	}

	m := skeleton.DecodeModel(object, s.log)
	s.models[id] = &m

	var ex *mesh.Extracted
	var inline []shape
	for _, sub := range object.Children() {
		switch sub.Name() {
		case "Vertices":
			// a legacy model that is its own mesh
			ex = s.addMesh(object, id)
		case "DracoMesh":
			s.warn(logrus.Fields{"id": id, "node": "DracoMesh"}, "extract: compressed mesh payload not supported, skipped")
		case "Shape":
			inline = append(inline, shape{id: sub.Prop(0).String(), shape: mesh.ExtractBlendshape(sub)})
		}
	}
	if ex != nil {
		for _, sh := range inline {
			ex.AddBlendshapes(sh.shape, s.blendshapeIndices[sh.id])
		}
	}
}

func (s *session) readNodeAttribute(object fbx.Node, id string) {
	flags := object.Child("TypeFlags")
	if !flags.Valid() || flags.Prop(0).String() != "Light" {
		return
	}
	light := geometry.Light{ID: id}
	for _, a := range object.Attributes() {
		switch a.Name {
		case "Intensity":
			light.Intensity = 0.01 * float32(a.Value(0).Float())
		case "Color":
			light.Color = mathutil.Vec3From(fbx.Triple(a.Values, 0))
		}
	}
	s.lights[id] = light
}

func (s *session) readDeformer(object fbx.Node, id string) {
	props := object.Props()
	if len(props) == 0 {
		return
	}
	switch props[len(props)-1].String() {
	case "Cluster":
		c := &cluster{transformLink: mgl32.Ident4()}
		for _, sub := range object.Children() {
			switch sub.Name() {
			case "Indexes":
				c.indices = sub.Ints()
			case "Weights":
				c.weights = sub.Float32s()
			case "TransformLink":
				c.transformLink = mathutil.Mat4FromFloat64s(sub.Float64s())
			}
		}
		if len(c.indices) > 0 && len(c.weights) > 0 {
			s.clusters[id] = c
		}
	case "BlendShapeChannel":
		name := ""
		if len(props) > 1 {
			name = props[1].String()
		}
		if i := strings.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		if _, ok := s.blendshapeIndices[name]; !ok {
			name = name[strings.LastIndexByte(name, '.')+1:]
		}
		s.geo.BlendshapeChannelNames = append(s.geo.BlendshapeChannelNames, name)
		s.channelIndices[id] = append(s.channelIndices[id], s.blendshapeIndices[name]...)
	}
}
