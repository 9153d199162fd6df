package extract

import (
	"io"
	"testing"

	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/material"
	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/options"
	"fbx-model-importer/internal/skeleton"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions() options.Options {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return options.Options{Scale: 100, Logger: l}
}

func p70(name string, values ...fbx.Property) *fbx.Element {
	props := append([]fbx.Property{fbx.String(name), fbx.String(""), fbx.String(""), fbx.String("")}, values...)
	return fbx.NewElement("P", props...)
}

func conn(kind string, child, parent int64, extra ...fbx.Property) *fbx.Element {
	props := append([]fbx.Property{fbx.String(kind), fbx.Int64(child), fbx.Int64(parent)}, extra...)
	return fbx.NewElement("C", props...)
}

func object(name string, id int64, label, class string, children ...*fbx.Element) *fbx.Element {
	return fbx.NewElement(name, fbx.Int64(id), fbx.String(label), fbx.String(class)).Add(children...)
}

// skinnedQuad is a quad skinned to the second joint of a two-joint chain,
// with a material, a rotation curve and one blendshape.
func skinnedQuad() *fbx.Tree {
	identity := []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	return fbx.Build(
		fbx.NewElement("FBXHeaderExtension").Add(fbx.NewElement("FBXVersion", fbx.Int32(7400))),
		fbx.NewElement("Objects").Add(
			object("Geometry", 100, "quad\x00\x01Geometry", "Mesh",
				fbx.NewElement("Vertices", fbx.Float64Array([]float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0})),
				fbx.NewElement("PolygonVertexIndex", fbx.Int32Array([]int32{0, 1, 2, -4})),
			),
			object("Model", 200, "Hips\x00\x01Model", "LimbNode"),
			object("Model", 201, "Spine\x00\x01Model", "LimbNode",
				fbx.NewElement("Properties70").Add(
					p70("Lcl Translation", fbx.Float64(0), fbx.Float64(1), fbx.Float64(0)),
				),
			),
			object("Model", 300, "Body\x00\x01Model", "Mesh"),
			object("Material", 400, "skin\x00\x01Material", "",
				fbx.NewElement("Properties70").Add(
					p70("DiffuseColor", fbx.Float64(0.5), fbx.Float64(0.25), fbx.Float64(1)),
				),
			),
			object("Deformer", 500, "skin\x00\x01Deformer", "Skin"),
			object("Deformer", 501, "c\x00\x01SubDeformer", "Cluster",
				fbx.NewElement("Indexes", fbx.Int32Array([]int32{0, 1, 2, 3})),
				fbx.NewElement("Weights", fbx.Float64Array([]float64{1, 1, 1, 1})),
				fbx.NewElement("TransformLink", fbx.Float64Array(identity)),
			),
			object("AnimationCurveNode", 700, "R\x00\x01AnimCurveNode", ""),
			object("AnimationCurve", 600, "\x00\x01AnimCurve", "",
				fbx.NewElement("KeyValueFloat", fbx.Float32Array([]float32{0, 90})),
			),
			object("Geometry", 800, "JawOpen\x00\x01Geometry", "Shape",
				fbx.NewElement("Indexes", fbx.Int32Array([]int32{0})),
				fbx.NewElement("Vertices", fbx.Float64Array([]float64{0, 0, 1})),
				fbx.NewElement("Normals", fbx.Float64Array([]float64{0, 0, 0})),
			),
			object("Deformer", 810, "bs\x00\x01Deformer", "BlendShape"),
			object("Deformer", 820, "JawOpen\x00\x01SubDeformer", "BlendShapeChannel"),
		),
		fbx.NewElement("Connections").Add(
			conn("OO", 100, 300),
			conn("OO", 300, 0),
			conn("OO", 200, 0),
			conn("OO", 201, 200),
			conn("OO", 400, 300),
			conn("OO", 500, 100),
			conn("OO", 501, 500),
			conn("OO", 201, 501),
			conn("OP", 700, 201, fbx.String("Lcl Rotation")),
			conn("OP", 600, 700, fbx.String("d|X")),
			conn("OO", 800, 820),
			conn("OO", 820, 810),
			conn("OO", 810, 100),
		),
	)
}

func TestExtractSkinnedQuad(t *testing.T) {
	g, err := Extract(skinnedQuad().Root(), quietOptions(), "quad.fbx")
	require.NoError(t, err)

	// the skinned Body model is moved under the top of its cluster's skeleton
	assert.Equal(t, []string{"Hips", "Body", "Spine"}, g.JointNames())
	assert.Equal(t, -1, g.Joints[0].ParentIndex)
	assert.Equal(t, 0, g.Joints[1].ParentIndex)
	assert.Equal(t, 0, g.Joints[2].ParentIndex)
	for i, j := range g.Joints {
		assert.Less(t, j.ParentIndex, i)
	}
	assert.True(t, g.HasSkeletonJoints)
	assert.Equal(t, 2, g.JointIndices["Spine"])
	assert.InDelta(t, 1, mathutil.ExtractTranslation(g.Joints[2].Transform)[1], 1e-5)

	require.Len(t, g.Meshes, 1)
	m := g.Meshes[0]
	assert.Len(t, m.Vertices, 4)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, "400", m.Parts[0].MaterialID)
	assert.Equal(t, "Body", g.ModelNameOfMesh(0))

	require.Len(t, m.Clusters, 2)
	assert.Equal(t, 2, m.Clusters[0].JointIndex)
	assert.Equal(t, 1, m.Clusters[1].JointIndex)
	for i := range m.Vertices {
		assert.Equal(t, [4]int{0, 0, 0, 0}, m.ClusterIndices[i])
		assert.Equal(t, float32(1), m.ClusterWeights[i][0])
	}
	assert.True(t, g.Joints[2].BindTransformFound)
	assert.Len(t, g.ShapeVertices, 3)
	assert.Len(t, g.ShapeVertices[2], 4)

	require.Len(t, m.Blendshapes, 22)
	jaw := m.Blendshapes[21]
	assert.Equal(t, []int{0}, jaw.Indices)
	assert.Equal(t, []mgl32.Vec3{{0, 0, 1}}, jaw.Vertices)
	assert.Equal(t, []string{"JawOpen"}, g.BlendshapeChannelNames)
	assert.True(t, g.HasBlendedMeshes())

	mat := g.Materials["400"]
	require.NotNil(t, mat)
	assert.Equal(t, "skin", mat.Name)
	assert.InDeltaSlice(t, []float32{0.5, 0.25, 1}, mat.Albedo[:], 1e-6)

	require.Len(t, g.AnimationFrames, 2)
	assert.True(t, mathutil.SameRotation(mgl32.QuatIdent(), g.AnimationFrames[0].Rotations[2], 1e-5))
	assert.True(t, mathutil.SameRotation(mathutil.RotX(mathutil.PiOverTwo), g.AnimationFrames[1].Rotations[2], 1e-5))
	assert.True(t, mathutil.SameRotation(mgl32.QuatIdent(), g.AnimationFrames[1].Rotations[0], 1e-5))
	assert.InDelta(t, 1, g.AnimationFrames[1].Translations[2][1], 1e-5)

	assert.Equal(t, 7400, g.FBXVersion)
	assert.Zero(t, g.Warnings)
	assert.Equal(t, -1, g.NeckJointIndex)
	assert.InDeltaSlice(t, []float32{0, -1, 0}, g.PalmDirection[:], 1e-6)
}

func TestImportThroughBinary(t *testing.T) {
	data, err := fbx.EncodeBytes(skinnedQuad(), 7400, true)
	require.NoError(t, err)
	g, err := Import(data, quietOptions(), "quad.fbx")
	require.NoError(t, err)
	assert.Len(t, g.Meshes, 1)
	assert.Len(t, g.Joints, 3)
}

func TestEmptyDocument(t *testing.T) {
	g, err := Import([]byte("; nothing here\nObjects:  {\n}\n"), quietOptions(), "empty.fbx")
	require.Error(t, err)
	require.NotNil(t, g)
	assert.True(t, errors.Is(err, ErrEmptyGeometry))
	var fe *fbx.FormatError
	assert.False(t, errors.As(err, &fe))
	assert.True(t, g.IsEmpty())
}

func TestStructuralFailure(t *testing.T) {
	_, err := Import([]byte(`Objects: "never closed`), quietOptions(), "bad.fbx")
	require.Error(t, err)
	var fe *fbx.FormatError
	assert.True(t, errors.As(err, &fe))
	assert.False(t, errors.Is(err, ErrEmptyGeometry))
}

func TestSpecialJointsAndOverrides(t *testing.T) {
	opts := quietOptions()
	opts.Joint = map[string]string{"jointNeck": "Model::Collar", "RightHand": "HandR"}
	opts.Sit = map[string][]string{"chair": {"0, 1, 2", "0, 90, 0"}}
	tree := fbx.Build(
		fbx.NewElement("Objects").Add(
			object("Model", 1, "Collar\x00\x01Model", "LimbNode"),
			object("Model", 2, "NeckRot\x00\x01Model", "LimbNode",
				fbx.NewElement("Properties70").Add(
					p70("Lcl Translation", fbx.Float64(0), fbx.Float64(2), fbx.Float64(0)),
				),
			),
			object("Model", 3, "EyeL\x00\x01Model", "LimbNode"),
			object("Model", 4, "HandR\x00\x01Model", "LimbNode"),
		),
		fbx.NewElement("Connections").Add(
			conn("OO", 1, 0),
			conn("OO", 2, 1),
			conn("OO", 3, 2),
			conn("OO", 4, 1),
		),
	)
	g, err := Extract(tree.Root(), opts, "rig.fbx")
	require.NoError(t, err)

	require.Len(t, g.Joints, 4)
	assert.Equal(t, "Collar", g.Joints[0].Name)
	assert.Equal(t, 0, g.NeckJointIndex)
	assert.Equal(t, g.JointIndices["EyeL"], g.LeftEyeJointIndex)
	assert.Equal(t, -1, g.RightEyeJointIndex)
	// NeckRot is only a fallback while jointNeck is unmapped
	assert.Equal(t, "NeckRot", g.Joints[g.JointIndices["NeckRot"]].Name)
	assert.Equal(t, g.JointIndices["HandR"], g.HumanIKJointIndices[0])
	assert.Equal(t, -1, g.HumanIKJointIndices[3])
	assert.Equal(t, mgl32.Vec3{}, g.NeckPivot)

	require.Len(t, g.SittingPoints, 1)
	sp := g.SittingPoints[0]
	assert.Equal(t, "chair", sp.Name)
	assert.Equal(t, mgl32.Vec3{0, 1, 2}, sp.Position)
	assert.True(t, mathutil.SameRotation(mathutil.RotY(mathutil.PiOverTwo), sp.Rotation, 1e-5))
	assert.Empty(t, g.Meshes)
}

func TestParentLoopOrdersEveryModel(t *testing.T) {
	tree := fbx.Build(
		fbx.NewElement("Objects").Add(
			object("Model", 1, "A\x00\x01Model", "Null"),
			object("Model", 2, "B\x00\x01Model", "Null"),
		),
		fbx.NewElement("Connections").Add(
			conn("OO", 1, 2),
			conn("OO", 2, 1),
		),
	)
	g, err := Extract(tree.Root(), quietOptions(), "loop.fbx")
	require.NoError(t, err)
	require.Len(t, g.Joints, 2)
	for i, j := range g.Joints {
		assert.Less(t, j.ParentIndex, i)
	}
}

func TestUnreachableRootKeepsItsChildren(t *testing.T) {
	s := newSession(quietOptions(), "forced")
	for _, id := range []string{"1", "2", "3"} {
		s.models[id] = &skeleton.Model{ID: id, ParentIndex: -1}
	}
	// 1 names two parents: the model 2 and an unknown object 50; only 50
	// lists it as a child, so 1 is not reached from the root at 2.
	s.parents.Insert("1", "2")
	s.parents.Insert("1", "50")
	s.parents.Insert("2", "0")
	s.parents.Insert("3", "1")
	s.children.Insert("0", "2")
	s.children.Insert("50", "1")
	s.children.Insert("1", "3")

	ordered := s.orderModels()
	require.Equal(t, []string{"2", "1", "3"}, ordered)
	assert.Equal(t, -1, s.models["2"].ParentIndex)
	assert.Equal(t, -1, s.models["1"].ParentIndex)
	assert.Equal(t, 1, s.models["3"].ParentIndex)
	assert.Equal(t, 1, s.warnings)
}

func TestTangentsNeedUVLayer(t *testing.T) {
	normalMapped := func(uv bool) *fbx.Tree {
		geo := object("Geometry", 100, "quad\x00\x01Geometry", "Mesh",
			fbx.NewElement("Vertices", fbx.Float64Array([]float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0})),
			fbx.NewElement("PolygonVertexIndex", fbx.Int32Array([]int32{0, 1, 2, -4})),
		)
		if uv {
			geo.Add(fbx.NewElement("LayerElementUV", fbx.Int32(0)).Add(
				fbx.NewElement("Name", fbx.String("map1")),
				fbx.NewElement("MappingInformationType", fbx.String("ByPolygonVertex")),
				fbx.NewElement("ReferenceInformationType", fbx.String("Direct")),
				fbx.NewElement("UV", fbx.Float64Array([]float64{0, 0, 1, 0, 1, 1, 0, 1})),
			))
		}
		return fbx.Build(
			fbx.NewElement("Objects").Add(
				geo,
				object("Model", 300, "Body\x00\x01Model", "Mesh"),
				object("Material", 400, "skin\x00\x01Material", ""),
				object("Texture", 450, "n\x00\x01Texture", "",
					fbx.NewElement("RelativeFilename", fbx.String("normal.png")),
				),
			),
			fbx.NewElement("Connections").Add(
				conn("OO", 100, 300),
				conn("OO", 300, 0),
				conn("OO", 400, 300),
				conn("OP", 450, 400, fbx.String("NormalMap")),
			),
		)
	}

	g, err := Extract(normalMapped(false).Root(), quietOptions(), "flat.fbx")
	require.NoError(t, err)
	require.Len(t, g.Meshes, 1)
	require.False(t, g.Materials["400"].NormalTexture.IsNull())
	assert.Empty(t, g.Meshes[0].Tangents)

	g, err = Extract(normalMapped(true).Root(), quietOptions(), "mapped.fbx")
	require.NoError(t, err)
	require.Len(t, g.Meshes, 1)
	assert.Len(t, g.Meshes[0].Tangents, len(g.Meshes[0].Vertices))
}

func TestChannelRules(t *testing.T) {
	s := newSession(quietOptions(), "rules")
	cases := []struct {
		kind string
		ch   material.Channel
	}{
		{"DiffuseFactor", material.DiffuseFactor},
		{"DiffuseColor", material.Diffuse},
		{"tex_color_map", material.Diffuse},
		{"TransparentColor", material.Transparent},
		{"TransparencyFactor", material.Transparent},
		{"Bump", material.Bump},
		{"NormalMap", material.Normal},
		{"SpecularColor", material.Specular},
		{"ReflectionColor", material.Specular},
		{"Maya|TEX_metallic_map", material.Metallic},
		{"ShininessExponent", material.Shininess},
		{"Maya|TEX_roughness_map", material.Roughness},
		{"EmissiveColor", material.Emissive},
		{"AmbientColor", material.Ambient},
		{"AmbientFactor", material.AmbientFactor},
		{"Maya|TEX_ao_map", material.Occlusion},
	}
	for i, c := range cases {
		mat := string(rune('a' + i))
		require.True(t, s.routeChannel(c.kind, mat, "tex"), c.kind)
		got, ok := s.channels.Lookup(c.ch, mat)
		assert.True(t, ok, c.kind)
		assert.Equal(t, "tex", got, c.kind)
	}

	assert.False(t, s.routeChannel("Maya|TEX_global_diffuse_cube", "m", "t"))
	assert.False(t, s.routeChannel("Lcl Scaling", "m", "t"))

	require.True(t, s.routeChannel("Lcl Rotation", "model", "node"))
	require.True(t, s.routeChannel("d|Y", "node", "curve"))
	assert.Equal(t, "node", s.localRotations["model"])
	assert.Equal(t, "curve", s.yComponents["node"])
}

func TestConnectionParentRule(t *testing.T) {
	s := newSession(quietOptions(), "rule")
	tree := fbx.Build(fbx.NewElement("Connections").Add(
		conn("OO", 5, 0),
		conn("OO", 5, 9),
	))
	s.readConnections(tree.Root().Child("Connections"))
	assert.Equal(t, []string{"0"}, s.parents.Values("5"))
	assert.True(t, s.children.Contains("9", "5"))
	assert.True(t, s.children.Contains("0", "5"))
}

func TestBlendshapeRemap(t *testing.T) {
	idx := blendshapeIndices(map[string]options.BlendshapeRemaps{
		"JawOpen": {{Source: "mouth_open", Weight: 0.5}},
	})
	assert.Empty(t, idx["JawOpen"])
	require.Len(t, idx["mouth_open"], 1)
	assert.Equal(t, 21, idx["mouth_open"][0].Index)
	assert.Equal(t, float32(0.5), idx["mouth_open"][0].Weight)
	assert.Equal(t, 0, idx["EyeBlink_L"][0].Index)
}
