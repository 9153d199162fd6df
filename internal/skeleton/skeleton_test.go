package skeleton

import (
	"io"
	"testing"

	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func p70(name string, values ...fbx.Property) *fbx.Element {
	props := append([]fbx.Property{fbx.String(name), fbx.String(""), fbx.String(""), fbx.String("A")}, values...)
	return fbx.NewElement("P", props...)
}

func triple(x, y, z float64) []fbx.Property {
	return []fbx.Property{fbx.Float64(x), fbx.Float64(y), fbx.Float64(z)}
}

func modelNode(t *testing.T, class string, props ...*fbx.Element) fbx.Node {
	t.Helper()
	tree := fbx.Build(fbx.NewElement("Model", fbx.Int64(5), fbx.String("Arm\x00\x01Model"), fbx.String(class)).Add(
		fbx.NewElement("Properties70").Add(props...),
	))
	return tree.Root().Child("Model")
}

func TestDecodeModel(t *testing.T) {
	n := modelNode(t, "LimbNode",
		p70("Lcl Translation", triple(1, 2, 3)...),
		p70("Lcl Rotation", triple(10, 20, 0)...),
		p70("RotationOrder", fbx.Int32(int32(OrderZXY))),
		p70("Lcl Scaling", triple(2, 2, 2)...),
		p70("RotationMin", triple(-45, 0, 0)...),
		p70("RotationMinX", fbx.Int32(1)),
		p70("GeometricTranslation", triple(0, 0, 1)...),
	)
	m := DecodeModel(n, quietLog())
	assert.Equal(t, "5", m.ID)
	assert.Equal(t, "Arm", m.Name)
	assert.True(t, m.IsLimbNode)
	assert.Equal(t, -1, m.ParentIndex)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, m.Translation)

	// the order was declared after the rotation and still applies
	r := mathutil.Radians(mgl32.Vec3{10, 20, 0})
	want := mathutil.RotY(r[1]).Mul(mathutil.RotX(r[0]))
	assert.True(t, mathutil.SameRotation(want, m.Rotation, 1e-4), "got %v want %v", m.Rotation, want)

	assert.InDelta(t, mathutil.Radians(mgl32.Vec3{-45, 0, 0})[0], m.RotationMin[0], 1e-6)
	assert.InDelta(t, -mathutil.Pi, m.RotationMin[1], 1e-6)
	assert.InDelta(t, mathutil.Pi, m.RotationMax[2], 1e-6)
	assert.True(t, m.HasGeometricOffset)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, m.GeometricScaling)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, mathutil.TransformPoint(m.GeometricOffset(), mgl32.Vec3{}))
}

func TestToXYZKeepsRotation(t *testing.T) {
	deg := mgl32.Vec3{30, -40, 60}
	r := mathutil.Radians(deg)
	x, y, z := mathutil.RotX(r[0]), mathutil.RotY(r[1]), mathutil.RotZ(r[2])
	cases := map[RotationOrder]mgl32.Quat{
		OrderXZY: y.Mul(z).Mul(x),
		OrderYZX: x.Mul(z).Mul(y),
		OrderYXZ: z.Mul(x).Mul(y),
		OrderZXY: y.Mul(x).Mul(z),
		OrderZYX: x.Mul(y).Mul(z),
	}
	for order, want := range cases {
		got := mathutil.QuatFromDegrees(ToXYZ(order, deg))
		assert.True(t, mathutil.SameRotation(want, got, 1e-4), "order %d", order)
	}
	assert.Equal(t, deg, ToXYZ(OrderXYZ, deg))
	assert.Equal(t, deg, ToXYZ(OrderSphericXYZ, deg))
}

func TestUnsupportedRotationOrderKept(t *testing.T) {
	n := modelNode(t, "Null",
		p70("RotationOrder", fbx.Int32(int32(OrderSphericXYZ))),
		p70("Lcl Rotation", triple(0, 0, 90)...),
	)
	m := DecodeModel(n, quietLog())
	assert.True(t, mathutil.SameRotation(mathutil.RotZ(mathutil.PiOverTwo), m.Rotation, 1e-5))
	assert.False(t, m.IsLimbNode)
}

func TestLocalTransform(t *testing.T) {
	n := modelNode(t, "Mesh",
		p70("Lcl Translation", triple(1, 2, 3)...),
		p70("Lcl Scaling", triple(2, 2, 2)...),
	)
	m := DecodeModel(n, quietLog())
	local := m.LocalTransform()
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, mathutil.TransformPoint(local, mgl32.Vec3{}))
	assert.Equal(t, mgl32.Vec3{3, 2, 3}, mathutil.TransformPoint(local, mgl32.Vec3{1, 0, 0}))
}

func plainModel(name string, parent int, translation mgl32.Vec3) Model {
	return Model{
		Name:             name,
		ParentIndex:      parent,
		Translation:      translation,
		PreTransform:     mgl32.Ident4(),
		PreRotation:      mgl32.QuatIdent(),
		Rotation:         mgl32.QuatIdent(),
		PostRotation:     mgl32.QuatIdent(),
		PostTransform:    mgl32.Ident4(),
		GeometricScaling: mgl32.Vec3{1, 1, 1},
	}
}

func TestBuildJoints(t *testing.T) {
	models := []Model{
		plainModel("root", -1, mgl32.Vec3{0, 1, 0}),
		plainModel("spine", 0, mgl32.Vec3{0, 2, 0}),
		plainModel("arm", 1, mgl32.Vec3{1, 0, 0}),
	}
	joints := BuildJoints(models, JointOptions{
		Offset: mathutil.Translate(mgl32.Vec3{10, 0, 0}),
		IsFree: func(name string) bool { return name == "spine" },
	})
	require.Len(t, joints, 3)
	for i, j := range joints {
		assert.True(t, j.ParentIndex < i, "joint %d", i)
	}
	assert.Equal(t, mgl32.Vec3{11, 3, 0}, mathutil.ExtractTranslation(joints[2].Transform))
	assert.InDelta(t, 1, joints[2].DistanceToParent, 1e-6)
	assert.Zero(t, joints[0].DistanceToParent)

	assert.Empty(t, joints[0].FreeLineage)
	assert.Equal(t, []int{1}, joints[1].FreeLineage)
	assert.Equal(t, []int{2, 1}, joints[2].FreeLineage)
	assert.True(t, mgl32.Ident4().ApproxEqual(joints[2].BindTransform))
}

func TestBuildJointsUpAxisZ(t *testing.T) {
	joints := BuildJoints([]Model{plainModel("root", -1, mgl32.Vec3{0, 1, 0})}, JointOptions{
		Offset:  mgl32.Ident4(),
		UpAxisZ: true,
	})
	got := joints[0].Translation
	assert.InDelta(t, 0, got[1], 1e-6)
	assert.InDelta(t, -1, got[2], 1e-6)
}

type parentTable map[string][]string

func (p parentTable) Values(id string) []string { return p[id] }

func TestHierarchyWalks(t *testing.T) {
	a := plainModel("a", -1, mgl32.Vec3{1, 0, 0})
	b := plainModel("b", -1, mgl32.Vec3{0, 1, 0})
	models := map[string]*Model{"a": &a, "b": &b}
	parents := parentTable{"a": {"material", "b"}, "b": {"0"}}

	assert.Equal(t, "b", TopModelID(parents, models, "a", quietLog()))
	g := GlobalTransform(parents, models, "a", false, quietLog())
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, mathutil.ExtractTranslation(g))
	local := GlobalTransform(parents, models, "a", true, quietLog())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, mathutil.ExtractTranslation(local))

	loop := parentTable{"a": {"b"}, "b": {"a"}}
	assert.Equal(t, "b", TopModelID(loop, models, "a", quietLog()))
}

func identityJoints(n int) []geometry.Joint {
	joints := make([]geometry.Joint, n)
	for i := range joints {
		joints[i].ParentIndex = -1
		joints[i].BindTransform = mgl32.Ident4()
		joints[i].GeometricRotation = mgl32.QuatIdent()
	}
	return joints
}

func TestResolveMultiCluster(t *testing.T) {
	m := &geometry.Mesh{Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}}
	for j := 0; j < 6; j++ {
		m.Clusters = append(m.Clusters, geometry.Cluster{JointIndex: j})
	}
	skin := Skin{
		Mesh:       m,
		NewIndices: map[int][]int{0: {0}, 1: {1}, 2: {2}, 3: {3}},
		Influences: []Influence{
			{Indices: []int{0, 1}, Weights: []float32{0.1, 1}},
			{Indices: []int{0, 2}, Weights: []float32{0.2, 0.5}},
			{Indices: []int{0, 2}, Weights: []float32{0.3, 0.5}},
			{Indices: []int{0}, Weights: []float32{0.4}},
			{Indices: []int{0}, Weights: []float32{0.5}},
		},
		ModelTransform: mgl32.Ident4(),
	}
	joints := identityJoints(6)
	shapes := make([][]mgl32.Vec3, len(joints))
	dominant := ResolveClusters(skin, joints, shapes)
	assert.Equal(t, 0, dominant)

	// the fifth influence evicts the lightest slot
	assert.Equal(t, [4]int{4, 1, 2, 3}, m.ClusterIndices[0])
	assert.InDelta(t, 0.5/1.4, m.ClusterWeights[0][0], 1e-6)
	assert.Equal(t, [4]float32{0.5, 0.5, 0, 0}, m.ClusterWeights[2])
	assert.Equal(t, [4]int{1, 2, 5, 5}, m.ClusterIndices[2])

	// vertex 3 carries no weight and follows the mesh's own model
	assert.Equal(t, [4]int{5, 5, 5, 5}, m.ClusterIndices[3])
	assert.Equal(t, [4]float32{1, 0, 0, 0}, m.ClusterWeights[3])

	for i, w := range m.ClusterWeights {
		assert.InDelta(t, 1, w[0]+w[1]+w[2]+w[3], 1e-6, "vertex %d", i)
	}

	assert.Equal(t, []mgl32.Vec3{{1, 0, 0}}, shapes[0])
	assert.Empty(t, shapes[1])
	assert.Empty(t, shapes[2])
}

func TestResolveSingleCluster(t *testing.T) {
	m := &geometry.Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
		Clusters: []geometry.Cluster{{JointIndex: 1}},
	}
	joints := identityJoints(2)
	joints[1].HasGeometricOffset = true
	joints[1].GeometricTranslation = mgl32.Vec3{0, 0, 1}
	joints[1].GeometricScaling = mgl32.Vec3{1, 1, 1}
	joints[1].BindTransform = mathutil.Translate(mgl32.Vec3{0, 5, 0})

	shapes := make([][]mgl32.Vec3, 2)
	dominant := ResolveClusters(Skin{Mesh: m, ModelTransform: mgl32.Ident4()}, joints, shapes)
	assert.Equal(t, 1, dominant)
	assert.Equal(t, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}}, m.ClusterWeights)
	assert.Equal(t, [][4]int{{}, {}}, m.ClusterIndices)
	assert.Equal(t, []mgl32.Vec3{{0, -5, 0}, {1, -5, 0}}, shapes[1])
	assert.Equal(t, []mgl32.Vec3{{0, 0, 1}, {1, 0, 1}}, m.Vertices)
}
