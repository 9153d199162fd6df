package skeleton

import (
	"math"
	"sort"

	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxInfluences is the number of joint slots per vertex.
const MaxInfluences = 4

// ShapeWeightThreshold is the cumulative weight a vertex needs for a joint
// before it counts towards that joint's bounding shape.
const ShapeWeightThreshold = 0.99

// Influence is the raw weight table of one cluster, against control points.
type Influence struct {
	Indices []int
	Weights []float32
}

// Skin ties a mesh to the cluster tables that deform it. Influences is
// parallel to the leading entries of Mesh.Clusters; the last cluster binds
// the mesh to its own model and has no influence table.
type Skin struct {
	Mesh           *geometry.Mesh
	NewIndices     map[int][]int
	Influences     []Influence
	ModelTransform mgl32.Mat4
}

// ResolveClusters fills the per-vertex cluster slots of s.Mesh and appends
// joint-frame shape points to shapes. It returns the index of the joint
// carrying the most total weight.
func ResolveClusters(s Skin, joints []geometry.Joint, shapes [][]mgl32.Vec3) int {
	m := s.Mesh
	if len(m.Clusters) == 0 {
		return -1
	}
	if len(s.Influences) > 1 {
		return resolveMulti(s, joints, shapes)
	}

	jointIndex := m.Clusters[0].JointIndex
	m.ClusterIndices = make([][4]int, len(m.Vertices))
	m.ClusterWeights = make([][4]float32, len(m.Vertices))
	for i := range m.ClusterWeights {
		m.ClusterWeights[i][0] = 1
	}
	if jointIndex < 0 || jointIndex >= len(joints) {
		return jointIndex
	}
	joint := &joints[jointIndex]
	meshToJoint := joint.BindTransform.Inv().Mul4(s.ModelTransform)
	for _, v := range m.Vertices {
		shapes[jointIndex] = append(shapes[jointIndex], mathutil.TransformPoint(meshToJoint, v))
	}
	if joint.HasGeometricOffset {
		offset := mathutil.Translate(joint.GeometricTranslation).
			Mul4(joint.GeometricRotation.Mat4()).
			Mul4(mathutil.Scale(joint.GeometricScaling))
		for i, v := range m.Vertices {
			m.Vertices[i] = mathutil.TransformPoint(offset, v)
		}
	}
	return jointIndex
}

func resolveMulti(s Skin, joints []geometry.Joint, shapes [][]mgl32.Vec3) int {
	m := s.Mesh
	n := len(m.Vertices)
	m.ClusterIndices = make([][4]int, n)
	m.ClusterWeights = make([][4]float32, n)
	root := len(m.Clusters) - 1
	for i := range m.ClusterIndices {
		m.ClusterIndices[i] = [4]int{root, root, root, root}
	}

	// cumulative weight per joint per output vertex
	cumulative := map[int][]float32{}
	dominant := m.Clusters[0].JointIndex
	var maxWeight float32

	for ci, inf := range s.Influences {
		jointIndex := m.Clusters[ci].JointIndex
		acc := cumulative[jointIndex]
		if acc == nil {
			acc = make([]float32, n)
			cumulative[jointIndex] = acc
		}

		var total float32
		for k, old := range inf.Indices {
			if k >= len(inf.Weights) {
				break
			}
			weight := inf.Weights[k]
			total += weight
			for _, v := range s.NewIndices[old] {
				acc[v] += weight
				placeWeight(&m.ClusterIndices[v], &m.ClusterWeights[v], ci, weight)
			}
		}
		if total > maxWeight {
			maxWeight = total
			dominant = jointIndex
		}
	}

	order := make([]int, 0, len(cumulative))
	for j := range cumulative {
		order = append(order, j)
	}
	sort.Ints(order)
	for _, j := range order {
		if j < 0 || j >= len(joints) {
			continue
		}
		meshToJoint := joints[j].BindTransform.Inv().Mul4(s.ModelTransform)
		for v, w := range cumulative[j] {
			if w > ShapeWeightThreshold {
				shapes[j] = append(shapes[j], mathutil.TransformPoint(meshToJoint, m.Vertices[v]))
			}
		}
	}

	for i := range m.ClusterWeights {
		w := &m.ClusterWeights[i]
		total := w[0] + w[1] + w[2] + w[3]
		if total == 0 {
			// unweighted vertices follow the mesh's own model
			w[0] = 1
			continue
		}
		if total != 1 {
			for k := range w {
				w[k] /= total
			}
		}
	}
	return dominant
}

// placeWeight puts weight into the first empty slot. When every slot is
// taken it replaces the lightest one, if weight is heavier. The outcome
// depends on the order clusters are applied in.
func placeWeight(indices *[4]int, weights *[4]float32, cluster int, weight float32) {
	lowest := -1
	lowestWeight := float32(math.MaxFloat32)
	for k := 0; k < MaxInfluences; k++ {
		if weights[k] == 0 {
			indices[k] = cluster
			weights[k] = weight
			return
		}
		if weights[k] < lowestWeight {
			lowest = k
			lowestWeight = weights[k]
		}
	}
	if weight > lowestWeight {
		indices[lowest] = cluster
		weights[lowest] = weight
	}
}
