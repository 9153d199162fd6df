// Package geometry holds the engine-side representation produced by the
// importer: joints, meshes, materials, animation and bounds.
package geometry

import (
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
)

// Joint is one node of the skeleton, in depth-first order.
type Joint struct {
	Name        string
	ParentIndex int // -1 for roots; always lower than the joint's own index
	IsFree      bool
	FreeLineage []int

	Translation   mgl32.Vec3
	PreTransform  mgl32.Mat4
	PreRotation   mgl32.Quat
	Rotation      mgl32.Quat
	PostRotation  mgl32.Quat
	PostTransform mgl32.Mat4
	Transform     mgl32.Mat4 // model space, including the geometry offset
	RotationMin   mgl32.Vec3 // radians
	RotationMax   mgl32.Vec3

	InverseDefaultRotation mgl32.Quat
	InverseBindRotation    mgl32.Quat
	BindTransform          mgl32.Mat4
	BindTransformFound     bool
	DistanceToParent       float32
	IsSkeletonJoint        bool

	HasGeometricOffset   bool
	GeometricTranslation mgl32.Vec3
	GeometricRotation    mgl32.Quat
	GeometricScaling     mgl32.Vec3
}

// Cluster binds a mesh to one joint.
type Cluster struct {
	JointIndex        int
	InverseBindMatrix mgl32.Mat4
}

// MeshPart is the set of faces of a mesh sharing one material.
type MeshPart struct {
	QuadIndices          []int // four per quad, as authored
	QuadTrianglesIndices []int // two triangles per quad: (0,1,3), (1,2,3)
	TriangleIndices      []int
	MaterialID           string
}

// Blendshape is a sparse morph target.
type Blendshape struct {
	Indices  []int
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
}

// Mesh is deduplicated vertex data split into parts.
type Mesh struct {
	MeshIndex       int
	Parts           []MeshPart
	Vertices        []mgl32.Vec3
	Normals         []mgl32.Vec3
	Tangents        []mgl32.Vec3
	Colors          []mgl32.Vec3
	TexCoords       []mgl32.Vec2
	TexCoords1      []mgl32.Vec2
	OriginalIndices []int // source control point of each output vertex

	Clusters       []Cluster
	ClusterIndices [][4]int // per vertex, into Clusters
	ClusterWeights [][4]float32
	Blendshapes    []Blendshape

	ModelTransform mgl32.Mat4
	MeshExtents    mathutil.Extents
	IsEye          bool
}

// TriangleCount returns the number of triangles emitted for the mesh.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Parts {
		n += (len(p.QuadTrianglesIndices) + len(p.TriangleIndices)) / 3
	}
	return n
}

// Texture references an image by path or inlined content.
type Texture struct {
	ID              string
	Name            string
	Filename        string
	Content         []byte
	Transform       mathutil.Transform
	TexcoordSet     int
	TexcoordSetName string
	IsBumpmap       bool
}

// IsNull reports whether the texture slot is unbound.
func (t Texture) IsNull() bool {
	return t.Name == "" && t.Filename == "" && len(t.Content) == 0
}

// Material is a finalized surface description.
type Material struct {
	ID           string
	Name         string
	ShadingModel string

	DiffuseColor      mgl32.Vec3
	DiffuseFactor     float32
	SpecularColor     mgl32.Vec3
	SpecularFactor    float32
	EmissiveColor     mgl32.Vec3
	EmissiveFactor    float32
	EmissiveIntensity float32
	AmbientFactor     float32
	Shininess         float32
	Opacity           float32
	Roughness         float32
	Metallic          float32
	Scattering        float32

	IsPBS           bool
	UseNormalMap    bool
	UseAlbedoMap    bool
	UseRoughnessMap bool
	UseMetallicMap  bool
	UseEmissiveMap  bool
	UseOcclusionMap bool

	AlbedoTexture     Texture
	OpacityTexture    Texture
	NormalTexture     Texture
	SpecularTexture   Texture
	MetallicTexture   Texture
	RoughnessTexture  Texture
	GlossTexture      Texture
	EmissiveTexture   Texture
	OcclusionTexture  Texture
	LightmapTexture   Texture
	ScatteringTexture Texture
	LightmapParams    mgl32.Vec2

	// Final values after consolidation.
	Albedo        mgl32.Vec3
	Emissive      mgl32.Vec3
	FinalOpacity  float32
	FinalRough    float32
	FinalMetallic float32
	Unlit         bool
}

// AnimationFrame samples every joint at one frame.
type AnimationFrame struct {
	Rotations    []mgl32.Quat
	Translations []mgl32.Vec3
}

// SittingPoint is a named seat pose.
type SittingPoint struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Light is a light attribute found in the document.
type Light struct {
	ID        string
	Intensity float32
	Color     mgl32.Vec3
}

// Geometry is the result of one import.
type Geometry struct {
	OriginalURL     string
	Author          string
	ApplicationName string
	FBXVersion      int

	Joints            []Joint
	JointIndices      map[string]int
	HasSkeletonJoints bool

	Meshes    []Mesh
	Materials map[string]*Material

	AnimationFrames []AnimationFrame
	SittingPoints   []SittingPoint
	Lights          []Light

	Offset          mgl32.Mat4
	UnitScaleFactor float32
	AmbientColor    mgl32.Vec3
	UpAxis          int

	BindExtents mathutil.Extents
	MeshExtents mathutil.Extents

	// ShapeVertices holds, per joint, the points used to fit its k-DOP.
	ShapeVertices [][]mgl32.Vec3

	MeshIndicesToModelNames map[int]string
	BlendshapeChannelNames  []string

	LeftEyeJointIndex   int
	RightEyeJointIndex  int
	NeckJointIndex      int
	RootJointIndex      int
	LeanJointIndex      int
	HeadJointIndex      int
	LeftHandJointIndex  int
	RightHandJointIndex int
	LeftToeJointIndex   int
	RightToeJointIndex  int
	HumanIKJointIndices []int

	NeckPivot     mgl32.Vec3
	PalmDirection mgl32.Vec3

	// Warnings counts semantic gaps recovered during extraction.
	Warnings int
}

// IsEmpty reports whether the import produced neither meshes nor joints.
func (g *Geometry) IsEmpty() bool {
	return len(g.Meshes) == 0 && len(g.Joints) == 0
}

// JointIndex returns the index of the named joint.
func (g *Geometry) JointIndex(name string) (int, bool) {
	i, ok := g.JointIndices[name]
	return i, ok
}

// JointNames lists joint names in index order.
func (g *Geometry) JointNames() []string {
	names := make([]string, len(g.Joints))
	for i, j := range g.Joints {
		names[i] = j.Name
	}
	return names
}

// HasBlendedMeshes reports whether any mesh carries blendshapes.
func (g *Geometry) HasBlendedMeshes() bool {
	for i := range g.Meshes {
		if len(g.Meshes[i].Blendshapes) > 0 {
			return true
		}
	}
	return false
}

// ModelNameOfMesh returns the name of the model owning mesh i.
func (g *Geometry) ModelNameOfMesh(i int) string {
	return g.MeshIndicesToModelNames[i]
}
