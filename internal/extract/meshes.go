package extract

import (
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/material"
	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/mesh"
	"fbx-model-importer/internal/options"
	"fbx-model-importer/internal/skeleton"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

func (s *session) consolidateMaterials() {
	for _, id := range sortedKeys(s.materials) {
		m := s.materials[id]
		var override *options.MaterialOverride
		if o, ok := s.opts.MaterialMap[m.Name]; ok {
			override = &o
		}
		material.Consolidate(m, s.channels, s.textures, s.lightmap, override)
		s.geo.Materials[id] = m
	}
}

// textures lists every texture slot of m for UV set matching.
func textures(m *geometry.Material) []*geometry.Texture {
	return []*geometry.Texture{
		&m.AlbedoTexture, &m.OpacityTexture, &m.NormalTexture, &m.SpecularTexture,
		&m.MetallicTexture, &m.RoughnessTexture, &m.GlossTexture, &m.EmissiveTexture,
		&m.OcclusionTexture, &m.LightmapTexture, &m.ScatteringTexture,
	}
}

// bindPartMaterials assigns material children of modelID to the mesh parts
// by their material slot. Children are visited oldest first.
func (s *session) bindPartMaterials(ex *mesh.Extracted, modelID string) {
	kids := s.children.Values(modelID)
	slot := 0
	for i := len(kids) - 1; i >= 0; i-- {
		m, ok := s.geo.Materials[kids[i]]
		if !ok {
			continue
		}
		for j := range ex.Mesh.Parts {
			if j < len(ex.PartMaterialTextures) && ex.PartMaterialTextures[j][0] == slot {
				ex.Mesh.Parts[j].MaterialID = m.ID
			}
		}
		slot++
	}
}

// resolveMeshes places every mesh in model space and binds its materials
// and clusters.
func (s *session) resolveMeshes(modelIDs []string) {
	joints := s.geo.Joints
	eyes := map[int]bool{}
	if s.geo.LeftEyeJointIndex >= 0 {
		eyes[s.geo.LeftEyeJointIndex] = true
	}
	if s.geo.RightEyeJointIndex >= 0 {
		eyes[s.geo.RightEyeJointIndex] = true
	}

	for _, meshID := range sortedKeys(s.meshes) {
		ex := s.meshes[meshID]
		m := &ex.Mesh
		modelID := meshID
		if _, ok := s.models[meshID]; !ok {
			modelID = s.parents.Value(meshID)
		}
		mt := skeleton.GlobalTransform(s.parents, s.models, modelID, s.geo.ApplicationName == "mixamo.com", s.log)

		m.MeshExtents = mathutil.NewExtents()
		for _, v := range m.Vertices {
			p := mathutil.TransformPoint(mt, v)
			s.geo.MeshExtents.AddPoint(p)
			m.MeshExtents.AddPoint(p)
		}
		m.ModelTransform = mt

		s.bindPartMaterials(ex, modelID)
		hasNormalMap := false
		for _, part := range m.Parts {
			mat, ok := s.geo.Materials[part.MaterialID]
			if !ok {
				continue
			}
			for _, t := range textures(mat) {
				if !t.IsNull() {
					material.MatchUVSet(t, ex.TexcoordSetMap)
				}
			}
			if !mat.NormalTexture.IsNull() {
				hasNormalMap = true
			}
		}
		if hasNormalMap && ex.HasTexCoords {
			mesh.GenerateTangents(m)
		}

		skin := skeleton.Skin{Mesh: m, NewIndices: ex.NewIndices, ModelTransform: mt}
		for _, child := range s.children.Values(meshID) {
			for _, clusterID := range s.children.Values(child) {
				c, ok := s.clusters[clusterID]
				if !ok {
					continue
				}
				s.bindCluster(&skin, c, clusterID, modelIDs)
			}
		}

		rootIndex := indexOf(modelIDs, modelID)
		if rootIndex < 0 {
			s.log.WithFields(logrus.Fields{"mesh": meshID, "model": modelID}).Debug("extract: mesh model is not a joint, bound to joint 0")
			rootIndex = 0
		}
		m.Clusters = append(m.Clusters, geometry.Cluster{JointIndex: rootIndex, InverseBindMatrix: mgl32.Ident4()})

		dominant := skeleton.ResolveClusters(skin, joints, s.geo.ShapeVertices)
		m.IsEye = dominant >= 0 && eyes[dominant]

		s.geo.Meshes = append(s.geo.Meshes, *m)
	}
	s.geo.BindExtents = s.bindExtents()
}

func (s *session) bindCluster(skin *skeleton.Skin, c *cluster, clusterID string, modelIDs []string) {
	m := skin.Mesh
	jointIndex := indexOf(modelIDs, s.children.Value(clusterID))
	if jointIndex < 0 {
		s.warn(logrus.Fields{"cluster": clusterID}, "extract: cluster joint not found, bound to joint 0")
		jointIndex = 0
	}
	m.Clusters = append(m.Clusters, geometry.Cluster{
		JointIndex:        jointIndex,
		InverseBindMatrix: mathutil.WithAffineRow(c.transformLink.Inv().Mul4(skin.ModelTransform)),
	})
	skin.Influences = append(skin.Influences, skeleton.Influence{Indices: c.indices, Weights: c.weights})

	if jointIndex < len(s.geo.Joints) {
		j := &s.geo.Joints[jointIndex]
		j.InverseBindRotation = mathutil.QuatFromMatrix(c.transformLink).Inverse()
		j.BindTransform = c.transformLink
		j.BindTransformFound = true
	}
}

func (s *session) bindExtents() mathutil.Extents {
	e := mathutil.NewExtents()
	for _, j := range s.geo.Joints {
		if j.BindTransformFound {
			e.AddPoint(mathutil.ExtractTranslation(s.geo.Offset.Mul4(j.BindTransform)))
		}
	}
	return e
}

func (s *session) mapMeshNames() {
	for _, meshID := range sortedKeys(s.meshes) {
		ex := s.meshes[meshID]
		s.geo.MeshIndicesToModelNames[ex.Mesh.MeshIndex] = s.modelNames[s.ooChildToParent[meshID]]
	}
}

// applyUpAxis turns a Z-up scene into Y-up. Joints were turned while they
// were built.
func (s *session) applyUpAxis() {
	if !s.upAxisZ {
		return
	}
	rot := mathutil.UpAxisZRotation.Mat4()
	s.geo.MeshExtents.Transform(rot)
	s.geo.BindExtents.Transform(rot)
	for i := range s.geo.Meshes {
		m := &s.geo.Meshes[i]
		m.ModelTransform = m.ModelTransform.Mul4(rot)
		m.MeshExtents.Transform(rot)
	}
}

// readMappingExtras applies the palm direction and sitting points of the
// import options.
func (s *session) readMappingExtras() {
	s.geo.PalmDirection = mathutil.ParseVec3(s.opts.PalmDirection)
	for _, name := range sortedKeys(s.opts.Sit) {
		v := s.opts.Sit[name]
		p := geometry.SittingPoint{Name: name, Rotation: mgl32.QuatIdent()}
		if len(v) > 0 {
			p.Position = mathutil.ParseVec3(v[0])
		}
		if len(v) > 1 {
			p.Rotation = mathutil.QuatFromDegrees(mathutil.ParseVec3(v[1]))
		}
		s.geo.SittingPoints = append(s.geo.SittingPoints, p)
	}
}
