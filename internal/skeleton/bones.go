package skeleton

import (
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
)

// JointOptions controls how ordered models become joints.
type JointOptions struct {
	// Offset is applied to every root.
	Offset mgl32.Mat4
	// IsFree reports joints excluded from IK chains.
	IsFree func(name string) bool
	// UpAxisZ turns roots from Z-up to Y-up.
	UpAxisZ bool
}

// BuildJoints converts models, already in depth-first order with parent
// indices set, into joints with composed model-space transforms. A parent
// always precedes its children, so each transform chains onto one that is
// already final.
func BuildJoints(models []Model, opts JointOptions) []geometry.Joint {
	joints := make([]geometry.Joint, 0, len(models))
	for i := range models {
		m := &models[i]
		j := geometry.Joint{
			Name:                 m.Name,
			ParentIndex:          m.ParentIndex,
			Translation:          m.Translation,
			PreTransform:         m.PreTransform,
			PreRotation:          m.PreRotation,
			Rotation:             m.Rotation,
			PostRotation:         m.PostRotation,
			PostTransform:        m.PostTransform,
			RotationMin:          m.RotationMin,
			RotationMax:          m.RotationMax,
			HasGeometricOffset:   m.HasGeometricOffset,
			GeometricTranslation: m.GeometricTranslation,
			GeometricRotation:    m.GeometricRotation,
			GeometricScaling:     m.GeometricScaling,
			IsSkeletonJoint:      m.IsLimbNode,
		}
		if opts.IsFree != nil {
			j.IsFree = opts.IsFree(m.Name)
		}
		j.FreeLineage = freeLineage(joints, len(joints), j.ParentIndex, j.IsFree)

		if opts.UpAxisZ && j.ParentIndex == -1 {
			j.Rotation = j.Rotation.Mul(mathutil.UpAxisZRotation)
			j.Translation = mathutil.UpAxisZRotation.Rotate(j.Translation)
		}

		combined := j.PreRotation.Mul(j.Rotation).Mul(j.PostRotation)
		local := mathutil.Translate(j.Translation).
			Mul4(j.PreTransform).
			Mul4(combined.Mat4()).
			Mul4(j.PostTransform)
		if j.ParentIndex == -1 {
			j.Transform = opts.Offset.Mul4(local)
			j.InverseDefaultRotation = combined.Inverse()
		} else {
			parent := &joints[j.ParentIndex]
			j.Transform = parent.Transform.Mul4(local)
			j.InverseDefaultRotation = combined.Inverse().Mul(parent.InverseDefaultRotation)
			j.DistanceToParent = mathutil.ExtractTranslation(parent.Transform).
				Sub(mathutil.ExtractTranslation(j.Transform)).Len()
		}
		j.InverseBindRotation = j.InverseDefaultRotation
		j.BindTransform = mgl32.Ident4()
		joints = append(joints, j)
	}
	return joints
}

// freeLineage lists index followed by its ancestors, cut after the
// furthest free one. It is empty when neither the joint nor any ancestor
// is free.
func freeLineage(joints []geometry.Joint, index, parent int, isFree bool) []int {
	lineage := []int{index}
	last := -1
	if isFree {
		last = 0
	}
	for p := parent; p != -1; p = joints[p].ParentIndex {
		if joints[p].IsFree {
			last = len(lineage)
		}
		lineage = append(lineage, p)
	}
	return lineage[:last+1]
}
