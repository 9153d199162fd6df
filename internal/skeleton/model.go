// Package skeleton decodes model transforms, orders them into joints and
// resolves skin clusters against those joints.
package skeleton

import (
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/mathutil"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// RotationOrder is the Euler order a model's rotations are authored in.
type RotationOrder int

const (
	OrderXYZ RotationOrder = iota
	OrderXZY
	OrderYZX
	OrderYXZ
	OrderZXY
	OrderZYX
	OrderSphericXYZ
)

// Model is one decoded Model object. Transform pieces follow the
// Autodesk ordering T · Roff · Rp · Rpre · R · Rpost · Rp⁻¹ · Soff · Sp · S · Sp⁻¹.
type Model struct {
	ID          string
	Name        string
	ParentIndex int
	IsLimbNode  bool

	Translation   mgl32.Vec3
	PreTransform  mgl32.Mat4
	PreRotation   mgl32.Quat
	Rotation      mgl32.Quat
	PostRotation  mgl32.Quat
	PostTransform mgl32.Mat4
	RotationMin   mgl32.Vec3 // radians
	RotationMax   mgl32.Vec3

	HasGeometricOffset   bool
	GeometricTranslation mgl32.Vec3
	GeometricRotation    mgl32.Quat
	GeometricScaling     mgl32.Vec3
}

// rawTransform holds the authored values before they are combined.
type rawTransform struct {
	order                               RotationOrder
	translation, rotationOffset         mgl32.Vec3
	rotationPivot                       mgl32.Vec3
	preRotation, rotation, postRotation mgl32.Vec3 // degrees
	scale, scalePivot, scaleOffset      mgl32.Vec3
	rotationMin, rotationMax            mgl32.Vec3 // degrees
	minActive, maxActive                [3]bool
	geometricTranslation                mgl32.Vec3
	geometricRotation                   mgl32.Vec3
	geometricScaling                    mgl32.Vec3
	hasGeometricOffset                  bool
}

// DecodeModel reads a Model object's Properties60 or Properties70 block.
// Rotation order conversion happens once every property has been read, so
// the order may appear anywhere in the block.
func DecodeModel(object fbx.Node, log logrus.FieldLogger) Model {
	props := object.Props()
	raw := rawTransform{
		scale:            mgl32.Vec3{1, 1, 1},
		geometricScaling: mgl32.Vec3{1, 1, 1},
	}
	for _, a := range object.Attributes() {
		v := mathutil.Vec3From(fbx.Triple(a.Values, 0))
		switch a.Name {
		case "Lcl Translation":
			raw.translation = v
		case "RotationOrder":
			raw.order = RotationOrder(a.Value(0).Int())
		case "RotationOffset":
			raw.rotationOffset = v
		case "RotationPivot":
			raw.rotationPivot = v
		case "PreRotation":
			raw.preRotation = v
		case "Lcl Rotation":
			raw.rotation = v
		case "PostRotation":
			raw.postRotation = v
		case "ScalingPivot":
			raw.scalePivot = v
		case "Lcl Scaling":
			raw.scale = v
		case "ScalingOffset":
			raw.scaleOffset = v
		case "RotationMin":
			raw.rotationMin = v
		case "RotationMax":
			raw.rotationMax = v
		case "RotationMinX", "RotationMinY", "RotationMinZ":
			raw.minActive[a.Name[len(a.Name)-1]-'X'] = a.Value(0).Bool()
		case "RotationMaxX", "RotationMaxY", "RotationMaxZ":
			raw.maxActive[a.Name[len(a.Name)-1]-'X'] = a.Value(0).Bool()
		case "GeometricTranslation":
			raw.geometricTranslation = v
			raw.hasGeometricOffset = true
		case "GeometricRotation":
			raw.geometricRotation = v
			raw.hasGeometricOffset = true
		case "GeometricScaling":
			raw.geometricScaling = v
			raw.hasGeometricOffset = true
		}
	}

	id := fbx.ObjectID(props, 0)
	if raw.order != OrderXYZ {
		if raw.order < OrderXYZ || raw.order > OrderZYX {
			log.WithFields(logrus.Fields{"id": id, "order": int(raw.order)}).
				Warn("skeleton: unsupported rotation order, rotations kept as authored")
		} else {
			raw.preRotation = ToXYZ(raw.order, raw.preRotation)
			raw.rotation = ToXYZ(raw.order, raw.rotation)
			raw.postRotation = ToXYZ(raw.order, raw.postRotation)
		}
	}

	m := Model{
		ID:          id,
		Name:        fbx.ModelName(props),
		ParentIndex: -1,
		IsLimbNode:  len(props) >= 3 && props[2].String() == "LimbNode",
		Translation: raw.translation,
	}
	m.PreTransform = mathutil.Translate(raw.rotationOffset).Mul4(mathutil.Translate(raw.rotationPivot))
	m.PreRotation = mathutil.QuatFromDegrees(raw.preRotation)
	m.Rotation = mathutil.QuatFromDegrees(raw.rotation)
	m.PostRotation = mathutil.QuatFromDegrees(raw.postRotation).Inverse()
	m.PostTransform = mathutil.Translate(raw.rotationPivot.Mul(-1)).
		Mul4(mathutil.Translate(raw.scaleOffset)).
		Mul4(mathutil.Translate(raw.scalePivot)).
		Mul4(mathutil.Scale(raw.scale)).
		Mul4(mathutil.Translate(raw.scalePivot.Mul(-1)))

	for i := 0; i < 3; i++ {
		m.RotationMin[i], m.RotationMax[i] = -180, 180
		if raw.minActive[i] {
			m.RotationMin[i] = raw.rotationMin[i]
		}
		if raw.maxActive[i] {
			m.RotationMax[i] = raw.rotationMax[i]
		}
	}
	m.RotationMin = mathutil.Radians(m.RotationMin)
	m.RotationMax = mathutil.Radians(m.RotationMax)

	m.HasGeometricOffset = raw.hasGeometricOffset
	m.GeometricTranslation = raw.geometricTranslation
	m.GeometricRotation = mathutil.QuatFromDegrees(raw.geometricRotation)
	m.GeometricScaling = raw.geometricScaling
	return m
}

// ToXYZ re-expresses Euler angles (degrees) authored in order as XYZ
// angles describing the same rotation.
func ToXYZ(order RotationOrder, deg mgl32.Vec3) mgl32.Vec3 {
	r := mathutil.Radians(deg)
	x, y, z := mathutil.RotX(r[0]), mathutil.RotY(r[1]), mathutil.RotZ(r[2])
	var q mgl32.Quat
	switch order {
	case OrderXZY:
		q = y.Mul(z.Mul(x))
	case OrderYZX:
		q = x.Mul(z.Mul(y))
	case OrderYXZ:
		q = z.Mul(x.Mul(y))
	case OrderZXY:
		q = y.Mul(x.Mul(z))
	case OrderZYX:
		q = x.Mul(y.Mul(z))
	default:
		return deg
	}
	return mathutil.SafeEulerDegrees(q)
}

// LocalTransform is T · Rpre·R·Rpost with the pivot and scale terms.
func (m *Model) LocalTransform() mgl32.Mat4 {
	rot := m.PreRotation.Mul(m.Rotation).Mul(m.PostRotation)
	return mathutil.Translate(m.Translation).
		Mul4(m.PreTransform).
		Mul4(rot.Mat4()).
		Mul4(m.PostTransform)
}

// GeometricOffset is the transform applied to geometry but not to children.
func (m *Model) GeometricOffset() mgl32.Mat4 {
	return mathutil.Translate(m.GeometricTranslation).
		Mul4(m.GeometricRotation.Mat4()).
		Mul4(mathutil.Scale(m.GeometricScaling))
}
