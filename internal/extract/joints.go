package extract

import (
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/skeleton"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

type jointRole int

const (
	roleLeftEye jointRole = iota
	roleRightEye
	roleNeck
	roleRoot
	roleLean
	roleHead
	roleLeftHand
	roleRightHand
	roleLeftToe
	roleRightToe
	numRoles
)

// namedJoint finds a special joint either through the joint mapping under
// key or, when key is unmapped, by one of the conventional names.
type namedJoint struct {
	key       string
	fallbacks []string
}

// namedJoints is tested in role order; a model takes the first role it matches.
var namedJoints = [numRoles]namedJoint{
	roleLeftEye:   {"jointEyeLeft", []string{"EyeL", "joint_Leye"}},
	roleRightEye:  {"jointEyeRight", []string{"EyeR", "joint_Reye"}},
	roleNeck:      {"jointNeck", []string{"NeckRot", "joint_neck"}},
	roleRoot:      {"jointRoot", nil},
	roleLean:      {"jointLean", nil},
	roleHead:      {"jointHead", nil},
	roleLeftHand:  {"jointLeftHand", []string{"LeftHand", "joint_L_hand"}},
	roleRightHand: {"jointRightHand", []string{"RightHand", "joint_R_hand"}},
	roleLeftToe:   {"", []string{"LeftToe", "joint_L_toe", "LeftToe_End"}},
	roleRightToe:  {"", []string{"RightToe", "joint_R_toe", "RightToe_End"}},
}

// humanIKJoints are the joints an IK solver expects, in slot order.
var humanIKJoints = []string{
	"RightHand", "RightForeArm", "RightArm", "Head",
	"LeftArm", "LeftForeArm", "LeftHand", "Neck",
	"Spine", "Hips", "RightUpLeg", "LeftUpLeg",
	"RightLeg", "LeftLeg", "RightFoot", "LeftFoot",
}

func (s *session) matchRole(name string) (jointRole, bool) {
	for role := jointRole(0); role < numRoles; role++ {
		nj := namedJoints[role]
		if nj.key != "" {
			if mapped, ok := s.opts.Joint[nj.key]; ok && mapped != "" {
				if name == fbx.StripPrefix(mapped) {
					return role, true
				}
				continue
			}
		}
		for _, f := range nj.fallbacks {
			if name == f {
				return role, true
			}
		}
	}
	return 0, false
}

func (s *session) humanIKNames() []string {
	names := make([]string, len(humanIKJoints))
	for i, n := range humanIKJoints {
		names[i] = s.opts.JointName(n, n)
	}
	return names
}

// buildJoints turns the ordered model IDs into joints, then samples the
// animation curves bound to them.
func (s *session) buildJoints(modelIDs []string) {
	ordered := make([]skeleton.Model, len(modelIDs))
	for i, id := range modelIDs {
		m := *s.models[id]
		m.ID = id
		m.Name = s.modelNames[id]
		ordered[i] = m
	}

	joints := skeleton.BuildJoints(ordered, skeleton.JointOptions{
		Offset:  s.geo.Offset,
		IsFree:  s.opts.IsFreeJoint,
		UpAxisZ: s.upAxisZ,
	})
	s.geo.AnimationFrames = s.sampleAnimation(modelIDs, joints)

	if s.version >= 0 && s.version < 7500 && len(s.geo.AnimationFrames) > 0 {
		// older exporters bake the rest pose into the first frame
		first := s.geo.AnimationFrames[0]
		for i := range joints {
			joints[i].Translation = first.Translations[i]
			joints[i].Rotation = first.Rotations[i]
		}
	}

	for i := range joints {
		s.geo.JointIndices[joints[i].Name] = i
		if joints[i].IsSkeletonJoint {
			s.geo.HasSkeletonJoints = true
		}
	}
	s.geo.Joints = joints

	n := len(joints)
	if n < 1 {
		n = 1
	}
	s.geo.ShapeVertices = make([][]mgl32.Vec3, n)
}

func (s *session) curveFor(table map[string]string, modelID string) [3][]float32 {
	var out [3][]float32
	node, ok := table[modelID]
	if !ok {
		return out
	}
	for axis, comps := range [3]map[string]string{s.xComponents, s.yComponents, s.zComponents} {
		out[axis] = s.curves[comps[node]]
	}
	return out
}

func sample(curve []float32, frame int, fallback float32) float32 {
	if len(curve) == 0 {
		return fallback
	}
	return curve[frame%len(curve)]
}

// sampleAnimation produces one frame per key of the longest curve in the
// document; shorter curves wrap.
func (s *session) sampleAnimation(modelIDs []string, joints []geometry.Joint) []geometry.AnimationFrame {
	rotations := make([][3][]float32, len(modelIDs))
	translations := make([][3][]float32, len(modelIDs))
	for i, id := range modelIDs {
		rotations[i] = s.curveFor(s.localRotations, id)
		translations[i] = s.curveFor(s.localTranslations, id)
	}
	frames := 1
	for _, c := range s.curves {
		frames = max(frames, len(c))
	}
	if len(modelIDs) == 0 {
		return nil
	}

	out := make([]geometry.AnimationFrame, frames)
	for f := range out {
		out[f].Rotations = make([]mgl32.Quat, len(joints))
		out[f].Translations = make([]mgl32.Vec3, len(joints))
		for i := range joints {
			rest := mathutil.SafeEulerDegrees(joints[i].Rotation)
			r := rotations[i]
			deg := mgl32.Vec3{sample(r[0], f, rest[0]), sample(r[1], f, rest[1]), sample(r[2], f, rest[2])}
			out[f].Rotations[i] = mathutil.QuatFromDegrees(deg)

			t := translations[i]
			tr := joints[i].Translation
			out[f].Translations[i] = mgl32.Vec3{sample(t[0], f, tr[0]), sample(t[1], f, tr[1]), sample(t[2], f, tr[2])}
		}
	}
	s.log.WithFields(logrus.Fields{"frames": frames, "joints": len(joints)}).Debug("extract: animation sampled")
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// findSpecialJoints resolves role and IK joint indices and the neck pivot.
func (s *session) findSpecialJoints(modelIDs []string) {
	g := s.geo
	targets := [numRoles]*int{
		roleLeftEye:   &g.LeftEyeJointIndex,
		roleRightEye:  &g.RightEyeJointIndex,
		roleNeck:      &g.NeckJointIndex,
		roleRoot:      &g.RootJointIndex,
		roleLean:      &g.LeanJointIndex,
		roleHead:      &g.HeadJointIndex,
		roleLeftHand:  &g.LeftHandJointIndex,
		roleRightHand: &g.RightHandJointIndex,
		roleLeftToe:   &g.LeftToeJointIndex,
		roleRightToe:  &g.RightToeJointIndex,
	}
	for role, p := range targets {
		*p = -1
		if id := s.roleIDs[role]; id != "" {
			*p = indexOf(modelIDs, id)
		}
	}

	g.HumanIKJointIndices = make([]int, len(s.humanIKIDs))
	for i, id := range s.humanIKIDs {
		g.HumanIKJointIndices[i] = -1
		if id != "" {
			g.HumanIKJointIndices[i] = indexOf(modelIDs, id)
		}
	}

	if g.NeckJointIndex >= 0 && g.NeckJointIndex < len(g.Joints) {
		g.NeckPivot = mathutil.ExtractTranslation(g.Joints[g.NeckJointIndex].Transform)
	}
}
