package extract

import (
	"sort"

	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/skeleton"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// attachBlendshapes routes each standalone shape through its channel and
// blendshape deformer to the mesh that owns it.
func (s *session) attachBlendshapes() {
	for _, sh := range s.shapes {
		channel := s.parents.Value(sh.id)
		deformer := s.parents.Value(channel)
		meshID := s.parents.Value(deformer)
		ex, ok := s.meshes[meshID]
		if !ok {
			s.warn(logrus.Fields{"shape": sh.id, "channel": channel}, "extract: blendshape without mesh skipped")
			continue
		}
		ex.AddBlendshapes(sh.shape, s.channelIndices[channel])
	}
}

// computeOffset builds the placement transform from the import options.
func (s *session) computeOffset() {
	o := s.opts
	scale := o.Scale * s.unitScaleFactor * 0.01
	s.geo.Offset = mathutil.Translate(mgl32.Vec3{o.TX, o.TY, o.TZ}).
		Mul4(mathutil.QuatFromDegrees(mgl32.Vec3{o.RX, o.RY, o.RZ}).Mat4()).
		Mul4(mathutil.Scale(mgl32.Vec3{scale, scale, scale}))
}

func (s *session) topModelID(id string) string {
	return skeleton.TopModelID(s.parents, s.models, id, s.log)
}

// clusterOf returns the first cluster deforming the mesh of model id. The
// deformer hangs off the model in 6.x documents and off its Geometry in 7.x
// ones, so clusters are looked for two and three levels down.
func (s *session) clusterOf(id string) (string, bool) {
	level := s.children.Values(id)
	for depth := 0; depth < 2; depth++ {
		var next []string
		for _, parent := range level {
			for _, c := range s.children.Values(parent) {
				if _, ok := s.clusters[c]; ok {
					return c, true
				}
				next = append(next, c)
			}
		}
		level = next
	}
	return "", false
}

// orderModels returns every model ID in depth-first order, each root
// followed by its subtree and every parent ahead of its children.
func (s *session) orderModels() []string {
	ids := sortedKeys(s.models)

	for _, id := range ids {
		// a skinned model hangs off the skeleton that deforms it
		if clusterID, ok := s.clusterOf(id); ok {
			top := s.topModelID(s.children.Value(clusterID))
			old := s.parents.Take(id)
			s.children.Remove(old, id)
			s.parents.Insert(id, top)
		}
		if parent := s.parents.Value(id); !s.children.Contains(parent, id) {
			s.children.Insert(parent, id)
		}
	}

	remaining := make(map[string]bool, len(ids))
	for _, id := range ids {
		remaining[id] = true
		s.models[id].ParentIndex = -1
	}
	var ordered []string
	var appendIDs func(id string)
	appendIDs = func(id string) {
		parentIndex := -1
		if remaining[id] {
			ordered = append(ordered, id)
			delete(remaining, id)
			parentIndex = len(ordered) - 1
		}
		for _, child := range s.children.Values(id) {
			if !remaining[child] {
				continue
			}
			if m := s.models[child]; m.ParentIndex == -1 {
				m.ParentIndex = parentIndex
				appendIDs(child)
			}
		}
	}

	for len(remaining) > 0 {
		first := smallest(remaining)
		top := s.topModelID(first)
		appendIDs(s.parents.Value(top))
		if remaining[first] {
			s.warn(logrus.Fields{"id": first}, "extract: unreachable model added as root")
			appendIDs(first)
		}
	}
	return ordered
}

func smallest(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
