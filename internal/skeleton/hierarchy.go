package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// ParentMap lists the parents recorded for an ID, most recent first.
type ParentMap interface {
	Values(id string) []string
}

// nextModel returns the first parent of id that is a model and has not been
// visited.
func nextModel(parents ParentMap, models map[string]*Model, id string, visited map[string]bool, log logrus.FieldLogger) (string, bool) {
	for _, p := range parents.Values(id) {
		if visited[p] {
			log.WithField("id", id).Warn("skeleton: loop in parent chain ignored")
			continue
		}
		if _, ok := models[p]; ok {
			return p, true
		}
	}
	return "", false
}

// GlobalTransform walks from id up through its model ancestors and composes
// their local transforms. With localOnly set only the model's own transform
// is returned.
func GlobalTransform(parents ParentMap, models map[string]*Model, id string, localOnly bool, log logrus.FieldLogger) mgl32.Mat4 {
	global := mgl32.Ident4()
	visited := map[string]bool{}
	for id != "" {
		visited[id] = true
		m, ok := models[id]
		if !ok {
			break
		}
		global = m.LocalTransform().Mul4(global)
		if m.HasGeometricOffset {
			global = global.Mul4(m.GeometricOffset())
		}
		if localOnly {
			return global
		}
		id, _ = nextModel(parents, models, id, visited, log)
	}
	return global
}

// TopModelID returns the furthest model ancestor of id.
func TopModelID(parents ParentMap, models map[string]*Model, id string, log logrus.FieldLogger) string {
	visited := map[string]bool{}
	for {
		visited[id] = true
		next, ok := nextModel(parents, models, id, visited, log)
		if !ok {
			return id
		}
		id = next
	}
}
