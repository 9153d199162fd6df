// Package extract rebuilds engine geometry from a parsed document: it reads
// every object, then resolves the flat connection table into a skeleton,
// skinned meshes, blendshapes, materials and animation.
//
// An extraction is single-threaded and keeps all of its state in one
// session, so distinct documents may be imported concurrently.
package extract

import (
	"os"

	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/options"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrEmptyGeometry reports a document that parsed but yielded neither
// meshes nor joints.
var ErrEmptyGeometry = errors.New("extract: no meshes and no joints")

// Import parses data and extracts its geometry. Structural failures are
// returned as *fbx.FormatError; an empty result is returned together with
// an error wrapping ErrEmptyGeometry.
func Import(data []byte, opts options.Options, url string) (*geometry.Geometry, error) {
	tree, err := fbx.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "extract: parse %s", url)
	}
	return Extract(tree.Root(), opts, url)
}

// ImportFile reads and imports the document at path.
func ImportFile(path string, opts options.Options) (*geometry.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "extract: read %s", path)
	}
	return Import(data, opts, path)
}

// Extract resolves an already parsed tree.
func Extract(root fbx.Node, opts options.Options, url string) (*geometry.Geometry, error) {
	s := newSession(opts, url)
	g := s.extract(root)
	s.log.WithFields(logrus.Fields{
		"meshes":    len(g.Meshes),
		"joints":    len(g.Joints),
		"materials": len(g.Materials),
		"frames":    len(g.AnimationFrames),
		"warnings":  g.Warnings,
	}).Info("extract: geometry resolved")
	if g.IsEmpty() {
		return g, errors.Wrapf(ErrEmptyGeometry, "extract: %s", url)
	}
	return g, nil
}
