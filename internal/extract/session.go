package extract

import (
	"sort"

	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/material"
	"fbx-model-importer/internal/mathutil"
	"fbx-model-importer/internal/mesh"
	"fbx-model-importer/internal/options"
	"fbx-model-importer/internal/skeleton"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// cluster is a skin Deformer as authored.
type cluster struct {
	indices       []int
	weights       []float32
	transformLink mgl32.Mat4
}

// shape is a blendshape waiting to be attached to its mesh.
type shape struct {
	id    string
	shape geometry.Blendshape
}

// session holds every table of one extraction. Nothing in it outlives the
// call that created it.
type session struct {
	opts options.Options
	log  logrus.FieldLogger
	geo  *geometry.Geometry

	warnings  int
	meshIndex int

	meshes     map[string]*mesh.Extracted
	models     map[string]*skeleton.Model
	modelNames map[string]string
	clusters   map[string]*cluster
	curves     map[string][]float32
	lights     map[string]geometry.Light
	materials  map[string]*geometry.Material
	textures   *material.Library
	channels   *material.Channels
	shapes     []shape

	// blendshape routing: source name → canonical slots, channel ID → slots
	blendshapeIndices map[string][]mesh.WeightedIndex
	channelIndices    map[string][]mesh.WeightedIndex

	localRotations    map[string]string
	localTranslations map[string]string
	xComponents       map[string]string
	yComponents       map[string]string
	zComponents       map[string]string

	parents         *multimap
	children        *multimap
	ooChildToParent map[string]string

	roleIDs    [numRoles]string
	humanIKIDs []string

	hifiGlobalNodeID string
	lightmap         material.Lightmap
	unitScaleFactor  float32
	upAxisZ          bool
	version          int
}

func newSession(opts options.Options, url string) *session {
	opts.Normalize()
	s := &session{
		opts: opts,
		log:  opts.Logger.WithField("url", url),
		geo: &geometry.Geometry{
			OriginalURL:  url,
			JointIndices: map[string]int{},
			Materials:    map[string]*geometry.Material{},
			Offset:       mgl32.Ident4(),
			BindExtents:  mathutil.NewExtents(),
			MeshExtents:  mathutil.NewExtents(),
			UpAxis:       1,

			MeshIndicesToModelNames: map[int]string{},
		},
		meshes:            map[string]*mesh.Extracted{},
		models:            map[string]*skeleton.Model{},
		modelNames:        map[string]string{},
		clusters:          map[string]*cluster{},
		curves:            map[string][]float32{},
		lights:            map[string]geometry.Light{},
		materials:         map[string]*geometry.Material{},
		textures:          material.NewLibrary(),
		channels:          material.NewChannels(),
		blendshapeIndices: blendshapeIndices(opts.Blendshapes),
		channelIndices:    map[string][]mesh.WeightedIndex{},
		localRotations:    map[string]string{},
		localTranslations: map[string]string{},
		xComponents:       map[string]string{},
		yComponents:       map[string]string{},
		zComponents:       map[string]string{},
		parents:           newMultimap(),
		children:          newMultimap(),
		ooChildToParent:   map[string]string{},
		humanIKIDs:        make([]string, len(humanIKJoints)),
		lightmap:          material.DefaultLightmap(),
		unitScaleFactor:   1,
		version:           -1,
	}
	return s
}

// warn logs a recovered resolution gap and counts it.
func (s *session) warn(fields logrus.Fields, msg string) {
	s.warnings++
	s.log.WithFields(fields).Warn(msg)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extract runs both passes over root and resolves the result.
func (s *session) extract(root fbx.Node) *geometry.Geometry {
	for _, child := range root.Children() {
		switch child.Name() {
		case "FBXHeaderExtension":
			s.readHeader(child)
		case "GlobalSettings":
			s.readGlobalSettings(child)
		case "Objects":
			s.readObjects(child)
		case "Connections":
			s.readConnections(child)
		}
	}

	s.resolveLightmap()
	s.attachBlendshapes()
	s.computeOffset()

	modelIDs := s.orderModels()
	s.buildJoints(modelIDs)
	s.findSpecialJoints(modelIDs)
	s.consolidateMaterials()
	s.resolveMeshes(modelIDs)
	s.mapMeshNames()
	s.applyUpAxis()
	s.readMappingExtras()

	s.geo.Warnings = s.warnings
	return s.geo
}
