package texture

import (
	"image"
	"sort"
	"sync"

	"fbx-model-importer/internal/geometry"
)

// Store holds inlined texture blobs harvested from imported documents. It is
// safe for concurrent use by batch workers.
type Store struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	decoded map[string]*image.NRGBA
}

func NewStore() *Store {
	return &Store{blobs: map[string][]byte{}, decoded: map[string]*image.NRGBA{}}
}

// Put records data under name. The first blob for a name wins.
func (s *Store) Put(name string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[name]; ok || len(data) == 0 {
		return false
	}
	s.blobs[name] = data
	return true
}

func (s *Store) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[name]
	return b, ok
}

// Names lists stored names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.blobs))
	for n := range s.blobs {
		names = append(names, n)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Resolve decodes the blob stored under texName, matching by file stem.
func (s *Store) Resolve(texName string) *image.NRGBA {
	key := stem(texName)
	s.mu.RLock()
	img, done := s.decoded[key]
	s.mu.RUnlock()
	if done {
		return img
	}

	var data []byte
	for _, n := range s.Names() {
		if stem(n) == key {
			data, _ = s.Get(n)
			break
		}
	}
	if data == nil {
		// not cached: the blob may be harvested later
		return nil
	}
	img, _ = Decode(data)

	s.mu.Lock()
	if prev, ok := s.decoded[key]; ok {
		img = prev
	} else {
		s.decoded[key] = img
	}
	s.mu.Unlock()
	return img
}

// Harvest copies every inlined texture of g into the store and returns how
// many were new.
func (s *Store) Harvest(g *geometry.Geometry) int {
	added := 0
	ids := make([]string, 0, len(g.Materials))
	for id := range g.Materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m := g.Materials[id]
		for _, t := range []geometry.Texture{
			m.AlbedoTexture, m.OpacityTexture, m.NormalTexture, m.SpecularTexture,
			m.MetallicTexture, m.RoughnessTexture, m.GlossTexture, m.EmissiveTexture,
			m.OcclusionTexture, m.LightmapTexture, m.ScatteringTexture,
		} {
			if len(t.Content) > 0 && s.Put(t.Filename, t.Content) {
				added++
			}
		}
	}
	return added
}
