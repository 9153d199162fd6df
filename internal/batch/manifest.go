package batch

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ManifestEntry represents one converted document in the output manifest.
type ManifestEntry struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	GLB       string `json:"glb,omitempty"`
	Image     string `json:"image,omitempty"`
	Meshes    int    `json:"meshes"`
	Joints    int    `json:"joints"`
	Materials int    `json:"materials"`
	Triangles int    `json:"triangles"`
	Frames    int    `json:"frames"`
	Textures  int    `json:"textures"`
	Warnings  int    `json:"warnings"`
}

// WriteManifest writes the successful results to path as JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:      r.Name,
			Source:    r.Source,
			GLB:       r.GLB,
			Image:     r.Preview,
			Meshes:    r.Meshes,
			Joints:    r.Joints,
			Materials: r.Materials,
			Triangles: r.Triangles,
			Frames:    r.Frames,
			Textures:  r.Textures,
			Warnings:  r.Warnings,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "batch: manifest")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "batch: write %s", path)
}
