// Package batch converts many documents concurrently into GLB files and
// WebP previews.
package batch

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fbx-model-importer/internal/extract"
	"fbx-model-importer/internal/geometry"
	"fbx-model-importer/internal/gltfexport"
	"fbx-model-importer/internal/options"
	"fbx-model-importer/internal/postprocess"
	"fbx-model-importer/internal/raster"
	"fbx-model-importer/internal/texture"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir    string
	Options      options.Options
	Textures     *texture.Index
	Store        *texture.Store
	View         raster.View
	PreviewSize  int
	Supersample  int
	FillRatio    float32
	IslandRatio  float32
	WriteGLB     bool
	WritePreview bool
	Workers      int
	Quiet        bool
}

// Result holds the outcome of converting one document.
type Result struct {
	Name    string
	Source  string
	Success bool
	Error   string

	GLB     string
	Preview string

	Meshes    int
	Joints    int
	Materials int
	Frames    int
	Triangles int
	Textures  int
	Warnings  int
}

// Discover lists the .fbx files under dir, sorted.
func Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".fbx") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "batch: scan %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// Run converts every path using a worker pool. Results are in path order.
func Run(cfg Config, paths []string) []Result {
	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Store == nil {
		cfg.Store = texture.NewStore()
	}
	resolver := texture.NewCache(cfg.Textures, cfg.Store)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && !cfg.Quiet {
					rate := float64(p) / time.Since(start).Seconds()
					fmt.Printf("  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = convert(cfg, resolver, paths[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

func convert(cfg Config, resolver texture.Resolver, path string) Result {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := Result{Name: name, Source: path}

	g, err := extract.ImportFile(path, cfg.Options)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Meshes = len(g.Meshes)
	res.Joints = len(g.Joints)
	res.Materials = len(g.Materials)
	res.Frames = len(g.AnimationFrames)
	res.Warnings = g.Warnings
	for i := range g.Meshes {
		res.Triangles += g.Meshes[i].TriangleCount()
	}
	res.Textures = cfg.Store.Harvest(g)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		res.Error = err.Error()
		return res
	}
	if cfg.WriteGLB {
		out := filepath.Join(cfg.OutputDir, name+".glb")
		if err := writeGLB(out, g); err != nil {
			res.Error = err.Error()
			return res
		}
		res.GLB = filepath.Base(out)
	}
	if cfg.WritePreview && len(g.Meshes) > 0 {
		out := filepath.Join(cfg.OutputDir, name+".webp")
		if err := writePreview(cfg, resolver, out, g); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Preview = filepath.Base(out)
	}

	res.Success = true
	return res
}

func writeGLB(path string, g *geometry.Geometry) error {
	var buf bytes.Buffer
	if err := gltfexport.WriteGLB(&buf, g); err != nil {
		return errors.Wrapf(err, "batch: export %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "batch: write %s", path)
}

// writePreview renders g, frames it and writes it as WebP.
func writePreview(cfg Config, resolver texture.Resolver, path string, g *geometry.Geometry) error {
	size := cfg.PreviewSize
	if size <= 0 {
		size = 256
	}
	img := raster.RenderGeometry(g, cfg.View, resolver, size, cfg.Supersample)
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, size)
	}
	if cfg.IslandRatio > 0 {
		img = postprocess.RemoveIslands(img, cfg.IslandRatio)
	}
	img = postprocess.Frame(img, size, cfg.FillRatio)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "batch: create %s", path)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return errors.Wrapf(err, "batch: webp encode %s", path)
	}
	return nil
}
