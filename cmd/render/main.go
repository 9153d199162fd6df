package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fbx-model-importer/internal/batch"
	"fbx-model-importer/internal/config"
	"fbx-model-importer/internal/options"
	"fbx-model-importer/internal/raster"
	"fbx-model-importer/internal/texture"

	"github.com/sirupsen/logrus"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Convert only the first N documents")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	inputDir := flag.String("input", "", "Directory scanned for .fbx documents (default: .)")
	outputDir := flag.String("output", "", "Output directory (default: <input>/converted)")
	optionsPath := flag.String("options", "", "Import options mapping (.yaml, .fst or .toml)")
	size := flag.Int("size", 0, "Preview size in pixels (default: 256)")
	noGLB := flag.Bool("no-glb", false, "Skip GLB export")
	noPreview := flag.Bool("no-preview", false, "Skip WebP previews")
	verbose := flag.Bool("v", false, "Log semantic gaps while extracting")

	flag.Parse()

	// Load config
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:    *inputDir,
		OutputDir:   *outputDir,
		OptionsPath: *optionsPath,
		Size:        *size,
		Workers:     *workers,
		NoGLB:       *noGLB,
		NoPreview:   *noPreview,
	})

	opts := options.Defaults()
	if cfg.OptionsPath != "" {
		var err error
		opts, err = options.Load(cfg.OptionsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading options: %v\n", err)
			os.Exit(1)
		}
	}
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	opts.Logger = logger

	paths, err := batch.Discover(cfg.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *testN > 0 && *testN < len(paths) {
		paths = paths[:*testN]
	}
	if len(paths) == 0 {
		fmt.Println("No documents to convert.")
		os.Exit(0)
	}

	texIndex := texture.BuildIndex(cfg.TextureDir)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	fmt.Printf("FBX → GLB + WebP\n")
	fmt.Printf("Documents: %d, Workers: %d\n", len(paths), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	store := texture.NewStore()
	results := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Options:   opts,
		Textures:  texIndex,
		Store:     store,
		View: raster.View{
			Yaw:         cfg.Yaw,
			Pitch:       cfg.Pitch,
			Perspective: cfg.Perspective,
		},
		PreviewSize:  cfg.PreviewSize,
		Supersample:  cfg.Supersample,
		FillRatio:    cfg.FillRatio,
		IslandRatio:  cfg.IslandRatio,
		WriteGLB:     cfg.WriteGLB,
		WritePreview: cfg.WritePreview,
		Workers:      cfg.Workers,
	}, paths)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	var failed []batch.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Converted: %d/%d, inlined textures: %d\n", len(results)-len(failed), len(results), store.Len())

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, e := range failed[:min(len(failed), 20)] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}
