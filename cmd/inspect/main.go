package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"fbx-model-importer/internal/extract"
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/options"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	tree := flag.Int("tree", -1, "Print the node tree to this depth (0: unlimited)")
	dump := flag.Bool("dump", false, "Dump the extracted geometry")
	optionsPath := flag.String("options", "", "Import options mapping")
	verbose := flag.Bool("v", false, "Log semantic gaps")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [flags] file.fbx")
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	format := "text"
	if fbx.IsBinary(data) {
		format = fmt.Sprintf("binary %d", fbx.Version(data))
	}
	fmt.Printf("%s (%s, %d bytes)\n", path, format, len(data))

	parsed, err := fbx.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *tree >= 0 {
		fbx.Dump(os.Stdout, parsed.Root(), *tree)
	}

	opts := options.Defaults()
	if *optionsPath != "" {
		if opts, err = options.Load(*optionsPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	opts.Logger = logger

	g, err := extract.Extract(parsed.Root(), opts, path)
	if err != nil && !errors.Is(err, extract.ErrEmptyGeometry) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Application: %q, author: %q, version %d\n", g.ApplicationName, g.Author, g.FBXVersion)
	fmt.Printf("Meshes: %d, Joints: %d, Materials: %d, Frames: %d, Warnings: %d\n",
		len(g.Meshes), len(g.Joints), len(g.Materials), len(g.AnimationFrames), g.Warnings)
	for i := range g.Meshes {
		m := &g.Meshes[i]
		fmt.Printf("  Mesh[%d] %q: verts=%d, tris=%d, parts=%d, clusters=%d, blendshapes=%d\n",
			i, g.ModelNameOfMesh(i), len(m.Vertices), m.TriangleCount(), len(m.Parts), len(m.Clusters), len(m.Blendshapes))
		if !m.MeshExtents.IsEmpty() {
			s := m.MeshExtents.Size()
			fmt.Printf("    Size: %.2f x %.2f x %.2f\n", s[0], s[1], s[2])
		}
	}
	for i, j := range g.Joints {
		fmt.Printf("  Joint[%d] %q: parent=%d, pos=(%.2f, %.2f, %.2f)\n",
			i, j.Name, j.ParentIndex, j.Translation[0], j.Translation[1], j.Translation[2])
	}
	ids := make([]string, 0, len(g.Materials))
	for id := range g.Materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m := g.Materials[id]
		fmt.Printf("  Material %s %q: albedo=(%.2f, %.2f, %.2f), opacity=%.2f, texture=%q\n",
			id, m.Name, m.Albedo[0], m.Albedo[1], m.Albedo[2], m.FinalOpacity, m.AlbedoTexture.Filename)
	}
	if len(g.BlendshapeChannelNames) > 0 {
		fmt.Printf("Blendshape channels: %v\n", g.BlendshapeChannelNames)
	}

	if *dump {
		cfg := spew.NewDefaultConfig()
		cfg.DisableCapacities = true
		cfg.DisablePointerAddresses = true
		cfg.Fdump(os.Stdout, g)
	}
}
