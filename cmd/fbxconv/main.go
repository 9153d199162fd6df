package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fbx-model-importer/internal/extract"
	"fbx-model-importer/internal/fbx"
	"fbx-model-importer/internal/gltfexport"
	"fbx-model-importer/internal/options"

	"github.com/sirupsen/logrus"
)

func main() {
	out := flag.String("o", "", "Output path; .glb exports geometry, anything else re-encodes binary FBX")
	version := flag.Uint("version", 7400, "Binary FBX version to write")
	compress := flag.Bool("compress", true, "Deflate arrays when re-encoding")
	optionsPath := flag.String("options", "", "Import options mapping for GLB export")
	flag.Parse()

	if flag.NArg() != 1 || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: fbxconv -o out.(fbx|glb) [flags] in.fbx")
		os.Exit(2)
	}
	in := flag.Arg(0)

	tree, err := fbx.ParseFile(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(*out), ".glb") {
		opts := options.Defaults()
		if *optionsPath != "" {
			if opts, err = options.Load(*optionsPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		opts.Logger = logger

		g, err := extract.Extract(tree.Root(), opts, in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		var buf bytes.Buffer
		if err := gltfexport.WriteGLB(&buf, g); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		data = buf.Bytes()
		fmt.Printf("%s: %d meshes, %d joints\n", in, len(g.Meshes), len(g.Joints))
	} else {
		data, err = fbx.EncodeBytes(tree, uint32(*version), *compress)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d nodes\n", in, tree.Len())
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(data))
}
