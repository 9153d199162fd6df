package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fbx-model-importer/internal/extract"
	"fbx-model-importer/internal/options"
	"fbx-model-importer/internal/texture"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// fileName picks an output name for a blob, adding an extension from the
// sniffed content type when the original name has none.
func fileName(name string, data []byte) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if filepath.Ext(base) == "" {
		if ext, ok := extensions[http.DetectContentType(data)]; ok {
			base += ext
		}
	}
	return base
}

func main() {
	out := flag.String("o", ".", "Output directory")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: texdump [-o dir] file.fbx...")
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	opts := options.Defaults()
	opts.Logger = logger

	store := texture.NewStore()
	failures := 0
	for _, path := range flag.Args() {
		g, err := extract.ImportFile(path, opts)
		if err != nil && !errors.Is(err, extract.ErrEmptyGeometry) {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			failures++
			continue
		}
		fmt.Printf("%s: %d inlined textures\n", path, store.Harvest(g))
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}
	for _, name := range store.Names() {
		data, _ := store.Get(name)
		dst := filepath.Join(*out, fileName(name, data))
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "ERR write %s: %v\n", dst, err)
			failures++
			continue
		}
		fmt.Printf("OK  %s -> %s  (%d bytes)\n", name, dst, len(data))
	}

	if failures > 0 {
		fmt.Printf("\nDone with %d error(s).\n", failures)
		os.Exit(1)
	}
	fmt.Printf("\nDone. %d textures extracted.\n", store.Len())
}
