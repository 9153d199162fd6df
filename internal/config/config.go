// Package config holds the batch conversion settings.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir     string `json:"base_dir"`
	InputDir    string `json:"input_dir"`
	OutputDir   string `json:"output_dir"`
	OptionsPath string `json:"options"`
	TextureDir  string `json:"texture_dir"`

	// Outputs
	WriteGLB     bool `json:"write_glb"`
	WritePreview bool `json:"write_preview"`

	// Render settings
	PreviewSize int     `json:"preview_size"`
	Supersample int     `json:"supersample"`
	Yaw         float32 `json:"yaw"`
	Pitch       float32 `json:"pitch"`
	Perspective bool    `json:"perspective"`
	FillRatio   float32 `json:"fill_ratio"`
	IslandRatio float32 `json:"island_ratio"`
	Workers     int     `json:"workers"`
}

// Default returns a configuration that writes both outputs. Load starts
// from it, so keys absent from the file keep these values.
func Default() Config {
	return Config{WriteGLB: true, WritePreview: true, Yaw: 30, Pitch: 15, IslandRatio: 0.02}
}

// Load reads a JSON config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir    string
	OutputDir   string
	OptionsPath string
	Size        int
	Workers     int
	NoGLB       bool
	NoPreview   bool
}

// Resolve applies flags, resolves relative paths against BaseDir and fills
// in defaults. Non-zero flags win over the file.
func (c *Config) Resolve(flags Flags) {
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.OptionsPath != "" {
		c.OptionsPath = flags.OptionsPath
	}
	if flags.Size > 0 {
		c.PreviewSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.NoGLB {
		c.WriteGLB = false
	}
	if flags.NoPreview {
		c.WritePreview = false
	}

	if c.InputDir == "" {
		c.InputDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, "converted")
	}
	if c.TextureDir == "" {
		c.TextureDir = c.InputDir
	}
	if c.BaseDir != "" {
		c.InputDir = c.rebase(c.InputDir)
		c.OutputDir = c.rebase(c.OutputDir)
		c.TextureDir = c.rebase(c.TextureDir)
		if c.OptionsPath != "" {
			c.OptionsPath = c.rebase(c.OptionsPath)
		}
	}

	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FillRatio <= 0 || c.FillRatio > 1 {
		c.FillRatio = 0.9
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

func (c *Config) rebase(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}
