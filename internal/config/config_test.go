package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base_dir":"/data","input_dir":"models","write_glb":false}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.WriteGLB)
	assert.True(t, cfg.WritePreview)
	assert.EqualValues(t, 30, cfg.Yaw)

	cfg.Resolve(Flags{Workers: 3})
	assert.Equal(t, filepath.Join("/data", "models"), cfg.InputDir)
	assert.Equal(t, filepath.Join("/data", "models", "converted"), cfg.OutputDir)
	assert.Equal(t, cfg.InputDir, cfg.TextureDir)
	assert.Equal(t, 256, cfg.PreviewSize)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, float32(0.9), cfg.FillRatio)
	assert.Equal(t, 3, cfg.Workers)
}

func TestResolveFlagsWin(t *testing.T) {
	cfg := Default()
	cfg.PreviewSize = 512
	cfg.Resolve(Flags{InputDir: "in", OutputDir: "/abs/out", Size: 64, NoPreview: true})
	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, "/abs/out", cfg.OutputDir)
	assert.Equal(t, 64, cfg.PreviewSize)
	assert.False(t, cfg.WritePreview)
	assert.True(t, cfg.WriteGLB)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "config: read")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "config: parse")
}
