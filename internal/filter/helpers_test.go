package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHelperMesh(t *testing.T) {
	for _, name := range []string{"UCX_Body", "ubx_01", "Rock_LOD1", "tree.lod02", "BodyCollision", "crate_proxy", "NavMesh"} {
		assert.True(t, IsHelperMesh(name), name)
	}
	for _, name := range []string{"Body", "Rock_LOD0", "lucx_stone", "Hips", "", "Sword_glowing"} {
		assert.False(t, IsHelperMesh(name), name)
	}
}
