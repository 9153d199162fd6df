// Package filter recognises helper meshes that ship inside documents but
// are not part of the visible model.
package filter

import (
	"regexp"
	"strings"
)

// collisionRE matches engine collision hull prefixes (UCX_Body, UBX_01).
var collisionRE = regexp.MustCompile(`(?i)^(?:ucx|ubx|ucp|usp|mcdcx)_`)

// lodRE matches every level of detail but the first: Body_LOD1, rock_lod02.
var lodRE = regexp.MustCompile(`(?i)[_.]lod0*[1-9]\d*$`)

var helperPatterns = []string{"collision", "collider", "_proxy", "navmesh"}

// IsHelperMesh reports whether a mesh with this model name is a collision
// hull, a lower level of detail or a proxy.
func IsHelperMesh(name string) bool {
	if collisionRE.MatchString(name) || lodRE.MatchString(name) {
		return true
	}
	lower := strings.ToLower(name)
	for _, p := range helperPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
