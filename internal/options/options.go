// Package options holds the import-options mapping that accompanies a
// document: placement offset, joint name overrides, free joints,
// blendshape remaps and per-material overrides.
package options

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// BlendshapeRemap routes one source blendshape into a canonical one.
type BlendshapeRemap struct {
	Source string  `toml:"source"`
	Weight float32 `toml:"weight"`
}

// MaterialOverride replaces scattering settings of one material.
type MaterialOverride struct {
	Scattering    *float32 `yaml:"scattering" toml:"scattering"`
	ScatteringMap string   `yaml:"scatteringMap" toml:"scatteringMap"`
}

// Options is the mapping. Zero values mean "not set"; call Normalize (Load
// does) before use. A zero Scale is therefore read as 1; Load rejects a file
// that sets scale to 0.
type Options struct {
	Scale float32 `yaml:"scale" toml:"scale"`
	TX    float32 `yaml:"tx" toml:"tx"`
	TY    float32 `yaml:"ty" toml:"ty"`
	TZ    float32 `yaml:"tz" toml:"tz"`
	RX    float32 `yaml:"rx" toml:"rx"`
	RY    float32 `yaml:"ry" toml:"ry"`
	RZ    float32 `yaml:"rz" toml:"rz"`

	// Joint maps canonical joint names (jointNeck, jointLeftHand, ...) to
	// the names used by the document.
	Joint     map[string]string `yaml:"joint" toml:"joint"`
	FreeJoint []string          `yaml:"freeJoint" toml:"freeJoint"`

	// Blendshapes maps canonical blendshape names to source names.
	Blendshapes map[string]BlendshapeRemaps `yaml:"bs" toml:"bs"`
	MaterialMap map[string]MaterialOverride `yaml:"materialMap" toml:"materialMap"`
	Sit         map[string][]string         `yaml:"sit" toml:"sit"`

	PalmDirection      string `yaml:"palmDirection" toml:"palmDirection"`
	DeduplicateIndices *bool  `yaml:"deduplicateIndices" toml:"deduplicateIndices"`

	Logger logrus.FieldLogger `yaml:"-" toml:"-"`
}

// Defaults returns options with every default filled in.
func Defaults() Options {
	var o Options
	o.Normalize()
	return o
}

// Normalize fills unset fields with their defaults.
func (o *Options) Normalize() {
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.PalmDirection == "" {
		o.PalmDirection = "0, -1, 0"
	}
	if o.DeduplicateIndices == nil {
		on := true
		o.DeduplicateIndices = &on
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
}

// Deduplicate reports whether vertex deduplication is enabled.
func (o *Options) Deduplicate() bool {
	return o.DeduplicateIndices == nil || *o.DeduplicateIndices
}

// JointName returns the override for a canonical joint name, or fallback.
func (o *Options) JointName(canonical, fallback string) string {
	if name, ok := o.Joint[canonical]; ok && name != "" {
		return name
	}
	return fallback
}

// IsFreeJoint reports whether name is listed in freeJoint.
func (o *Options) IsFreeJoint(name string) bool {
	for _, f := range o.FreeJoint {
		if f == name {
			return true
		}
	}
	return false
}

// ErrZeroScale is returned by Load for a file with scale set to 0.
var ErrZeroScale = errors.New("options: scale must not be 0")

// Load reads an options file. The format follows the extension: .toml is
// TOML, anything else is YAML.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrapf(err, "options: read %s", path)
	}
	var o Options
	var explicit struct {
		Scale *float32 `yaml:"scale" toml:"scale"`
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &o)
		if err == nil {
			err = toml.Unmarshal(data, &explicit)
		}
	} else {
		err = yaml.Unmarshal(data, &o)
		if err == nil {
			err = yaml.Unmarshal(data, &explicit)
		}
	}
	if err != nil {
		return Options{}, errors.Wrapf(err, "options: parse %s", path)
	}
	if explicit.Scale != nil && *explicit.Scale == 0 {
		return Options{}, errors.Wrapf(ErrZeroScale, "options: %s", path)
	}
	o.Normalize()
	return o, nil
}
