package options

import (
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BlendshapeRemaps lists the sources feeding one canonical blendshape.
type BlendshapeRemaps []BlendshapeRemap

// UnmarshalYAML accepts a single [source, weight] pair, a list of pairs, or
// a list of {source, weight} mappings.
func (r *BlendshapeRemaps) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = BlendshapeRemaps{{Source: value.Value, Weight: 1}}
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return errors.Errorf("options: line %d: bs entry must be a sequence", value.Line)
	}
	if len(value.Content) > 0 && value.Content[0].Kind == yaml.ScalarNode {
		one, err := decodeRemap(value)
		if err != nil {
			return err
		}
		*r = BlendshapeRemaps{one}
		return nil
	}
	out := make(BlendshapeRemaps, 0, len(value.Content))
	for _, item := range value.Content {
		one, err := decodeRemap(item)
		if err != nil {
			return err
		}
		out = append(out, one)
	}
	*r = out
	return nil
}

func decodeRemap(n *yaml.Node) (BlendshapeRemap, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return BlendshapeRemap{}, errors.Errorf("options: line %d: empty bs pair", n.Line)
		}
		out := BlendshapeRemap{Source: n.Content[0].Value, Weight: 1}
		if len(n.Content) > 1 {
			w, err := strconv.ParseFloat(n.Content[1].Value, 32)
			if err != nil {
				return BlendshapeRemap{}, errors.Wrapf(err, "options: line %d: bs weight", n.Line)
			}
			out.Weight = float32(w)
		}
		return out, nil
	case yaml.MappingNode:
		var m struct {
			Source string   `yaml:"source"`
			Weight *float32 `yaml:"weight"`
		}
		if err := n.Decode(&m); err != nil {
			return BlendshapeRemap{}, errors.Wrapf(err, "options: line %d", n.Line)
		}
		out := BlendshapeRemap{Source: m.Source, Weight: 1}
		if m.Weight != nil {
			out.Weight = *m.Weight
		}
		return out, nil
	}
	return BlendshapeRemap{Source: n.Value, Weight: 1}, nil
}
