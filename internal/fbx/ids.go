package fbx

import "strings"

// StripPrefix drops a "Type::" style prefix some exporters put on IDs.
func StripPrefix(id string) string {
	return id[strings.LastIndexByte(id, ':')+1:]
}

// beforeNul cuts a name at its first NUL; binary names carry
// "name\x00\x01Class".
func beforeNul(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return s[:i]
	}
	return s
}

// ObjectID returns the ID stored in property i.
func ObjectID(props []Property, i int) string {
	if i >= len(props) {
		return ""
	}
	return StripPrefix(props[i].String())
}

// ModelName returns the display name of a Model-like object: the second
// property when there are exactly three, the first otherwise.
func ModelName(props []Property) string {
	if len(props) == 3 {
		return StripPrefix(beforeNul(props[1].String()))
	}
	if len(props) == 0 {
		return ""
	}
	return StripPrefix(props[0].String())
}

// MaterialName returns the display name of a Material object.
func MaterialName(props []Property) string {
	if len(props) == 0 {
		return ""
	}
	if len(props) == 1 || props[1].String() == "" {
		return StripPrefix(beforeNul(props[0].String()))
	}
	return StripPrefix(beforeNul(props[1].String()))
}
