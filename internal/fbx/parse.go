// Package fbx decodes binary and ASCII FBX documents into an immutable
// node tree and encodes such trees back to the binary form.
package fbx

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// binaryMagic opens every binary document. It is followed by a NUL, the
// marker bytes 0x1A 0x00 and a little-endian uint32 version.
const binaryMagic = "Kaydara FBX Binary  "

const headerSize = len(binaryMagic) + 1 + 2 + 4

// Structural failure causes, wrapped in a *FormatError.
var (
	ErrUnknownType  = errors.New("unknown property type")
	ErrTruncated    = errors.New("truncated input")
	ErrCorruptArray = errors.New("corrupt array payload")
	ErrSyntax       = errors.New("syntax error")
)

// FormatError reports a structural failure and where it happened.
type FormatError struct {
	Offset int64  // byte offset for binary input, line number for text
	Node   string // innermost node being decoded, if known
	Err    error
}

func (e *FormatError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("fbx: node %q at %d: %v", e.Node, e.Offset, e.Err)
	}
	return fmt.Sprintf("fbx: at %d: %v", e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsBinary reports whether data starts with the binary prologue.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte(binaryMagic))
}

// Parse decodes a whole document held in memory.
func Parse(data []byte) (*Tree, error) {
	if IsBinary(data) {
		return parseBinary(data)
	}
	return parseText(data)
}

// ParseFile reads and decodes the document at path.
func ParseFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "fbx: read %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "fbx: parse %s", path)
	}
	return t, nil
}

// Version returns the binary header version of data, or 0 for text input.
func Version(data []byte) uint32 {
	if !IsBinary(data) || len(data) < headerSize {
		return 0
	}
	return le.Uint32(data[headerSize-4:])
}
