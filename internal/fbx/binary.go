package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
)

var le = binary.LittleEndian

// wideRecordVersion is the first version whose node records use 64-bit
// end offset, property count and property list length.
const wideRecordVersion = 7500

// minRecordEnd is the smallest end offset a real node can have; anything
// below marks the null record closing a level.
const minRecordEnd = 40

// maxInflateRatio bounds the declared size of a zlib array relative to its
// compressed length; deflate cannot exceed roughly 1032:1.
const maxInflateRatio = 1032

type reader struct {
	data []byte
	off  int
	wide bool
	node string
	err  error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = &FormatError{Offset: int64(r.off), Node: r.node, Err: err}
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.fail(ErrTruncated)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readU8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) readU16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return le.Uint16(b)
}

func (r *reader) readU32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return le.Uint32(b)
}

func (r *reader) readU64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return le.Uint64(b)
}

// readField reads a record header field whose width depends on the version.
func (r *reader) readField() uint64 {
	if r.wide {
		return r.readU64()
	}
	return uint64(r.readU32())
}

func parseBinary(data []byte) (*Tree, error) {
	if len(data) < headerSize {
		return nil, &FormatError{Offset: int64(len(data)), Err: ErrTruncated}
	}
	version := le.Uint32(data[headerSize-4:])
	r := &reader{data: data, off: headerSize, wide: version >= wideRecordVersion}
	b := newTreeBuilder()

	var top []int32
	for r.off < len(r.data) {
		idx, ok := r.readNode(b)
		if r.err != nil {
			return nil, r.err
		}
		if !ok {
			break
		}
		top = append(top, idx)
	}
	return b.finish(top), nil
}

// readNode decodes one record. ok is false for the null record.
func (r *reader) readNode(b *treeBuilder) (int32, bool) {
	endOffset := r.readField()
	numProps := r.readField()
	r.readField() // property list length
	nameLen := int(r.readU8())
	if r.err != nil {
		return 0, false
	}
	if endOffset < minRecordEnd || nameLen == 0 {
		return 0, false
	}
	name := string(r.take(nameLen))
	parent := r.node
	r.node = name
	defer func() { r.node = parent }()

	if numProps > uint64(len(r.data)-r.off) {
		r.fail(ErrTruncated)
		return 0, false
	}
	props := make([]Property, 0, numProps)
	for i := uint64(0); i < numProps && r.err == nil; i++ {
		props = append(props, r.readProperty())
	}

	var kids []int32
	for r.err == nil && uint64(r.off) < endOffset {
		if r.off >= len(r.data) {
			r.fail(ErrTruncated)
			break
		}
		idx, ok := r.readNode(b)
		if !ok {
			break
		}
		kids = append(kids, idx)
	}
	if r.err != nil {
		return 0, false
	}
	return b.add(name, props, kids), true
}

func (r *reader) readProperty() Property {
	tag := r.readU8()
	switch tag {
	case 'Y':
		return Int16(int16(r.readU16()))
	case 'C':
		return Bool(r.readU8() != 0)
	case 'I':
		return Int32(int32(r.readU32()))
	case 'F':
		return Float32(math.Float32frombits(r.readU32()))
	case 'D':
		return Float64(math.Float64frombits(r.readU64()))
	case 'L':
		return Int64(int64(r.readU64()))
	case 'S':
		return String(string(r.take(int(r.readU32()))))
	case 'R':
		raw := r.take(int(r.readU32()))
		return Raw(append([]byte(nil), raw...))
	case 'f', 'd', 'l', 'i', 'b':
		return r.readArray(tag)
	}
	if r.err == nil {
		r.off--
		r.fail(ErrUnknownType)
	}
	return Property{}
}

func elemSize(tag byte) int {
	switch tag {
	case 'd', 'l':
		return 8
	case 'f', 'i':
		return 4
	}
	return 1
}

func (r *reader) readArray(tag byte) Property {
	count := int(r.readU32())
	encoding := r.readU32()
	compressedLen := int(r.readU32())
	if r.err != nil {
		return Property{}
	}
	size := elemSize(tag)
	if count < 0 || count > math.MaxInt32/size {
		r.fail(ErrCorruptArray)
		return Property{}
	}
	want := count * size

	var payload []byte
	switch encoding {
	case 0:
		payload = r.take(want)
	case 1:
		compressed := r.take(compressedLen)
		if r.err != nil {
			return Property{}
		}
		if want > compressedLen*maxInflateRatio+64 {
			r.fail(ErrCorruptArray)
			return Property{}
		}
		payload = r.inflate(compressed, want)
	default:
		r.fail(ErrCorruptArray)
	}
	if r.err != nil {
		return Property{}
	}
	return decodeArray(tag, payload, count)
}

func (r *reader) inflate(compressed []byte, want int) []byte {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		r.fail(ErrCorruptArray)
		return nil
	}
	defer zr.Close()
	out := make([]byte, want)
	if _, err := io.ReadFull(zr, out); err != nil {
		r.fail(ErrCorruptArray)
		return nil
	}
	return out
}

func decodeArray(tag byte, b []byte, count int) Property {
	switch tag {
	case 'f':
		v := make([]float32, count)
		for i := range v {
			v[i] = math.Float32frombits(le.Uint32(b[i*4:]))
		}
		return Float32Array(v)
	case 'd':
		v := make([]float64, count)
		for i := range v {
			v[i] = math.Float64frombits(le.Uint64(b[i*8:]))
		}
		return Float64Array(v)
	case 'l':
		v := make([]int64, count)
		for i := range v {
			v[i] = int64(le.Uint64(b[i*8:]))
		}
		return Int64Array(v)
	case 'i':
		v := make([]int32, count)
		for i := range v {
			v[i] = int32(le.Uint32(b[i*4:]))
		}
		return Int32Array(v)
	}
	v := make([]bool, count)
	for i := range v {
		v[i] = b[i] != 0
	}
	return BoolArray(v)
}
