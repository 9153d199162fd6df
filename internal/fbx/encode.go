package fbx

import (
	"bytes"
	"compress/zlib"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Encoder writes trees in the binary format.
type Encoder struct {
	Version uint32
	// Compress stores arrays zlib-compressed (encoding 1).
	Compress bool

	out  []byte
	wide bool
}

// Encode writes the children of root as a binary document.
func (e *Encoder) Encode(w io.Writer, root Node) error {
	if e.Version == 0 {
		e.Version = 7400
	}
	e.wide = e.Version >= wideRecordVersion
	e.out = append(e.out[:0], binaryMagic...)
	e.out = append(e.out, 0, 0x1A, 0)
	e.out = le.AppendUint32(e.out, e.Version)

	for _, c := range root.Children() {
		if err := e.node(c); err != nil {
			return err
		}
	}
	e.nullRecord()

	if _, err := w.Write(e.out); err != nil {
		return errors.Wrap(err, "fbx: write")
	}
	return nil
}

func (e *Encoder) field(v uint64) {
	if e.wide {
		e.out = le.AppendUint64(e.out, v)
	} else {
		e.out = le.AppendUint32(e.out, uint32(v))
	}
}

func (e *Encoder) patch(at int, v uint64) {
	if e.wide {
		le.PutUint64(e.out[at:], v)
	} else {
		le.PutUint32(e.out[at:], uint32(v))
	}
}

func (e *Encoder) nullRecord() {
	n := 13
	if e.wide {
		n = 25
	}
	e.out = append(e.out, make([]byte, n)...)
}

func (e *Encoder) node(n Node) error {
	name := n.Name()
	if len(name) == 0 || len(name) > 255 {
		return errors.Errorf("fbx: encode: invalid node name %q", name)
	}
	fieldSize := 4
	if e.wide {
		fieldSize = 8
	}
	start := len(e.out)
	e.field(0)
	e.field(uint64(n.NumProps()))
	e.field(0)
	e.out = append(e.out, byte(len(name)))
	e.out = append(e.out, name...)

	propStart := len(e.out)
	for _, p := range n.Props() {
		if err := e.property(p); err != nil {
			return errors.Wrapf(err, "fbx: encode %s", name)
		}
	}
	e.patch(start+2*fieldSize, uint64(len(e.out)-propStart))

	if n.NumChildren() > 0 {
		for _, c := range n.Children() {
			if err := e.node(c); err != nil {
				return err
			}
		}
		e.nullRecord()
	}
	e.patch(start, uint64(len(e.out)))
	return nil
}

func (e *Encoder) property(p Property) error {
	switch p.Kind() {
	case KindBool:
		e.out = append(e.out, 'C', byte(p.num))
	case KindInt16:
		e.out = append(e.out, 'Y')
		e.out = le.AppendUint16(e.out, uint16(p.num))
	case KindInt32:
		e.out = append(e.out, 'I')
		e.out = le.AppendUint32(e.out, uint32(p.num))
	case KindInt64:
		e.out = append(e.out, 'L')
		e.out = le.AppendUint64(e.out, uint64(p.num))
	case KindFloat32:
		e.out = append(e.out, 'F')
		e.out = le.AppendUint32(e.out, math.Float32bits(float32(p.real)))
	case KindFloat64:
		e.out = append(e.out, 'D')
		e.out = le.AppendUint64(e.out, math.Float64bits(p.real))
	case KindString, KindRaw:
		tag := byte('S')
		if p.Kind() == KindRaw {
			tag = 'R'
		}
		e.out = append(e.out, tag)
		e.out = le.AppendUint32(e.out, uint32(len(p.str)))
		e.out = append(e.out, p.str...)
	case KindBoolArray, KindInt32Array, KindInt64Array, KindFloat32Array, KindFloat64Array:
		return e.array(p)
	default:
		return errors.Wrapf(ErrUnknownType, "kind %s", p.Kind())
	}
	return nil
}

func (e *Encoder) array(p Property) error {
	var tag byte
	var raw []byte
	switch p.Kind() {
	case KindBoolArray:
		tag = 'b'
		for _, v := range p.bools {
			if v {
				raw = append(raw, 1)
			} else {
				raw = append(raw, 0)
			}
		}
	case KindInt32Array:
		tag = 'i'
		for _, v := range p.i32 {
			raw = le.AppendUint32(raw, uint32(v))
		}
	case KindInt64Array:
		tag = 'l'
		for _, v := range p.i64 {
			raw = le.AppendUint64(raw, uint64(v))
		}
	case KindFloat32Array:
		tag = 'f'
		for _, v := range p.f32 {
			raw = le.AppendUint32(raw, math.Float32bits(v))
		}
	case KindFloat64Array:
		tag = 'd'
		for _, v := range p.f64 {
			raw = le.AppendUint64(raw, math.Float64bits(v))
		}
	}

	encoding := uint32(0)
	if e.Compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return errors.Wrap(err, "deflate array")
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "deflate array")
		}
		raw = buf.Bytes()
		encoding = 1
	}
	e.out = append(e.out, tag)
	e.out = le.AppendUint32(e.out, uint32(p.Len()))
	e.out = le.AppendUint32(e.out, encoding)
	e.out = le.AppendUint32(e.out, uint32(len(raw)))
	e.out = append(e.out, raw...)
	return nil
}

// EncodeBytes is a convenience wrapper returning the encoded document.
func EncodeBytes(t *Tree, version uint32, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := &Encoder{Version: version, Compress: compress}
	if err := enc.Encode(&buf, t.Root()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
