package fbx

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalDocument() *Tree {
	geometry := NewElement("Geometry", Int64(1000), String("Geometry::quad\x00\x01Geometry"), String("Mesh")).Add(
		NewElement("Vertices", Float64Array([]float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0})),
		NewElement("PolygonVertexIndex", Int32Array([]int32{0, 1, 2, -4})),
		NewElement("LayerElementNormal", Int32(0)).Add(
			NewElement("MappingInformationType", String("ByVertice")),
			NewElement("Normals", Float32Array([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1})),
		),
	)
	model := NewElement("Model", Int64(2000), String("Model::quad"), String("Mesh")).Add(
		NewElement("Version", Int32(232)),
		NewElement("Shading", Bool(true)),
		NewElement("Culling", String("CullingOff")),
		NewElement("Flags", Int16(7), Float32(0.5), Raw([]byte{1, 2, 3})),
		NewElement("Visibility", BoolArray([]bool{true, false}), Int64Array([]int64{-1, 1 << 40})),
	)
	return Build(NewElement("Objects").Add(geometry, model))
}

func TestBinaryRoundTripShape(t *testing.T) {
	src := minimalDocument()
	for _, tc := range []struct {
		name     string
		version  uint32
		compress bool
	}{
		{"v7400 raw", 7400, false},
		{"v7400 zlib", 7400, true},
		{"v7500 raw", 7500, false},
		{"v7500 zlib", 7500, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, err := EncodeBytes(src, tc.version, tc.compress)
			require.NoError(t, err)
			require.True(t, IsBinary(data))
			assert.Equal(t, tc.version, Version(data))

			parsed, err := Parse(data)
			require.NoError(t, err)
			assert.Equal(t, Outline(src.Root()), Outline(parsed.Root()))

			again, err := EncodeBytes(parsed, tc.version, tc.compress)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestBinaryPropertyValues(t *testing.T) {
	data, err := EncodeBytes(minimalDocument(), 7400, true)
	require.NoError(t, err)
	tree, err := Parse(data)
	require.NoError(t, err)

	objects := tree.Root().Child("Objects")
	require.True(t, objects.Valid())
	geometry := objects.Child("Geometry")
	assert.Equal(t, "1000", geometry.Prop(0).String())
	assert.Equal(t, "Mesh", geometry.Prop(2).String())
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, geometry.Child("Vertices").Float64s())
	assert.Equal(t, []int{0, 1, 2, -4}, geometry.Child("PolygonVertexIndex").Ints())
	assert.Len(t, geometry.Find("LayerElementNormal", "Normals").Float32s(), 12)

	model := objects.Child("Model")
	flags := model.Child("Flags")
	assert.Equal(t, KindInt16, flags.Prop(0).Kind())
	assert.EqualValues(t, 7, flags.Prop(0).Int())
	assert.InDelta(t, 0.5, flags.Prop(1).Float(), 1e-9)
	assert.Equal(t, []byte{1, 2, 3}, flags.Prop(2).Bytes())
	assert.True(t, model.Child("Shading").Prop(0).Bool())
	vis := model.Child("Visibility")
	assert.Equal(t, []bool{true, false}, vis.Prop(0).Bools())
	assert.Equal(t, []int64{-1, 1 << 40}, vis.Prop(1).Int64s())
}

func TestBinaryUnknownPropertyType(t *testing.T) {
	tree := Build(NewElement("N", Int32(5)))
	data, err := EncodeBytes(tree, 7400, false)
	require.NoError(t, err)

	// header(27) + three 32-bit fields + name length + "N"
	tagAt := headerSize + 12 + 1 + 1
	require.Equal(t, byte('I'), data[tagAt])
	data[tagAt] = 'Z'

	_, err = Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "N", fe.Node)
	assert.EqualValues(t, tagAt, fe.Offset)
}

func TestBinaryTruncated(t *testing.T) {
	data, err := EncodeBytes(minimalDocument(), 7400, false)
	require.NoError(t, err)

	_, err = Parse(data[:len(data)/2])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncated))

	_, err = Parse(data[:headerSize-3])
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestBinaryCorruptCompressedArray(t *testing.T) {
	tree := Build(NewElement("Vertices", Float64Array([]float64{1, 2, 3, 4, 5, 6})))
	data, err := EncodeBytes(tree, 7400, true)
	require.NoError(t, err)

	// header fields, name, then tag + count + encoding + length
	at := headerSize + 12 + 1 + len("Vertices") + 13
	require.Equal(t, []byte{0x78, 0x9c}, data[at:at+2])
	data[at], data[at+1] = 0, 0

	_, err = Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptArray))
}

func TestBinaryOversizedArrayCount(t *testing.T) {
	tree := Build(NewElement("Vertices", Float64Array([]float64{1, 2})))
	data, err := EncodeBytes(tree, 7400, true)
	require.NoError(t, err)

	at := headerSize + 12 + 1 + len("Vertices")
	require.Equal(t, byte('d'), data[at])
	at++
	le.PutUint32(data[at:], 1<<26)

	_, err = Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptArray))
}

func TestBinaryEmptyDocument(t *testing.T) {
	data, err := EncodeBytes(Build(), 7400, false)
	require.NoError(t, err)
	tree, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, tree.Root().NumChildren())
}
