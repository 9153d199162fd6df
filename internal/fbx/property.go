package fbx

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the payload stored in a Property.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindRaw
	KindBoolArray
	KindInt32Array
	KindInt64Array
	KindFloat32Array
	KindFloat64Array
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindBool:         "bool",
	KindInt16:        "int16",
	KindInt32:        "int32",
	KindInt64:        "int64",
	KindFloat32:      "float32",
	KindFloat64:      "float64",
	KindString:       "string",
	KindRaw:          "raw",
	KindBoolArray:    "[]bool",
	KindInt32Array:   "[]int32",
	KindInt64Array:   "[]int64",
	KindFloat32Array: "[]float32",
	KindFloat64Array: "[]float64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsArray reports whether the kind is one of the homogeneous array kinds.
func (k Kind) IsArray() bool {
	return k >= KindBoolArray && k <= KindFloat64Array
}

// Property is one typed value of a node's property list.
// Scalars live in num (integers, bools) or real (floats); strings and raw
// blobs in str; arrays in the slice matching the kind.
type Property struct {
	kind Kind
	num  int64
	real float64
	str  string

	bools []bool
	i32   []int32
	i64   []int64
	f32   []float32
	f64   []float64
}

func Bool(v bool) Property {
	p := Property{kind: KindBool}
	if v {
		p.num = 1
	}
	return p
}

func Int16(v int16) Property     { return Property{kind: KindInt16, num: int64(v)} }
func Int32(v int32) Property     { return Property{kind: KindInt32, num: int64(v)} }
func Int64(v int64) Property     { return Property{kind: KindInt64, num: v} }
func Float32(v float32) Property { return Property{kind: KindFloat32, real: float64(v)} }
func Float64(v float64) Property { return Property{kind: KindFloat64, real: v} }
func String(v string) Property   { return Property{kind: KindString, str: v} }
func Raw(v []byte) Property      { return Property{kind: KindRaw, str: string(v)} }

func BoolArray(v []bool) Property       { return Property{kind: KindBoolArray, bools: v} }
func Int32Array(v []int32) Property     { return Property{kind: KindInt32Array, i32: v} }
func Int64Array(v []int64) Property     { return Property{kind: KindInt64Array, i64: v} }
func Float32Array(v []float32) Property { return Property{kind: KindFloat32Array, f32: v} }
func Float64Array(v []float64) Property { return Property{kind: KindFloat64Array, f64: v} }

// Kind returns the payload kind. The zero Property has KindInvalid.
func (p Property) Kind() Kind { return p.kind }

// Len returns the element count of an array property, or 0.
func (p Property) Len() int {
	switch p.kind {
	case KindBoolArray:
		return len(p.bools)
	case KindInt32Array:
		return len(p.i32)
	case KindInt64Array:
		return len(p.i64)
	case KindFloat32Array:
		return len(p.f32)
	case KindFloat64Array:
		return len(p.f64)
	}
	return 0
}

// String converts the property to text. Numbers use their shortest decimal
// form so that binary IDs and text IDs compare equal.
func (p Property) String() string {
	switch p.kind {
	case KindString, KindRaw:
		return p.str
	case KindBool:
		if p.num != 0 {
			return "true"
		}
		return "false"
	case KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(p.num, 10)
	case KindFloat32:
		return strconv.FormatFloat(p.real, 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(p.real, 'g', -1, 64)
	}
	return ""
}

// Bytes returns the raw payload of a string or blob property.
func (p Property) Bytes() []byte {
	switch p.kind {
	case KindString, KindRaw:
		return []byte(p.str)
	}
	return nil
}

// Int converts a scalar to an integer. Text is parsed; unparseable text is 0.
func (p Property) Int() int64 {
	switch p.kind {
	case KindBool, KindInt16, KindInt32, KindInt64:
		return p.num
	case KindFloat32, KindFloat64:
		return int64(p.real)
	case KindString, KindRaw:
		s := strings.TrimSpace(p.str)
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(v)
		}
	}
	return 0
}

// Float converts a scalar to a float. Text is parsed; unparseable text is 0.
func (p Property) Float() float64 {
	switch p.kind {
	case KindBool, KindInt16, KindInt32, KindInt64:
		return float64(p.num)
	case KindFloat32, KindFloat64:
		return p.real
	case KindString, KindRaw:
		if v, err := strconv.ParseFloat(strings.TrimSpace(p.str), 64); err == nil {
			return v
		}
	}
	return 0
}

// Bool converts a scalar to a bool. Text is false when empty, "0" or "false".
func (p Property) Bool() bool {
	switch p.kind {
	case KindBool, KindInt16, KindInt32, KindInt64:
		return p.num != 0
	case KindFloat32, KindFloat64:
		return p.real != 0
	case KindString, KindRaw:
		s := strings.ToLower(strings.TrimSpace(p.str))
		return s != "" && s != "0" && s != "false"
	}
	return false
}

// Float64s returns an array property widened to float64, or nil for scalars.
func (p Property) Float64s() []float64 {
	switch p.kind {
	case KindFloat64Array:
		return p.f64
	case KindFloat32Array:
		out := make([]float64, len(p.f32))
		for i, v := range p.f32 {
			out[i] = float64(v)
		}
		return out
	case KindInt32Array:
		out := make([]float64, len(p.i32))
		for i, v := range p.i32 {
			out[i] = float64(v)
		}
		return out
	case KindInt64Array:
		out := make([]float64, len(p.i64))
		for i, v := range p.i64 {
			out[i] = float64(v)
		}
		return out
	case KindBoolArray:
		out := make([]float64, len(p.bools))
		for i, v := range p.bools {
			if v {
				out[i] = 1
			}
		}
		return out
	}
	return nil
}

// Float32s returns an array property narrowed to float32, or nil for scalars.
func (p Property) Float32s() []float32 {
	if p.kind == KindFloat32Array {
		return p.f32
	}
	wide := p.Float64s()
	if wide == nil {
		return nil
	}
	out := make([]float32, len(wide))
	for i, v := range wide {
		out[i] = float32(v)
	}
	return out
}

// Int64s returns an array property converted to int64, or nil for scalars.
func (p Property) Int64s() []int64 {
	switch p.kind {
	case KindInt64Array:
		return p.i64
	case KindInt32Array:
		out := make([]int64, len(p.i32))
		for i, v := range p.i32 {
			out[i] = int64(v)
		}
		return out
	}
	wide := p.Float64s()
	if wide == nil {
		return nil
	}
	out := make([]int64, len(wide))
	for i, v := range wide {
		out[i] = int64(v)
	}
	return out
}

// Int32s returns an array property converted to int32, or nil for scalars.
// Values outside the int32 range saturate.
func (p Property) Int32s() []int32 {
	if p.kind == KindInt32Array {
		return p.i32
	}
	wide := p.Int64s()
	if wide == nil {
		return nil
	}
	out := make([]int32, len(wide))
	for i, v := range wide {
		switch {
		case v > math.MaxInt32:
			out[i] = math.MaxInt32
		case v < math.MinInt32:
			out[i] = math.MinInt32
		default:
			out[i] = int32(v)
		}
	}
	return out
}

// Bools returns a bool array property, or nil for other kinds.
func (p Property) Bools() []bool {
	if p.kind == KindBoolArray {
		return p.bools
	}
	return nil
}
