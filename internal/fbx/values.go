package fbx

// Float64s returns the node's numeric payload. Documents written since
// 7.0 wrap arrays in an "a" child; older ones use a single array property
// or a plain list of scalar properties.
func (n Node) Float64s() []float64 {
	if a := n.Child("a"); a.Valid() {
		return a.Float64s()
	}
	props := n.Props()
	if len(props) == 0 {
		return nil
	}
	if props[0].Kind().IsArray() {
		return props[0].Float64s()
	}
	out := make([]float64, len(props))
	for i, p := range props {
		out[i] = p.Float()
	}
	return out
}

// Float32s is Float64s narrowed to float32.
func (n Node) Float32s() []float32 {
	if a := n.Child("a"); a.Valid() {
		return a.Float32s()
	}
	props := n.Props()
	if len(props) == 0 {
		return nil
	}
	if props[0].Kind().IsArray() {
		return props[0].Float32s()
	}
	out := make([]float32, len(props))
	for i, p := range props {
		out[i] = float32(p.Float())
	}
	return out
}

// Ints returns the node's payload as ints.
func (n Node) Ints() []int {
	if a := n.Child("a"); a.Valid() {
		return a.Ints()
	}
	props := n.Props()
	if len(props) == 0 {
		return nil
	}
	if props[0].Kind().IsArray() {
		wide := props[0].Int64s()
		out := make([]int, len(wide))
		for i, v := range wide {
			out[i] = int(v)
		}
		return out
	}
	out := make([]int, len(props))
	for i, p := range props {
		out[i] = int(p.Int())
	}
	return out
}

// Int64s returns the node's payload as int64s.
func (n Node) Int64s() []int64 {
	if a := n.Child("a"); a.Valid() {
		return a.Int64s()
	}
	props := n.Props()
	if len(props) == 0 {
		return nil
	}
	if props[0].Kind().IsArray() {
		return props[0].Int64s()
	}
	out := make([]int64, len(props))
	for i, p := range props {
		out[i] = p.Int()
	}
	return out
}

// Attribute is one entry of a Properties70 or Properties60 block.
// Values holds the properties that follow the type header.
type Attribute struct {
	Name   string
	Values []Property
}

// Value returns value i of the attribute, or the zero Property.
func (a Attribute) Value(i int) Property {
	if i < 0 || i >= len(a.Values) {
		return Property{}
	}
	return a.Values[i]
}

// Attributes collects the entries of every Properties70 ("P", values from
// index 4) and Properties60 ("Property", values from index 3) child.
func (n Node) Attributes() []Attribute {
	var out []Attribute
	for _, c := range n.Children() {
		var entry string
		var skip int
		switch c.Name() {
		case "Properties70":
			entry, skip = "P", 4
		case "Properties60":
			entry, skip = "Property", 3
		default:
			continue
		}
		for _, p := range c.ChildrenNamed(entry) {
			props := p.Props()
			if len(props) == 0 {
				continue
			}
			a := Attribute{Name: props[0].String()}
			if len(props) > skip {
				a.Values = props[skip:]
			}
			out = append(out, a)
		}
	}
	return out
}

// Triple reads three consecutive values starting at index i. Missing
// values are 0.
func Triple(props []Property, i int) [3]float64 {
	var out [3]float64
	for k := 0; k < 3; k++ {
		if i+k < len(props) {
			out[k] = props[i+k].Float()
		}
	}
	return out
}
