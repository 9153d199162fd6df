package fbx

// Tree is an immutable node tree. Nodes are stored in one dense slice and
// each node's children occupy a contiguous range of the shared kids slice.
// Index 0 is a synthetic root whose children are the top-level nodes.
type Tree struct {
	nodes []record
	kids  []int32
}

type record struct {
	name  string
	props []Property
	first int32
	count int32
}

// Node is a read-only handle to one node of a Tree. The zero Node is
// invalid; every accessor on it returns an empty result.
type Node struct {
	t *Tree
	i int32
}

// Root returns the synthetic root node.
func (t *Tree) Root() Node {
	if t == nil || len(t.nodes) == 0 {
		return Node{}
	}
	return Node{t: t, i: 0}
}

// Len returns the number of nodes, not counting the synthetic root.
func (t *Tree) Len() int {
	if t == nil || len(t.nodes) == 0 {
		return 0
	}
	return len(t.nodes) - 1
}

// Valid reports whether n refers to a node.
func (n Node) Valid() bool { return n.t != nil }

func (n Node) rec() *record { return &n.t.nodes[n.i] }

// Name returns the node name.
func (n Node) Name() string {
	if n.t == nil {
		return ""
	}
	return n.rec().name
}

// Props returns the node's properties. The slice must not be modified.
func (n Node) Props() []Property {
	if n.t == nil {
		return nil
	}
	return n.rec().props
}

// NumProps returns the property count.
func (n Node) NumProps() int { return len(n.Props()) }

// Prop returns property i, or the zero Property when out of range.
func (n Node) Prop(i int) Property {
	props := n.Props()
	if i < 0 || i >= len(props) {
		return Property{}
	}
	return props[i]
}

// NumChildren returns the child count.
func (n Node) NumChildren() int {
	if n.t == nil {
		return 0
	}
	return int(n.rec().count)
}

// Children returns the node's children in document order.
func (n Node) Children() []Node {
	if n.t == nil {
		return nil
	}
	r := n.rec()
	out := make([]Node, r.count)
	for k := range out {
		out[k] = Node{t: n.t, i: n.t.kids[r.first+int32(k)]}
	}
	return out
}

// Child returns the first child with the given name, or an invalid Node.
func (n Node) Child(name string) Node {
	if n.t == nil {
		return Node{}
	}
	r := n.rec()
	for k := r.first; k < r.first+r.count; k++ {
		idx := n.t.kids[k]
		if n.t.nodes[idx].name == name {
			return Node{t: n.t, i: idx}
		}
	}
	return Node{}
}

// ChildrenNamed returns every child with the given name.
func (n Node) ChildrenNamed(name string) []Node {
	if n.t == nil {
		return nil
	}
	var out []Node
	r := n.rec()
	for k := r.first; k < r.first+r.count; k++ {
		idx := n.t.kids[k]
		if n.t.nodes[idx].name == name {
			out = append(out, Node{t: n.t, i: idx})
		}
	}
	return out
}

// Find follows a path of child names from n.
func (n Node) Find(path ...string) Node {
	for _, name := range path {
		n = n.Child(name)
		if !n.Valid() {
			return Node{}
		}
	}
	return n
}

// treeBuilder appends nodes bottom-up: children are finished before their
// parent, so each parent's child indices can be appended as one block.
type treeBuilder struct {
	t *Tree
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{t: &Tree{nodes: []record{{}}}}
}

func (b *treeBuilder) add(name string, props []Property, children []int32) int32 {
	idx := int32(len(b.t.nodes))
	b.t.nodes = append(b.t.nodes, b.record(name, props, children))
	return idx
}

func (b *treeBuilder) record(name string, props []Property, children []int32) record {
	r := record{name: name, props: props, first: int32(len(b.t.kids)), count: int32(len(children))}
	b.t.kids = append(b.t.kids, children...)
	return r
}

func (b *treeBuilder) finish(top []int32) *Tree {
	b.t.nodes[0] = b.record("", nil, top)
	return b.t
}

// Element is a mutable node description used to build trees in code.
type Element struct {
	Name     string
	Props    []Property
	Children []*Element
}

// NewElement returns an element with the given name and properties.
func NewElement(name string, props ...Property) *Element {
	return &Element{Name: name, Props: props}
}

// Add appends children and returns e.
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Build converts element descriptions into a Tree with the elements as
// top-level nodes.
func Build(top ...*Element) *Tree {
	b := newTreeBuilder()
	var walk func(e *Element) int32
	walk = func(e *Element) int32 {
		kids := make([]int32, 0, len(e.Children))
		for _, c := range e.Children {
			kids = append(kids, walk(c))
		}
		return b.add(e.Name, e.Props, kids)
	}
	ids := make([]int32, 0, len(top))
	for _, e := range top {
		ids = append(ids, walk(e))
	}
	return b.finish(ids)
}

// Element converts a node and its subtree back into an Element.
func (n Node) Element() *Element {
	if !n.Valid() {
		return nil
	}
	e := &Element{Name: n.Name(), Props: append([]Property(nil), n.Props()...)}
	for _, c := range n.Children() {
		e.Children = append(e.Children, c.Element())
	}
	return e
}
