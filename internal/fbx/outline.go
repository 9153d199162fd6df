package fbx

import (
	"fmt"
	"io"
	"strings"
)

// Outline renders the structural shape of n's subtree: one line per node
// with its name, property count and child count.
func Outline(n Node) string {
	var sb strings.Builder
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		fmt.Fprintf(&sb, "%s%s props=%d children=%d\n", strings.Repeat("  ", depth), n.Name(), n.NumProps(), n.NumChildren())
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	for _, c := range n.Children() {
		walk(c, 0)
	}
	return sb.String()
}

// Dump prints n's subtree with property values. Arrays are summarised and
// at most maxDepth levels are printed (0 means unlimited).
func Dump(w io.Writer, n Node, maxDepth int) {
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		if maxDepth > 0 && depth >= maxDepth {
			return
		}
		parts := make([]string, 0, n.NumProps())
		for _, p := range n.Props() {
			parts = append(parts, describe(p))
		}
		fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", depth), n.Name(), strings.Join(parts, ", "))
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	for _, c := range n.Children() {
		walk(c, 0)
	}
}

func describe(p Property) string {
	switch {
	case p.Kind().IsArray():
		return fmt.Sprintf("%s(%d)", p.Kind(), p.Len())
	case p.Kind() == KindRaw:
		return fmt.Sprintf("raw(%d bytes)", len(p.str))
	case p.Kind() == KindString:
		return fmt.Sprintf("%q", p.str)
	}
	return p.String()
}
