package ast

import "fmt"

// Child is a child node together with its path segment relative to the parent.
type Child struct {
	Segment string
	Node    Node
}

// Children returns the direct children of n in sibling order.
func Children(n Node) []Child {
	var out []Child
	switch n := n.(type) {
	case *Document:
		for i, b := range n.Blocks {
			out = append(out, Child{fmt.Sprintf("blocks[%d]", i), b})
		}
	case *List:
		for i, it := range n.Items {
			out = append(out, Child{fmt.Sprintf("items[%d]", i), it})
		}
	case *ListItem:
		for i, b := range n.Children {
			out = append(out, Child{fmt.Sprintf("children[%d]", i), b})
		}
	case *Quote:
		for i, b := range n.Children {
			out = append(out, Child{fmt.Sprintf("children[%d]", i), b})
		}
	case *Table:
		for i, r := range n.Rows {
			out = append(out, Child{fmt.Sprintf("rows[%d]", i), r})
		}
	case *TableRow:
		for i, c := range n.Cells {
			out = append(out, Child{fmt.Sprintf("cells[%d]", i), c})
		}
	case InlineContainer:
		for i, c := range n.Inlines() {
			out = append(out, Child{fmt.Sprintf("children[%d]", i), c})
		}
	}
	return out
}

// WalkFunc is called for every node visited by Walk, with the node's path
// from the root. Returning false skips the node's children.
type WalkFunc func(n Node, path string) bool

// Walk traverses the tree rooted at n in pre-order, visiting siblings in
// document order.
func Walk(n Node, fn WalkFunc) {
	walk(n, rootPath(n), fn)
}

func walk(n Node, path string, fn WalkFunc) {
	if isNil(n) || !fn(n, path) {
		return
	}
	for _, c := range Children(n) {
		walk(c.Node, path+"."+c.Segment, fn)
	}
}

// rootPath names the root segment of a path.
func rootPath(n Node) string {
	if n == nil {
		return ""
	}
	if n.Kind() == KindDocument {
		return "document"
	}
	return lowerFirst(string(n.Kind()))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// PlainText returns the textual content of inline nodes, with line breaks
// rendered as newlines and images as their alternative text.
func PlainText(inlines []Inline) string {
	var buf []byte
	var visit func([]Inline)
	visit = func(list []Inline) {
		for _, in := range list {
			switch in := in.(type) {
			case *Text:
				buf = append(buf, in.Value...)
			case *Code:
				buf = append(buf, in.Value...)
			case *Image:
				buf = append(buf, in.Alt...)
			case *LineBreak:
				buf = append(buf, '\n')
			case *RawInline:
				buf = append(buf, in.Text...)
			case InlineContainer:
				visit(in.Inlines())
			}
		}
	}
	visit(inlines)
	return string(buf)
}

// MergeText joins adjacent Text nodes of a sibling list. The first node of
// each run keeps its identity; empty Text nodes are dropped.
func MergeText(inlines []Inline) []Inline {
	out := inlines[:0:0]
	for _, in := range inlines {
		t, ok := in.(*Text)
		if !ok {
			out = append(out, in)
			continue
		}
		if t.Value == "" {
			continue
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(*Text); ok {
				prev.Value += t.Value
				continue
			}
		}
		out = append(out, t)
	}
	return out
}
