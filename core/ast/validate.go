package ast

import (
	"fmt"
)

// Validate checks every invariant of the tree rooted at doc and returns the
// first violation found, in document order:
//
//   - every node has exactly one owner (no shared subtrees, no cycles)
//   - no nil children
//   - heading levels lie in 1..6
//   - Raw nodes name their origin format
//
// Block/inline separation is guaranteed by the Block and Inline types.
func Validate(doc *Document) error {
	if doc == nil {
		return structural("document", KindDocument, "nil document")
	}
	v := &validator{seen: make(map[Node]string)}
	return v.check(doc, "document")
}

type validator struct {
	seen map[Node]string
}

func (v *validator) check(n Node, path string) error {
	if isNil(n) {
		return structural(path, "nil", "nil node")
	}
	if prev, ok := v.seen[n]; ok {
		return structural(path, n.Kind(), fmt.Sprintf("%s is also owned at %s", n.Kind(), prev))
	}
	v.seen[n] = path

	switch n := n.(type) {
	case *Heading:
		if n.Level < 1 || n.Level > 6 {
			return structural(path, KindHeading, fmt.Sprintf("heading level %d outside 1..6", n.Level))
		}
	case *List:
		if n.Start < 0 {
			return structural(path, KindList, fmt.Sprintf("negative list start %d", n.Start))
		}
	case *Raw:
		if n.Format == "" {
			return structural(path, KindRaw, "raw node without origin format")
		}
	case *RawInline:
		if n.Format == "" {
			return structural(path, KindRawInline, "raw node without origin format")
		}
	}

	for _, c := range Children(n) {
		if err := v.check(c.Node, path+"."+c.Segment); err != nil {
			return err
		}
	}
	return nil
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *Document:
		return n == nil
	case *Paragraph:
		return n == nil
	case *Heading:
		return n == nil
	case *List:
		return n == nil
	case *ListItem:
		return n == nil
	case *CodeBlock:
		return n == nil
	case *Quote:
		return n == nil
	case *ThematicBreak:
		return n == nil
	case *Table:
		return n == nil
	case *TableRow:
		return n == nil
	case *TableCell:
		return n == nil
	case *Raw:
		return n == nil
	case *Text:
		return n == nil
	case *Emphasis:
		return n == nil
	case *Strong:
		return n == nil
	case *Strikethrough:
		return n == nil
	case *Underline:
		return n == nil
	case *Code:
		return n == nil
	case *Link:
		return n == nil
	case *Image:
		return n == nil
	case *LineBreak:
		return n == nil
	case *Styled:
		return n == nil
	case *RawInline:
		return n == nil
	}
	return false
}
