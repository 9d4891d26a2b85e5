package bbcode

import (
	"strings"
)

// Name is the registered format name.
const Name = "bbcode"

// Document is the native BBCode tree: a sequence of text and tag nodes.
type Document struct {
	Nodes []*Node

	consumed bool
}

// FormatName implements format.Native.
func (*Document) FormatName() string { return Name }

// Node is a BBCode text run or tag element.
type Node struct {
	// Tag is the lower-case tag name; empty for text.
	Tag string

	// Param is the value after '=' in the opening tag (e.g., "red" in [color=red]).
	Param string

	// Attrs holds key="value" attributes of the opening tag.
	Attrs map[string]string

	// Children contains the element content.
	Children []*Node

	// Text is the content of a text node.
	Text string

	// Verbatim marks a text node written without escaping.
	Verbatim bool

	// Source is the original markup of an element that was read, from its
	// opening tag to its closing tag.
	Source string

	// Offset is the byte offset of the node in the input.
	Offset int
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == ""
}

// Attr returns an attribute value, or "" when absent.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Text: s}
}

// Element creates a tag node.
func Element(tag, param string, children ...*Node) *Node {
	return &Node{Tag: tag, Param: param, Children: children}
}

// literalTags hold unparsed text up to their closing tag.
var literalTags = map[string]bool{
	"code":    true,
	"icode":   true,
	"pre":     true,
	"noparse": true,
}

// voidTags have no closing tag.
var voidTags = map[string]bool{
	"hr": true,
}

// blockTags are converted to block nodes.
var blockTags = map[string]bool{
	"quote":   true,
	"list":    true,
	"ul":      true,
	"ol":      true,
	"code":    true,
	"pre":     true,
	"table":   true,
	"hr":      true,
	"center":  true,
	"left":    true,
	"right":   true,
	"spoiler": true,
	"youtube": true,
}
