package html

import (
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Name is the registered format name.
const Name = "html"

// Fragment is the native HTML tree: the top-level nodes of a body fragment.
type Fragment struct {
	Nodes []*xhtml.Node

	consumed bool
}

// FormatName implements format.Native.
func (*Fragment) FormatName() string { return Name }

// blockElements are read as blocks; everything else is inline content.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Pre: true, atom.Blockquote: true, atom.Hr: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tfoot: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Div: true, atom.Section: true, atom.Article: true, atom.Aside: true, atom.Header: true, atom.Footer: true,
	atom.Nav: true, atom.Main: true, atom.Figure: true, atom.Figcaption: true, atom.Form: true, atom.Fieldset: true,
	atom.Dl: true, atom.Dt: true, atom.Dd: true, atom.Address: true, atom.Details: true, atom.Summary: true,
	atom.Center: true, atom.Iframe: true, atom.Video: true, atom.Audio: true, atom.Canvas: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// attr returns the value of the named attribute, or "".
func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *xhtml.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

// textContent returns the concatenated text of n and its descendants.
func textContent(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// outerHTML renders n with its descendants.
func outerHTML(n *xhtml.Node) string {
	var sb strings.Builder
	if err := xhtml.Render(&sb, n); err != nil {
		return textContent(n)
	}
	return sb.String()
}

// element creates an element node.
func element(tag string, attrs ...xhtml.Attribute) *xhtml.Node {
	return &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func textNode(s string) *xhtml.Node {
	return &xhtml.Node{Type: xhtml.TextNode, Data: s}
}

func appendChildren(parent *xhtml.Node, children []*xhtml.Node) *xhtml.Node {
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}
