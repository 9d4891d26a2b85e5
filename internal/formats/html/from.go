package html

import (
	"fmt"
	"strconv"

	xhtml "golang.org/x/net/html"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
)

// Capabilities lists what HTML represents exactly.
const Capabilities = loss.All &^ loss.QuoteAttribution

// ConvertFrom converts a common AST into an HTML fragment. Top-level blocks
// are separated by newlines.
func ConvertFrom(doc *ast.Document, opts format.Options) (*Fragment, *loss.Report, error) {
	degraded, report, err := format.Degrade(doc, Name, Capabilities, opts)
	if err != nil {
		return nil, nil, err
	}

	c := &fromConverter{}
	f := &Fragment{}
	for i, b := range degraded.Blocks {
		if i > 0 {
			f.Nodes = append(f.Nodes, textNode("\n"))
		}
		f.Nodes = append(f.Nodes, c.block(b, fmt.Sprintf("document.blocks[%d]", i)))
	}
	if c.err != nil {
		return nil, nil, format.FromError(Name, c.err)
	}
	return f, report, nil
}

type fromConverter struct {
	err error
}

func (c *fromConverter) fail(path string, n ast.Node) *xhtml.Node {
	if c.err == nil {
		c.err = tmerrors.NewStructural(path, string(n.Kind()), fmt.Sprintf("%s survived degradation", n.Kind()))
	}
	return textNode("")
}

func (c *fromConverter) blocks(blocks []ast.Block, field string) []*xhtml.Node {
	out := make([]*xhtml.Node, 0, len(blocks))
	for i, b := range blocks {
		out = append(out, c.block(b, fmt.Sprintf("%s[%d]", field, i)))
	}
	return out
}

func (c *fromConverter) block(b ast.Block, path string) *xhtml.Node {
	switch b := b.(type) {
	case *ast.Paragraph:
		return appendChildren(element("p"), c.inlines(b.Children))

	case *ast.Heading:
		return appendChildren(element("h"+strconv.Itoa(b.Level)), c.inlines(b.Children))

	case *ast.List:
		var l *xhtml.Node
		switch {
		case !b.Ordered:
			l = element("ul")
		case b.Start > 1:
			l = element("ol", xhtml.Attribute{Key: "start", Val: strconv.Itoa(b.Start)})
		default:
			l = element("ol")
		}
		for i, item := range b.Items {
			l.AppendChild(appendChildren(element("li"), c.item(item, fmt.Sprintf("%s.items[%d].children", path, i))))
		}
		return l

	case *ast.CodeBlock:
		code := element("code")
		if b.Language != "" {
			code.Attr = []xhtml.Attribute{{Key: "class", Val: "language-" + b.Language}}
		}
		code.AppendChild(textNode(b.Text))
		return appendChildren(element("pre"), []*xhtml.Node{code})

	case *ast.Quote:
		return appendChildren(element("blockquote"), c.blocks(b.Children, path+".children"))

	case *ast.ThematicBreak:
		return element("hr")

	case *ast.Table:
		return c.table(b)

	case *ast.Raw:
		return &xhtml.Node{Type: xhtml.RawNode, Data: b.Text}
	}
	return c.fail(path, b)
}

// item renders list item content. A sole paragraph is written without its
// p element.
func (c *fromConverter) item(item *ast.ListItem, field string) []*xhtml.Node {
	paragraphs := 0
	for _, b := range item.Children {
		if _, ok := b.(*ast.Paragraph); ok {
			paragraphs++
		}
	}
	first, ok := firstParagraph(item.Children)
	if !ok || paragraphs != 1 {
		return c.blocks(item.Children, field)
	}
	out := c.inlines(first.Children)
	for i, b := range item.Children[1:] {
		out = append(out, c.block(b, fmt.Sprintf("%s[%d]", field, i+1)))
	}
	return out
}

func firstParagraph(blocks []ast.Block) (*ast.Paragraph, bool) {
	if len(blocks) == 0 {
		return nil, false
	}
	p, ok := blocks[0].(*ast.Paragraph)
	return p, ok
}

func (c *fromConverter) table(t *ast.Table) *xhtml.Node {
	table := element("table")
	var head, body *xhtml.Node
	for _, row := range t.Rows {
		tr := element("tr")
		cellTag := "td"
		if row.Header {
			cellTag = "th"
		}
		for _, cell := range row.Cells {
			tr.AppendChild(appendChildren(element(cellTag), c.inlines(cell.Children)))
		}

		if row.Header && body == nil {
			if head == nil {
				head = element("thead")
				table.AppendChild(head)
			}
			head.AppendChild(tr)
			continue
		}
		if body == nil {
			body = element("tbody")
			table.AppendChild(body)
		}
		body.AppendChild(tr)
	}
	return table
}

func (c *fromConverter) inlines(inlines []ast.Inline) []*xhtml.Node {
	var out []*xhtml.Node
	for _, in := range inlines {
		out = append(out, c.inline(in))
	}
	return out
}

func (c *fromConverter) inline(in ast.Inline) *xhtml.Node {
	switch in := in.(type) {
	case *ast.Text:
		return textNode(in.Value)
	case *ast.Emphasis:
		return appendChildren(element("em"), c.inlines(in.Children))
	case *ast.Strong:
		return appendChildren(element("strong"), c.inlines(in.Children))
	case *ast.Strikethrough:
		return appendChildren(element("s"), c.inlines(in.Children))
	case *ast.Underline:
		return appendChildren(element("u"), c.inlines(in.Children))
	case *ast.Code:
		return appendChildren(element("code"), []*xhtml.Node{textNode(in.Value)})
	case *ast.LineBreak:
		return element("br")
	case *ast.Link:
		return appendChildren(element("a", xhtml.Attribute{Key: "href", Val: in.Target}), c.inlines(in.Children))
	case *ast.Image:
		return element("img", xhtml.Attribute{Key: "src", Val: in.Target}, xhtml.Attribute{Key: "alt", Val: in.Alt})
	case *ast.Styled:
		return appendChildren(styledElement(in), c.inlines(in.Children))
	case *ast.RawInline:
		return &xhtml.Node{Type: xhtml.RawNode, Data: in.Text}
	}
	return c.fail("", in)
}

// styledElement uses font for level sizes, which CSS cannot express, and a
// styled span otherwise.
func styledElement(s *ast.Styled) *xhtml.Node {
	if s.Size != nil && s.Size.Unit == ast.UnitLevel {
		var attrs []xhtml.Attribute
		if s.Color != nil {
			attrs = append(attrs, xhtml.Attribute{Key: "color", Val: s.Color.String()})
		}
		attrs = append(attrs, xhtml.Attribute{Key: "size", Val: s.Size.String()})
		return element("font", attrs...)
	}
	return element("span", xhtml.Attribute{Key: "style", Val: formatStyle(s.Color, s.Size)})
}
