package markdown

import (
	"fmt"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
)

// ConvertInto converts a Markdown document into the common AST. HTML blocks
// and inline HTML become Raw and RawInline nodes of this format.
func ConvertInto(d *Document) (*ast.Document, error) {
	if d == nil || d.consumed {
		return nil, format.IntoError(Name, "", tmerrors.NewStructural("", "Document", "document is nil or already consumed"))
	}
	d.consumed = true
	if d.Root == nil {
		return &ast.Document{}, nil
	}

	c := &intoConverter{src: d.Source, notes: newWriter(d)}
	blocks := c.blocks(d.Root)
	if c.err != nil {
		return nil, format.IntoError(Name, "", c.err)
	}
	return &ast.Document{Blocks: blocks}, nil
}

type intoConverter struct {
	src []byte
	err error

	// notes renders footnotes, which have no common node, back to Markdown.
	notes *writer
}

func (c *intoConverter) fail(n gast.Node) {
	if c.err == nil {
		c.err = tmerrors.NewStructural("", n.Kind().String(), fmt.Sprintf("unexpected %s node", n.Kind()))
	}
}

func (c *intoConverter) blocks(parent gast.Node) []ast.Block {
	var out []ast.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if list, ok := n.(*east.FootnoteList); ok {
			out = append(out, c.footnotes(list)...)
			continue
		}
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// footnotes carries each footnote definition as a Raw block.
func (c *intoConverter) footnotes(list *east.FootnoteList) []ast.Block {
	var out []ast.Block
	for n := list.FirstChild(); n != nil; n = n.NextSibling() {
		fn, ok := n.(*east.Footnote)
		if !ok {
			c.fail(n)
			continue
		}
		out = append(out, &ast.Raw{Format: Name, Text: c.notes.footnote(fn)})
	}
	if c.err == nil && c.notes.err != nil {
		c.err = c.notes.err
	}
	return out
}

func (c *intoConverter) block(n gast.Node) ast.Block {
	switch n := n.(type) {
	case *gast.Paragraph, *gast.TextBlock:
		return &ast.Paragraph{Children: c.inlines(n)}

	case *gast.Heading:
		return &ast.Heading{Level: n.Level, Children: c.inlines(n)}

	case *gast.ThematicBreak:
		return &ast.ThematicBreak{}

	case *gast.FencedCodeBlock:
		return &ast.CodeBlock{Language: string(n.Language(c.src)), Text: linesValue(n, c.src)}

	case *gast.CodeBlock:
		return &ast.CodeBlock{Text: linesValue(n, c.src)}

	case *gast.Blockquote:
		return &ast.Quote{Children: c.blocks(n)}

	case *gast.List:
		l := &ast.List{Ordered: n.IsOrdered()}
		if l.Ordered && n.Start > 1 {
			l.Start = n.Start
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			l.Items = append(l.Items, &ast.ListItem{Children: c.blocks(item)})
		}
		return l

	case *gast.HTMLBlock:
		return &ast.Raw{Format: Name, Text: linesValue(n, c.src)}

	case *RawBlock:
		return &ast.Raw{Format: Name, Text: n.Markup}

	case *east.Table:
		t := &ast.Table{}
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			r := &ast.TableRow{Header: row.Kind() == east.KindTableHeader}
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				r.Cells = append(r.Cells, &ast.TableCell{Children: c.inlines(cell)})
			}
			t.Rows = append(t.Rows, r)
		}
		return t

	case *gast.Document:
		return nil
	}

	c.fail(n)
	return nil
}

func (c *intoConverter) inlines(parent gast.Node) []ast.Inline {
	var out []ast.Inline
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.inline(n)...)
	}
	return ast.MergeText(out)
}

func (c *intoConverter) inline(n gast.Node) []ast.Inline {
	switch n := n.(type) {
	case *gast.Text:
		out := []ast.Inline{&ast.Text{Value: textValue(n, c.src)}}
		switch {
		case n.HardLineBreak():
			out = append(out, &ast.LineBreak{})
		case n.SoftLineBreak():
			out = append(out, &ast.Text{Value: " "})
		}
		return out

	case *gast.String:
		return []ast.Inline{&ast.Text{Value: string(n.Value)}}

	case *gast.Emphasis:
		children := c.inlines(n)
		if n.Level >= 2 {
			return []ast.Inline{&ast.Strong{Children: children}}
		}
		return []ast.Inline{&ast.Emphasis{Children: children}}

	case *east.Strikethrough:
		return []ast.Inline{&ast.Strikethrough{Children: c.inlines(n)}}

	case *gast.CodeSpan:
		return []ast.Inline{&ast.Code{Value: codeSpanValue(n, c.src)}}

	case *gast.Link:
		return []ast.Inline{&ast.Link{Target: resolve(n.Destination), Children: c.inlines(n)}}

	case *gast.AutoLink:
		return []ast.Inline{&ast.Link{
			Target:   string(n.URL(c.src)),
			Children: []ast.Inline{&ast.Text{Value: string(n.Label(c.src))}},
		}}

	case *gast.Image:
		return []ast.Inline{&ast.Image{Target: resolve(n.Destination), Alt: ast.PlainText(c.inlines(n))}}

	case *gast.RawHTML:
		return []ast.Inline{&ast.RawInline{Format: Name, Text: rawValue(n, c.src)}}

	case *RawInline:
		return []ast.Inline{&ast.RawInline{Format: Name, Text: n.Markup}}

	case *east.FootnoteLink:
		return []ast.Inline{&ast.RawInline{Format: Name, Text: c.notes.footnoteRef(n)}}

	case *east.FootnoteBacklink:
		return nil
	}

	c.fail(n)
	return nil
}
