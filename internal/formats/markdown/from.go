package markdown

import (
	"fmt"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
)

// ConvertFrom converts a common AST into a Markdown document of the flavor
// named by opts.Flavor, degrading what the flavor cannot represent.
func ConvertFrom(doc *ast.Document, opts format.Options) (*Document, *loss.Report, error) {
	flavor, err := ParseFlavor(opts.Flavor)
	if err != nil {
		return nil, nil, format.FromError(Name, err)
	}
	degraded, report, err := format.Degrade(doc, Name, flavor.Capabilities(), opts)
	if err != nil {
		return nil, nil, err
	}

	b := &builder{}
	root := gast.NewDocument()
	b.blocks(root, degraded.Blocks, "document.blocks")
	if b.err != nil {
		return nil, nil, format.FromError(Name, b.err)
	}
	return &Document{Root: root, Source: b.src, Flavor: flavor}, report, nil
}

// builder creates goldmark nodes whose text segments point into src.
type builder struct {
	src []byte
	err error
}

func (b *builder) segment(s string) text.Segment {
	start := len(b.src)
	b.src = append(b.src, s...)
	return text.NewSegment(start, len(b.src))
}

func (b *builder) text(s string) *gast.Text {
	return gast.NewRawTextSegment(b.segment(s))
}

func (b *builder) fail(path string, n ast.Node) {
	if b.err == nil {
		b.err = tmerrors.NewStructural(path, string(n.Kind()), fmt.Sprintf("%s survived degradation", n.Kind()))
	}
}

func (b *builder) blocks(parent gast.Node, blocks []ast.Block, field string) {
	for i, blk := range blocks {
		if n := b.block(blk, fmt.Sprintf("%s[%d]", field, i)); n != nil {
			parent.AppendChild(parent, n)
		}
	}
}

func (b *builder) block(blk ast.Block, path string) gast.Node {
	switch blk := blk.(type) {
	case *ast.Paragraph:
		p := gast.NewParagraph()
		b.inlines(p, blk.Children)
		return p

	case *ast.Heading:
		h := gast.NewHeading(blk.Level)
		b.inlines(h, blk.Children)
		return h

	case *ast.ThematicBreak:
		return gast.NewThematicBreak()

	case *ast.CodeBlock:
		var info *gast.Text
		if blk.Language != "" {
			info = b.text(blk.Language)
		}
		code := gast.NewFencedCodeBlock(info)
		lines := text.NewSegments()
		if blk.Text != "" {
			lines.Append(b.segment(blk.Text + "\n"))
		}
		code.SetLines(lines)
		return code

	case *ast.Quote:
		q := gast.NewBlockquote()
		b.blocks(q, blk.Children, path+".children")
		return q

	case *ast.List:
		marker := byte('-')
		if blk.Ordered {
			marker = '.'
		}
		l := gast.NewList(marker)
		l.IsTight = isTight(blk)
		if blk.Ordered {
			l.Start = blk.Start
			if l.Start == 0 {
				l.Start = 1
			}
		}
		for i, item := range blk.Items {
			li := gast.NewListItem(0)
			b.blocks(li, item.Children, fmt.Sprintf("%s.items[%d].children", path, i))
			l.AppendChild(l, li)
		}
		return l

	case *ast.Table:
		return b.table(blk)

	case *ast.Raw:
		return NewRawBlock(blk.Text)
	}

	b.fail(path, blk)
	return nil
}

// isTight reports whether every item holds at most one block besides
// nested lists.
func isTight(l *ast.List) bool {
	for _, item := range l.Items {
		other := 0
		for _, c := range item.Children {
			if _, ok := c.(*ast.List); !ok {
				other++
			}
		}
		if other > 1 {
			return false
		}
	}
	return true
}

func (b *builder) table(t *ast.Table) gast.Node {
	columns := 0
	for _, row := range t.Rows {
		columns = max(columns, len(row.Cells))
	}
	alignments := make([]east.Alignment, columns)
	for i := range alignments {
		alignments[i] = east.AlignNone
	}

	table := east.NewTable()
	table.Alignments = alignments
	for _, row := range t.Rows {
		r := east.NewTableRow(alignments)
		for _, cell := range row.Cells {
			c := east.NewTableCell()
			b.inlines(c, cell.Children)
			r.AppendChild(r, c)
		}
		if row.Header {
			table.AppendChild(table, east.NewTableHeader(r))
			continue
		}
		table.AppendChild(table, r)
	}
	return table
}

func (b *builder) inlines(parent gast.Node, inlines []ast.Inline) {
	for _, in := range inlines {
		if n := b.inline(in); n != nil {
			parent.AppendChild(parent, n)
		}
	}
}

func (b *builder) inline(in ast.Inline) gast.Node {
	switch in := in.(type) {
	case *ast.Text:
		return b.text(in.Value)

	case *ast.LineBreak:
		t := b.text("")
		t.SetHardLineBreak(true)
		return t

	case *ast.Emphasis:
		e := gast.NewEmphasis(1)
		b.inlines(e, in.Children)
		return e

	case *ast.Strong:
		e := gast.NewEmphasis(2)
		b.inlines(e, in.Children)
		return e

	case *ast.Strikethrough:
		s := east.NewStrikethrough()
		b.inlines(s, in.Children)
		return s

	case *ast.Code:
		c := gast.NewCodeSpan()
		c.AppendChild(c, b.text(in.Value))
		return c

	case *ast.Link:
		l := gast.NewLink()
		l.Destination = []byte(in.Target)
		b.inlines(l, in.Children)
		return l

	case *ast.Image:
		l := gast.NewLink()
		l.Destination = []byte(in.Target)
		img := gast.NewImage(l)
		if in.Alt != "" {
			img.AppendChild(img, b.text(in.Alt))
		}
		return img

	case *ast.RawInline:
		return NewRawInline(in.Text)
	}

	// Underline and Styled never survive degradation.
	b.fail("", in)
	return nil
}
