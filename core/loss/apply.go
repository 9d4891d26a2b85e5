package loss

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/internal/workerpool"
)

// DefaultTableDelimiter separates cell text when a table is flattened.
const DefaultTableDelimiter = "\t"

// thematicBreakText replaces a thematic break in targets without one.
const thematicBreakText = "* * *"

// Options configures Apply.
type Options struct {
	// Strict turns the first degradation into an UnsupportedConstructError.
	Strict bool

	// Parallel degrades top-level blocks concurrently. The result is
	// identical to a sequential run.
	Parallel bool

	// Workers bounds the number of goroutines used in parallel mode
	// (0 means GOMAXPROCS).
	Workers int

	// TableDelimiter joins cell text when tables are flattened
	// (empty means DefaultTableDelimiter).
	TableDelimiter string
}

// Apply consumes doc and returns a tree containing only constructs that
// target can represent, together with a report of every degradation applied.
// Nodes are visited in pre-order, siblings in document order, so the same
// input always yields the same tree and the same diagnostics.
func Apply(doc *ast.Document, target Capabilities, targetFormat string, opts Options) (*ast.Document, *Report, error) {
	if err := ast.Validate(doc); err != nil {
		return nil, nil, err
	}
	if err := doc.Consume(); err != nil {
		return nil, nil, err
	}
	if opts.TableDelimiter == "" {
		opts.TableDelimiter = DefaultTableDelimiter
	}

	report := NewReport("", targetFormat)
	var blocks []ast.Block

	if opts.Parallel && len(doc.Blocks) > 1 {
		type part struct {
			blocks []ast.Block
			d      *degrader
		}
		parts := workerpool.Map(doc.Blocks, opts.Workers, func(i int, b ast.Block) part {
			d := newDegrader(target, targetFormat, opts)
			return part{blocks: d.block(b, fmt.Sprintf("document.blocks[%d]", i)), d: d}
		})
		for _, p := range parts {
			if p.d.err != nil {
				return nil, nil, p.d.err
			}
			blocks = append(blocks, p.blocks...)
			report.Merge(p.d.report)
		}
	} else {
		d := newDegrader(target, targetFormat, opts)
		blocks = d.blocks(doc.Blocks, "document.blocks")
		if d.err != nil {
			return nil, nil, d.err
		}
		report.Merge(d.report)
	}

	return &ast.Document{Blocks: blocks}, report, nil
}

type degrader struct {
	caps   Capabilities
	format string
	opts   Options
	report *Report
	err    error

	// lineContext names the single-line block being degraded, if any.
	lineContext string
}

func newDegrader(caps Capabilities, format string, opts Options) *degrader {
	return &degrader{caps: caps, format: format, opts: opts, report: NewReport("", format)}
}

// degrade records a degradation. It returns false once strict mode has failed.
func (d *degrader) degrade(kind ast.Kind, path, reason string, class LossClass) bool {
	if d.err != nil {
		return false
	}
	if d.opts.Strict {
		d.err = tmerrors.NewUnsupported(d.format, string(kind), path, reason)
		return false
	}
	d.report.Add(Diagnostic{NodeKind: kind, Reason: reason, Path: path, Class: class})
	return true
}

func (d *degrader) rawReason(origin string) string {
	return fmt.Sprintf("raw %s markup not representable in %s", origin, d.format)
}

func (d *degrader) blocks(list []ast.Block, field string) []ast.Block {
	out := make([]ast.Block, 0, len(list))
	for i, b := range list {
		if d.err != nil {
			return out
		}
		out = append(out, d.block(b, fmt.Sprintf("%s[%d]", field, i))...)
	}
	return out
}

func (d *degrader) block(b ast.Block, path string) []ast.Block {
	switch b := b.(type) {
	case *ast.Paragraph:
		b.Children = d.inlines(b.Children, path)
		return []ast.Block{b}

	case *ast.Heading:
		if !d.caps.Has(Headings) {
			if !d.degrade(ast.KindHeading, path, "headings unsupported", LossL2) {
				return nil
			}
			children := d.inlines(b.Children, path)
			if d.caps.Has(Strong) && len(children) > 0 {
				return []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Strong{Children: children}}}}
			}
			return []ast.Block{&ast.Paragraph{Children: children}}
		}
		b.Children = d.singleLine("headings", b.Children, path)
		return []ast.Block{b}

	case *ast.List:
		return d.list(b, path)

	case *ast.CodeBlock:
		return d.codeBlock(b, path)

	case *ast.Quote:
		return d.quote(b, path)

	case *ast.ThematicBreak:
		if d.caps.Has(ThematicBreaks) {
			return []ast.Block{b}
		}
		if !d.degrade(ast.KindThematicBreak, path, "thematic breaks unsupported", LossL2) {
			return nil
		}
		return []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Text{Value: thematicBreakText}}}}

	case *ast.Table:
		return d.table(b, path)

	case *ast.Raw:
		if b.Format == d.format {
			return []ast.Block{b}
		}
		if !d.degrade(ast.KindRaw, path, d.rawReason(b.Format), LossL3) {
			return nil
		}
		return []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Text{Value: b.Text}}}}
	}
	return []ast.Block{b}
}

func (d *degrader) list(l *ast.List, path string) []ast.Block {
	if d.caps.Has(Lists) {
		for i, item := range l.Items {
			item.Children = d.blocks(item.Children, fmt.Sprintf("%s.items[%d].children", path, i))
		}
		return []ast.Block{l}
	}
	if !d.degrade(ast.KindList, path, "lists unsupported", LossL2) {
		return nil
	}

	start := l.Start
	if start == 0 {
		start = 1
	}
	var out []ast.Block
	for i, item := range l.Items {
		marker := "- "
		if l.Ordered {
			marker = strconv.Itoa(start+i) + ". "
		}
		children := d.blocks(item.Children, fmt.Sprintf("%s.items[%d].children", path, i))
		if len(children) > 0 {
			if p, ok := children[0].(*ast.Paragraph); ok {
				p.Children = ast.MergeText(append([]ast.Inline{&ast.Text{Value: marker}}, p.Children...))
				out = append(out, children...)
				continue
			}
		}
		marker = strings.TrimRight(marker, " ")
		out = append(out, &ast.Paragraph{Children: []ast.Inline{&ast.Text{Value: marker}}})
		out = append(out, children...)
	}
	return out
}

func (d *degrader) codeBlock(c *ast.CodeBlock, path string) []ast.Block {
	if d.caps.Has(CodeBlocks) {
		if c.Language != "" && !d.caps.Has(CodeLanguage) {
			if !d.degrade(ast.KindCodeBlock, path, "code language unsupported", LossL2) {
				return nil
			}
			c.Language = ""
		}
		return []ast.Block{c}
	}
	if !d.degrade(ast.KindCodeBlock, path, "code blocks unsupported", LossL2) {
		return nil
	}

	var children []ast.Inline
	for i, line := range strings.Split(c.Text, "\n") {
		if i > 0 {
			children = append(children, &ast.LineBreak{})
		}
		if line != "" {
			children = append(children, &ast.Text{Value: line})
		}
	}
	return []ast.Block{&ast.Paragraph{Children: d.inlines(children, path)}}
}

func (d *degrader) quote(q *ast.Quote, path string) []ast.Block {
	if d.caps.Has(Quotes) {
		if q.Attribution != "" && !d.caps.Has(QuoteAttribution) {
			if !d.degrade(ast.KindQuote, path, "quote attribution unsupported", LossL2) {
				return nil
			}
			q.Attribution = ""
		}
		q.Children = d.blocks(q.Children, path+".children")
		return []ast.Block{q}
	}
	if !d.degrade(ast.KindQuote, path, "quotes unsupported", LossL2) {
		return nil
	}
	out := d.blocks(q.Children, path+".children")
	if q.Attribution != "" {
		out = append(out, &ast.Paragraph{Children: []ast.Inline{&ast.Text{Value: "— " + q.Attribution}}})
	}
	return out
}

func (d *degrader) table(t *ast.Table, path string) []ast.Block {
	if !d.caps.Has(Tables) {
		if !d.degrade(ast.KindTable, path, "tables unsupported", LossL3) {
			return nil
		}
		out := make([]ast.Block, 0, len(t.Rows))
		for i, row := range t.Rows {
			var children []ast.Inline
			for j, cell := range row.Cells {
				if j > 0 {
					children = append(children, &ast.Text{Value: d.opts.TableDelimiter})
				}
				children = append(children, d.inlines(cell.Children, fmt.Sprintf("%s.rows[%d].cells[%d]", path, i, j))...)
			}
			out = append(out, &ast.Paragraph{Children: ast.MergeText(children)})
		}
		return out
	}

	if d.caps.Has(RectangularTables) {
		width := 0
		for _, row := range t.Rows {
			width = max(width, len(row.Cells))
		}
		ragged := false
		for _, row := range t.Rows {
			if len(row.Cells) != width {
				ragged = true
				break
			}
		}
		if ragged {
			if !d.degrade(ast.KindTable, path, "ragged table padded", LossL1) {
				return nil
			}
			for _, row := range t.Rows {
				for len(row.Cells) < width {
					row.Cells = append(row.Cells, &ast.TableCell{})
				}
			}
		}
	}
	if d.caps.Has(TableHeaderRequired) && len(t.Rows) > 0 && !t.Rows[0].Header {
		if !d.degrade(ast.KindTable, path, "table header synthesized", LossL1) {
			return nil
		}
		t.Rows[0].Header = true
	}

	for i, row := range t.Rows {
		for j, cell := range row.Cells {
			cell.Children = d.singleLine("table cells", cell.Children, fmt.Sprintf("%s.rows[%d].cells[%d]", path, i, j))
		}
	}
	return []ast.Block{t}
}

// singleLine degrades the content of a heading or table cell, which cannot
// hold line breaks when the target sets SingleLineBlocks.
func (d *degrader) singleLine(context string, list []ast.Inline, path string) []ast.Inline {
	if d.caps.Has(SingleLineBlocks) {
		d.lineContext = context
		defer func() { d.lineContext = "" }()
	}
	return d.inlines(list, path)
}

// inlines degrades the children of the inline container at path.
func (d *degrader) inlines(list []ast.Inline, path string) []ast.Inline {
	out := make([]ast.Inline, 0, len(list))
	for i, in := range list {
		if d.err != nil {
			return out
		}
		out = append(out, d.inline(in, fmt.Sprintf("%s.children[%d]", path, i))...)
	}
	return ast.MergeText(out)
}

func (d *degrader) inline(in ast.Inline, path string) []ast.Inline {
	switch in := in.(type) {
	case *ast.Styled:
		if in.Color != nil && !d.caps.Has(Color) {
			if !d.degrade(ast.KindStyled, path, "color unsupported", LossL2) {
				return nil
			}
			in.Color = nil
		}
		if in.Size != nil && !d.caps.Has(Size) {
			if !d.degrade(ast.KindStyled, path, "size unsupported", LossL2) {
				return nil
			}
			in.Size = nil
		}
		in.Children = d.inlines(in.Children, path)
		if in.Color == nil && in.Size == nil {
			return in.Children
		}
		return []ast.Inline{in}

	case *ast.Underline:
		return d.wrapper(in, Underline, "underline unsupported", path)
	case *ast.Strikethrough:
		return d.wrapper(in, Strikethrough, "strikethrough unsupported", path)
	case *ast.Emphasis:
		return d.wrapper(in, Emphasis, "emphasis unsupported", path)
	case *ast.Strong:
		return d.wrapper(in, Strong, "strong unsupported", path)

	case *ast.Code:
		if d.caps.Has(InlineCode) {
			return []ast.Inline{in}
		}
		if !d.degrade(ast.KindCode, path, "inline code unsupported", LossL2) {
			return nil
		}
		return []ast.Inline{&ast.Text{Value: in.Value}}

	case *ast.Link:
		if d.caps.Has(Links) {
			in.Children = d.inlines(in.Children, path)
			return []ast.Inline{in}
		}
		if !d.degrade(ast.KindLink, path, "links unsupported", LossL3) {
			return nil
		}
		children := d.inlines(in.Children, path)
		switch text := ast.PlainText(children); {
		case text == "":
			return []ast.Inline{&ast.Text{Value: in.Target}}
		case text == in.Target || in.Target == "":
			return children
		default:
			return append(children, &ast.Text{Value: " (" + in.Target + ")"})
		}

	case *ast.Image:
		if d.caps.Has(Images) {
			return []ast.Inline{in}
		}
		if !d.degrade(ast.KindImage, path, "images unsupported", LossL3) {
			return nil
		}
		if in.Alt != "" {
			return []ast.Inline{&ast.Text{Value: in.Alt}}
		}
		return []ast.Inline{&ast.Text{Value: in.Target}}

	case *ast.LineBreak:
		reason := "line breaks unsupported"
		switch {
		case d.lineContext != "":
			reason += " in " + d.lineContext
		case d.caps.Has(LineBreaks):
			return []ast.Inline{in}
		}
		if !d.degrade(ast.KindLineBreak, path, reason, LossL2) {
			return nil
		}
		return []ast.Inline{&ast.Text{Value: " "}}

	case *ast.RawInline:
		if in.Format == d.format {
			return []ast.Inline{in}
		}
		if !d.degrade(ast.KindRawInline, path, d.rawReason(in.Format), LossL3) {
			return nil
		}
		return []ast.Inline{&ast.Text{Value: in.Text}}
	}
	return []ast.Inline{in}
}

// wrapper unwraps an inline container the target cannot represent.
func (d *degrader) wrapper(in ast.InlineContainer, flag Capabilities, reason, path string) []ast.Inline {
	if d.caps.Has(flag) {
		in.SetInlines(d.inlines(in.Inlines(), path))
		return []ast.Inline{in.(ast.Inline)}
	}
	if !d.degrade(in.Kind(), path, reason, LossL2) {
		return nil
	}
	return d.inlines(in.Inlines(), path)
}
