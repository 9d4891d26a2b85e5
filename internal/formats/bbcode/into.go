package bbcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)

// ConvertInto converts a BBCode document into the common AST. Text runs are
// split into paragraphs at blank lines; single newlines become line breaks.
func ConvertInto(d *Document) (*ast.Document, error) {
	if d == nil || d.consumed {
		return nil, format.IntoError(Name, "", tmerrors.NewStructural("", "Document", "document is nil or already consumed"))
	}
	d.consumed = true

	c := &intoConverter{}
	blocks := c.blocks(d.Nodes)
	if c.err != nil {
		return nil, format.IntoError(Name, "", c.err)
	}
	return &ast.Document{Blocks: blocks}, nil
}

type intoConverter struct {
	err error
}

// blocks converts a sequence of nodes at block level.
func (c *intoConverter) blocks(nodes []*Node) []ast.Block {
	var out []ast.Block
	var run []ast.Inline

	flush := func() {
		run = trimBreaks(ast.MergeText(run))
		if len(run) > 0 {
			out = append(out, &ast.Paragraph{Children: run})
		}
		run = nil
	}

	for _, n := range nodes {
		switch {
		case n.IsText():
			parts := paragraphBreak.Split(n.Text, -1)
			for i, part := range parts {
				if i > 0 {
					flush()
				}
				run = append(run, textInlines(part)...)
			}
		case blockTags[n.Tag]:
			flush()
			out = append(out, c.block(n)...)
		default:
			run = append(run, c.inline(n)...)
		}
	}
	flush()
	return out
}

// trimBreaks drops line breaks and surrounding whitespace at either end of
// a paragraph.
func trimBreaks(in []ast.Inline) []ast.Inline {
	for len(in) > 0 {
		if _, ok := in[0].(*ast.LineBreak); ok {
			in = in[1:]
			continue
		}
		if t, ok := in[0].(*ast.Text); ok && strings.TrimSpace(t.Value) == "" {
			in = in[1:]
			continue
		}
		break
	}
	for len(in) > 0 {
		last := in[len(in)-1]
		if _, ok := last.(*ast.LineBreak); ok {
			in = in[:len(in)-1]
			continue
		}
		if t, ok := last.(*ast.Text); ok && strings.TrimSpace(t.Value) == "" {
			in = in[:len(in)-1]
			continue
		}
		break
	}
	return in
}

// textInlines splits text at newlines into Text and LineBreak nodes.
func textInlines(s string) []ast.Inline {
	var out []ast.Inline
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out = append(out, &ast.LineBreak{})
		}
		if line != "" {
			out = append(out, &ast.Text{Value: line})
		}
	}
	return out
}

func (c *intoConverter) block(n *Node) []ast.Block {
	switch n.Tag {
	case "quote":
		attribution := n.Param
		if attribution == "" {
			attribution = n.Attr("name")
		}
		return []ast.Block{&ast.Quote{Attribution: attribution, Children: c.blocks(n.Children)}}

	case "list", "ul", "ol":
		return []ast.Block{c.list(n)}

	case "code", "pre":
		text := strings.TrimPrefix(n.TextContent(), "\n")
		text = strings.TrimSuffix(text, "\n")
		lang := ""
		if n.Tag == "code" {
			lang = n.Param
		}
		return []ast.Block{&ast.CodeBlock{Language: lang, Text: text}}

	case "table":
		return []ast.Block{c.table(n)}

	case "hr":
		return []ast.Block{&ast.ThematicBreak{}}
	}
	return []ast.Block{&ast.Raw{Format: Name, Text: n.Source}}
}

func (c *intoConverter) list(n *Node) *ast.List {
	l := &ast.List{Ordered: n.Tag == "ol"}
	if n.Tag == "list" && n.Param != "" {
		l.Ordered = true
		if start, err := strconv.Atoi(n.Param); err == nil && start > 1 {
			l.Start = start
		}
	}

	var loose []*Node
	flushLoose := func() {
		if strings.TrimSpace(textOf(loose)) != "" || hasElements(loose) {
			l.Items = append(l.Items, &ast.ListItem{Children: c.blocks(loose)})
		}
		loose = nil
	}
	for _, child := range n.Children {
		if child.Tag == "*" || child.Tag == "li" {
			flushLoose()
			l.Items = append(l.Items, &ast.ListItem{Children: c.blocks(child.Children)})
			continue
		}
		loose = append(loose, child)
	}
	flushLoose()
	return l
}

func textOf(nodes []*Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.TextContent())
	}
	return sb.String()
}

func hasElements(nodes []*Node) bool {
	for _, n := range nodes {
		if !n.IsText() {
			return true
		}
	}
	return false
}

func (c *intoConverter) table(n *Node) *ast.Table {
	t := &ast.Table{}
	for _, rowNode := range n.Children {
		if rowNode.Tag != "tr" {
			continue
		}
		row := &ast.TableRow{}
		headers := 0
		for _, cellNode := range rowNode.Children {
			if cellNode.Tag != "th" && cellNode.Tag != "td" {
				continue
			}
			if cellNode.Tag == "th" {
				headers++
			}
			children := trimBreaks(ast.MergeText(c.inlines(cellNode.Children)))
			row.Cells = append(row.Cells, &ast.TableCell{Children: children})
		}
		row.Header = headers > 0 && headers == len(row.Cells)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// inlines converts nodes inside an inline context.
func (c *intoConverter) inlines(nodes []*Node) []ast.Inline {
	var out []ast.Inline
	for _, n := range nodes {
		out = append(out, c.inline(n)...)
	}
	return ast.MergeText(out)
}

func (c *intoConverter) inline(n *Node) []ast.Inline {
	if n.IsText() {
		return textInlines(n.Text)
	}

	switch n.Tag {
	case "b":
		return []ast.Inline{&ast.Strong{Children: c.inlines(n.Children)}}
	case "i":
		return []ast.Inline{&ast.Emphasis{Children: c.inlines(n.Children)}}
	case "u":
		return []ast.Inline{&ast.Underline{Children: c.inlines(n.Children)}}
	case "s":
		return []ast.Inline{&ast.Strikethrough{Children: c.inlines(n.Children)}}
	case "icode":
		return []ast.Inline{&ast.Code{Value: n.TextContent()}}

	case "color", "size", "style":
		styled, ok := c.styled(n)
		if !ok {
			return []ast.Inline{&ast.RawInline{Format: Name, Text: n.Source}}
		}
		return []ast.Inline{styled}

	case "url":
		target := n.Param
		if target == "" {
			target = n.TextContent()
		}
		children := c.inlines(n.Children)
		if len(children) == 0 {
			children = []ast.Inline{&ast.Text{Value: target}}
		}
		return []ast.Inline{&ast.Link{Target: target, Children: children}}

	case "img":
		return []ast.Inline{&ast.Image{Target: strings.TrimSpace(n.TextContent()), Alt: n.Attr("alt")}}

	case "*", "li", "tr", "th", "td":
		// Structural tags out of place keep their content.
		return c.inlines(n.Children)
	}

	if n.Source == "" {
		c.setErr(n, "element without source")
	}
	return []ast.Inline{&ast.RawInline{Format: Name, Text: n.Source}}
}

func (c *intoConverter) setErr(n *Node, msg string) {
	if c.err == nil {
		c.err = tmerrors.NewStructural(fmt.Sprintf("byte %d", n.Offset), n.Tag, msg)
	}
}

// styled converts color, size and style tags. It returns false when an
// attribute value cannot be parsed.
func (c *intoConverter) styled(n *Node) (*ast.Styled, bool) {
	s := &ast.Styled{}
	colorValue, sizeValue := "", ""
	switch n.Tag {
	case "color":
		colorValue = n.Param
	case "size":
		sizeValue = n.Param
	case "style":
		colorValue, sizeValue = n.Attr("color"), n.Attr("size")
	}

	if colorValue != "" {
		col, err := ast.ParseColor(colorValue)
		if err != nil {
			return nil, false
		}
		s.Color = &col
	}
	if sizeValue != "" {
		size, err := ast.ParseSize(sizeValue)
		if err != nil {
			return nil, false
		}
		s.Size = &size
	}
	if s.Color == nil && s.Size == nil {
		return nil, false
	}
	s.Children = c.inlines(n.Children)
	return s, true
}
