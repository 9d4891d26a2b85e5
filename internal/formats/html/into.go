package html

import (
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
)

// ConvertInto converts an HTML fragment into the common AST.
func ConvertInto(f *Fragment) (*ast.Document, error) {
	if f == nil || f.consumed {
		return nil, format.IntoError(Name, "", tmerrors.NewStructural("", "Document", "fragment is nil or already consumed"))
	}
	f.consumed = true
	return &ast.Document{Blocks: blocks(f.Nodes)}, nil
}

func siblings(first *xhtml.Node) []*xhtml.Node {
	var out []*xhtml.Node
	for c := first; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// blocks converts nodes at block level. Runs of inline content are wrapped
// in paragraphs.
func blocks(nodes []*xhtml.Node) []ast.Block {
	var out []ast.Block
	var run []ast.Inline
	flush := func() {
		run = trimInlines(ast.MergeText(run))
		if len(run) > 0 {
			out = append(out, &ast.Paragraph{Children: run})
		}
		run = nil
	}

	for _, n := range nodes {
		switch {
		case n.Type == xhtml.ElementNode && blockElements[n.DataAtom]:
			flush()
			out = append(out, block(n)...)
		case n.Type == xhtml.ElementNode || n.Type == xhtml.TextNode || n.Type == xhtml.RawNode:
			run = append(run, inline(n)...)
		}
	}
	flush()
	return out
}

func block(n *xhtml.Node) []ast.Block {
	children := siblings(n.FirstChild)

	if level, ok := headingLevels[n.DataAtom]; ok {
		return []ast.Block{&ast.Heading{Level: level, Children: trimInlines(inlines(children))}}
	}

	switch n.DataAtom {
	case atom.P:
		content := trimInlines(inlines(children))
		if len(content) == 0 {
			return nil
		}
		return []ast.Block{&ast.Paragraph{Children: content}}

	case atom.Ul, atom.Ol:
		l := &ast.List{Ordered: n.DataAtom == atom.Ol}
		if start, err := strconv.Atoi(attr(n, "start")); err == nil && l.Ordered && start > 1 {
			l.Start = start
		}
		for _, c := range children {
			if c.Type == xhtml.ElementNode && c.DataAtom == atom.Li {
				l.Items = append(l.Items, &ast.ListItem{Children: blocks(siblings(c.FirstChild))})
			}
		}
		return []ast.Block{l}

	case atom.Li:
		return blocks(children)

	case atom.Pre:
		return []ast.Block{codeBlock(n)}

	case atom.Blockquote:
		return []ast.Block{&ast.Quote{Children: blocks(children)}}

	case atom.Hr:
		return []ast.Block{&ast.ThematicBreak{}}

	case atom.Table:
		t := &ast.Table{}
		collectRows(t, n)
		return []ast.Block{t}
	}
	return []ast.Block{&ast.Raw{Format: Name, Text: outerHTML(n)}}
}

func codeBlock(pre *xhtml.Node) *ast.CodeBlock {
	cb := &ast.CodeBlock{}
	content := pre
	if c := pre.FirstChild; c != nil && c.NextSibling == nil && c.Type == xhtml.ElementNode && c.DataAtom == atom.Code {
		content = c
		for _, class := range strings.Fields(attr(c, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				cb.Language = lang
				break
			}
		}
	}
	cb.Text = strings.TrimSuffix(textContent(content), "\n")
	return cb
}

// collectRows gathers the rows of a table, descending into row groups.
func collectRows(t *ast.Table, n *xhtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xhtml.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead, atom.Tbody, atom.Tfoot:
			collectRows(t, c)
		case atom.Tr:
			row := &ast.TableRow{}
			headers := 0
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != xhtml.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
					continue
				}
				if cell.DataAtom == atom.Th {
					headers++
				}
				row.Cells = append(row.Cells, &ast.TableCell{Children: trimInlines(inlines(siblings(cell.FirstChild)))})
			}
			row.Header = headers > 0 && headers == len(row.Cells)
			t.Rows = append(t.Rows, row)
		}
	}
}

func inlines(nodes []*xhtml.Node) []ast.Inline {
	var out []ast.Inline
	for _, n := range nodes {
		out = append(out, inline(n)...)
	}
	return ast.MergeText(out)
}

func inline(n *xhtml.Node) []ast.Inline {
	switch n.Type {
	case xhtml.TextNode:
		return []ast.Inline{&ast.Text{Value: collapseSpace(n.Data)}}
	case xhtml.RawNode:
		return []ast.Inline{&ast.RawInline{Format: Name, Text: n.Data}}
	case xhtml.ElementNode:
	default:
		return nil
	}

	children := siblings(n.FirstChild)
	switch n.DataAtom {
	case atom.Em, atom.I:
		return []ast.Inline{&ast.Emphasis{Children: inlines(children)}}
	case atom.Strong, atom.B:
		return []ast.Inline{&ast.Strong{Children: inlines(children)}}
	case atom.S, atom.Del, atom.Strike:
		return []ast.Inline{&ast.Strikethrough{Children: inlines(children)}}
	case atom.U, atom.Ins:
		return []ast.Inline{&ast.Underline{Children: inlines(children)}}
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		return []ast.Inline{&ast.Code{Value: textContent(n)}}
	case atom.Br:
		return []ast.Inline{&ast.LineBreak{}}
	case atom.Img:
		return []ast.Inline{&ast.Image{Target: attr(n, "src"), Alt: attr(n, "alt")}}

	case atom.A:
		if !hasAttr(n, "href") {
			return inlines(children)
		}
		return []ast.Inline{&ast.Link{Target: attr(n, "href"), Children: inlines(children)}}

	case atom.Span:
		if len(n.Attr) == 0 {
			return inlines(children)
		}
		decls := parseStyle(attr(n, "style"))
		if styled, ok := styledNode(decls["color"], decls["font-size"], children); ok {
			return []ast.Inline{styled}
		}

	case atom.Font:
		if styled, ok := styledNode(attr(n, "color"), attr(n, "size"), children); ok {
			return []ast.Inline{styled}
		}
	}

	return []ast.Inline{&ast.RawInline{Format: Name, Text: outerHTML(n)}}
}

// styledNode builds a Styled node. It returns false when neither value is
// present or either one is invalid.
func styledNode(colorValue, sizeValue string, children []*xhtml.Node) (*ast.Styled, bool) {
	if colorValue == "" && sizeValue == "" {
		return nil, false
	}
	s := &ast.Styled{}
	if colorValue != "" {
		c, err := ast.ParseColor(colorValue)
		if err != nil {
			return nil, false
		}
		s.Color = &c
	}
	if sizeValue != "" {
		size, err := ast.ParseSize(sizeValue)
		if err != nil {
			return nil, false
		}
		s.Size = &size
	}
	s.Children = inlines(children)
	return s, true
}

// collapseSpace replaces runs of HTML whitespace with a single space.
func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

// trimInlines trims whitespace at both ends of a run of inline content and
// drops line breaks at its edges.
func trimInlines(in []ast.Inline) []ast.Inline {
	for len(in) > 0 {
		if _, ok := in[0].(*ast.LineBreak); ok {
			in = in[1:]
			continue
		}
		t, ok := in[0].(*ast.Text)
		if !ok {
			break
		}
		t.Value = strings.TrimLeft(t.Value, " ")
		if t.Value != "" {
			break
		}
		in = in[1:]
	}
	for len(in) > 0 {
		last := in[len(in)-1]
		if _, ok := last.(*ast.LineBreak); ok {
			in = in[:len(in)-1]
			continue
		}
		t, ok := last.(*ast.Text)
		if !ok {
			break
		}
		t.Value = strings.TrimRight(t.Value, " ")
		if t.Value != "" {
			break
		}
		in = in[:len(in)-1]
	}
	return in
}
