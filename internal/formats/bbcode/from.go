package bbcode

import (
	"fmt"
	"strconv"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
)

// Capabilities lists what BBCode represents exactly.
const Capabilities = loss.All &^ loss.Headings

// blockSeparator separates consecutive blocks.
const blockSeparator = "\n\n"

// ConvertFrom converts a common AST into BBCode, degrading headings.
func ConvertFrom(doc *ast.Document, opts format.Options) (*Document, *loss.Report, error) {
	degraded, report, err := format.Degrade(doc, Name, Capabilities, opts)
	if err != nil {
		return nil, nil, err
	}

	c := &fromConverter{}
	nodes := c.blocks(degraded.Blocks, "document.blocks")
	if c.err != nil {
		return nil, nil, format.FromError(Name, c.err)
	}
	return &Document{Nodes: nodes}, report, nil
}

type fromConverter struct {
	err error
}

func (c *fromConverter) fail(path string, n ast.Node) {
	if c.err == nil {
		c.err = tmerrors.NewStructural(path, string(n.Kind()), fmt.Sprintf("%s survived degradation", n.Kind()))
	}
}

func (c *fromConverter) blocks(blocks []ast.Block, field string) []*Node {
	var out []*Node
	for i, b := range blocks {
		if i > 0 {
			out = append(out, Text(blockSeparator))
		}
		out = append(out, c.block(b, fmt.Sprintf("%s[%d]", field, i))...)
	}
	return out
}

func (c *fromConverter) block(b ast.Block, path string) []*Node {
	switch b := b.(type) {
	case *ast.Paragraph:
		return c.inlines(b.Children)

	case *ast.List:
		tag := Element("list", "")
		if b.Ordered {
			start := b.Start
			if start == 0 {
				start = 1
			}
			tag.Param = strconv.Itoa(start)
		}
		for i, item := range b.Items {
			tag.Children = append(tag.Children, Text("\n"))
			li := Element("*", "")
			li.Children = c.blocks(item.Children, fmt.Sprintf("%s.items[%d].children", path, i))
			tag.Children = append(tag.Children, li)
		}
		tag.Children = append(tag.Children, Text("\n"))
		return []*Node{tag}

	case *ast.CodeBlock:
		return []*Node{Element("code", b.Language, &Node{Text: b.Text, Verbatim: true})}

	case *ast.Quote:
		q := Element("quote", b.Attribution)
		q.Children = c.blocks(b.Children, path+".children")
		return []*Node{q}

	case *ast.ThematicBreak:
		return []*Node{Element("hr", "")}

	case *ast.Table:
		table := Element("table", "")
		for _, row := range b.Rows {
			tr := Element("tr", "")
			cellTag := "td"
			if row.Header {
				cellTag = "th"
			}
			for _, cell := range row.Cells {
				tr.Children = append(tr.Children, Element(cellTag, "", c.inlines(cell.Children)...))
			}
			table.Children = append(table.Children, tr)
		}
		return []*Node{table}

	case *ast.Raw:
		return []*Node{{Text: b.Text, Verbatim: true}}
	}

	c.fail(path, b)
	return nil
}

func (c *fromConverter) inlines(inlines []ast.Inline) []*Node {
	var out []*Node
	for _, in := range inlines {
		out = append(out, c.inline(in)...)
	}
	return mergeText(out)
}

func (c *fromConverter) inline(in ast.Inline) []*Node {
	switch in := in.(type) {
	case *ast.Text:
		return []*Node{Text(in.Value)}
	case *ast.LineBreak:
		return []*Node{Text("\n")}
	case *ast.Strong:
		return []*Node{Element("b", "", c.inlines(in.Children)...)}
	case *ast.Emphasis:
		return []*Node{Element("i", "", c.inlines(in.Children)...)}
	case *ast.Underline:
		return []*Node{Element("u", "", c.inlines(in.Children)...)}
	case *ast.Strikethrough:
		return []*Node{Element("s", "", c.inlines(in.Children)...)}
	case *ast.Code:
		return []*Node{Element("icode", "", &Node{Text: in.Value, Verbatim: true})}

	case *ast.Link:
		children := c.inlines(in.Children)
		if len(children) == 1 && children[0].IsText() && children[0].Text == in.Target {
			return []*Node{Element("url", "", children...)}
		}
		return []*Node{Element("url", in.Target, children...)}

	case *ast.Image:
		img := Element("img", "", Text(in.Target))
		if in.Alt != "" {
			img.Attrs = map[string]string{"alt": in.Alt}
		}
		return []*Node{img}

	case *ast.Styled:
		children := c.inlines(in.Children)
		switch {
		case in.Color != nil && in.Size != nil:
			n := Element("style", "", children...)
			n.Attrs = map[string]string{"color": in.Color.String(), "size": in.Size.String()}
			return []*Node{n}
		case in.Color != nil:
			return []*Node{Element("color", in.Color.String(), children...)}
		case in.Size != nil:
			return []*Node{Element("size", in.Size.String(), children...)}
		}
		return children

	case *ast.RawInline:
		return []*Node{{Text: in.Text, Verbatim: true}}
	}
	return nil
}

// mergeText joins adjacent escaped text nodes.
func mergeText(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if k := len(out); k > 0 && n.IsText() && !n.Verbatim && out[k-1].IsText() && !out[k-1].Verbatim {
			out[k-1] = Text(out[k-1].Text + n.Text)
			continue
		}
		out = append(out, n)
	}
	return out
}
