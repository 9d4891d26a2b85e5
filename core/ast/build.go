package ast

import (
	"fmt"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
)

// structural creates a StructuralViolationError for a node.
func structural(path string, kind Kind, message string) error {
	return tmerrors.NewStructural(path, string(kind), message)
}

// kindOf returns the kind of n, tolerating nil.
func kindOf(n Node) Kind {
	if n == nil {
		return "nil"
	}
	return n.Kind()
}

// claim checks that every child is unowned and appears once, then marks them
// owned. Nothing is marked when any child is rejected.
func claim(parent Kind, field string, children []Node) error {
	seen := make(map[*ownership]int, len(children))
	for i, c := range children {
		if c == nil {
			return structural(fmt.Sprintf("%s[%d]", field, i), "nil",
				fmt.Sprintf("nil child of %s", parent))
		}
		if c.owner().owned {
			return structural(fmt.Sprintf("%s[%d]", field, i), c.Kind(),
				fmt.Sprintf("%s already has an owner", c.Kind()))
		}
		if j, dup := seen[c.owner()]; dup {
			return structural(fmt.Sprintf("%s[%d]", field, i), c.Kind(),
				fmt.Sprintf("%s is also %s[%d]", c.Kind(), field, j))
		}
		seen[c.owner()] = i
	}
	for _, c := range children {
		c.owner().owned = true
	}
	return nil
}

// asBlocks converts nodes to blocks, rejecting inline or structural nodes.
func asBlocks(parent Kind, field string, children []Node) ([]Block, error) {
	blocks := make([]Block, 0, len(children))
	for i, c := range children {
		b, ok := c.(Block)
		if !ok {
			k := kindOf(c)
			msg := fmt.Sprintf("%s cannot be a child of %s", k, parent)
			if k.IsInline() {
				msg = fmt.Sprintf("%s is an inline node and cannot be a child of %s", k, parent)
			}
			return nil, structural(fmt.Sprintf("%s[%d]", field, i), k, msg)
		}
		blocks = append(blocks, b)
	}
	if err := claim(parent, field, children); err != nil {
		return nil, err
	}
	return blocks, nil
}

// asInlines converts nodes to inlines, rejecting block or structural nodes.
func asInlines(parent Kind, children []Node) ([]Inline, error) {
	inlines := make([]Inline, 0, len(children))
	for i, c := range children {
		in, ok := c.(Inline)
		if !ok {
			k := kindOf(c)
			msg := fmt.Sprintf("%s cannot be a child of %s", k, parent)
			if k.IsBlock() {
				msg = fmt.Sprintf("%s is a block node and cannot be nested under inline content of %s", k, parent)
			}
			return nil, structural(fmt.Sprintf("children[%d]", i), k, msg)
		}
		inlines = append(inlines, in)
	}
	if err := claim(parent, "children", children); err != nil {
		return nil, err
	}
	return inlines, nil
}

// NewDocument creates a Document owning the given blocks.
func NewDocument(children ...Node) (*Document, error) {
	blocks, err := asBlocks(KindDocument, "document.blocks", children)
	if err != nil {
		return nil, err
	}
	return &Document{Blocks: blocks}, nil
}

// NewParagraph creates a Paragraph owning the given inlines.
func NewParagraph(children ...Node) (*Paragraph, error) {
	inlines, err := asInlines(KindParagraph, children)
	if err != nil {
		return nil, err
	}
	return &Paragraph{Children: inlines}, nil
}

// NewHeading creates a Heading of the given level (1-6).
func NewHeading(level int, children ...Node) (*Heading, error) {
	if level < 1 || level > 6 {
		return nil, structural("", KindHeading, fmt.Sprintf("heading level %d outside 1..6", level))
	}
	inlines, err := asInlines(KindHeading, children)
	if err != nil {
		return nil, err
	}
	return &Heading{Level: level, Children: inlines}, nil
}

// NewList creates a List owning the given items, which must all be ListItems.
func NewList(ordered bool, items ...Node) (*List, error) {
	out := make([]*ListItem, 0, len(items))
	for i, n := range items {
		li, ok := n.(*ListItem)
		if !ok {
			return nil, structural(fmt.Sprintf("items[%d]", i), kindOf(n),
				fmt.Sprintf("%s cannot be a child of List", kindOf(n)))
		}
		out = append(out, li)
	}
	if err := claim(KindList, "items", items); err != nil {
		return nil, err
	}
	return &List{Ordered: ordered, Items: out}, nil
}

// NewListItem creates a ListItem owning the given blocks.
func NewListItem(children ...Node) (*ListItem, error) {
	blocks, err := asBlocks(KindListItem, "children", children)
	if err != nil {
		return nil, err
	}
	return &ListItem{Children: blocks}, nil
}

// NewCodeBlock creates a CodeBlock.
func NewCodeBlock(language, text string) *CodeBlock {
	return &CodeBlock{Language: language, Text: text}
}

// NewQuote creates a Quote owning the given blocks.
func NewQuote(attribution string, children ...Node) (*Quote, error) {
	blocks, err := asBlocks(KindQuote, "children", children)
	if err != nil {
		return nil, err
	}
	return &Quote{Attribution: attribution, Children: blocks}, nil
}

// NewThematicBreak creates a ThematicBreak.
func NewThematicBreak() *ThematicBreak {
	return &ThematicBreak{}
}

// NewTable creates a Table owning the given rows, which must all be TableRows.
func NewTable(rows ...Node) (*Table, error) {
	out := make([]*TableRow, 0, len(rows))
	for i, n := range rows {
		r, ok := n.(*TableRow)
		if !ok {
			return nil, structural(fmt.Sprintf("rows[%d]", i), kindOf(n),
				fmt.Sprintf("%s cannot be a child of Table", kindOf(n)))
		}
		out = append(out, r)
	}
	if err := claim(KindTable, "rows", rows); err != nil {
		return nil, err
	}
	return &Table{Rows: out}, nil
}

// NewTableRow creates a TableRow owning the given cells, which must all be TableCells.
func NewTableRow(header bool, cells ...Node) (*TableRow, error) {
	out := make([]*TableCell, 0, len(cells))
	for i, n := range cells {
		c, ok := n.(*TableCell)
		if !ok {
			return nil, structural(fmt.Sprintf("cells[%d]", i), kindOf(n),
				fmt.Sprintf("%s cannot be a child of TableRow", kindOf(n)))
		}
		out = append(out, c)
	}
	if err := claim(KindTableRow, "cells", cells); err != nil {
		return nil, err
	}
	return &TableRow{Header: header, Cells: out}, nil
}

// NewTableCell creates a TableCell owning the given inlines.
func NewTableCell(children ...Node) (*TableCell, error) {
	inlines, err := asInlines(KindTableCell, children)
	if err != nil {
		return nil, err
	}
	return &TableCell{Children: inlines}, nil
}

// NewRaw creates a block-level Raw node.
func NewRaw(format, text string) *Raw {
	return &Raw{Format: format, Text: text}
}

// NewText creates a Text node.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// NewEmphasis creates an Emphasis node owning the given inlines.
func NewEmphasis(children ...Node) (*Emphasis, error) {
	inlines, err := asInlines(KindEmphasis, children)
	if err != nil {
		return nil, err
	}
	return &Emphasis{Children: inlines}, nil
}

// NewStrong creates a Strong node owning the given inlines.
func NewStrong(children ...Node) (*Strong, error) {
	inlines, err := asInlines(KindStrong, children)
	if err != nil {
		return nil, err
	}
	return &Strong{Children: inlines}, nil
}

// NewStrikethrough creates a Strikethrough node owning the given inlines.
func NewStrikethrough(children ...Node) (*Strikethrough, error) {
	inlines, err := asInlines(KindStrikethrough, children)
	if err != nil {
		return nil, err
	}
	return &Strikethrough{Children: inlines}, nil
}

// NewUnderline creates an Underline node owning the given inlines.
func NewUnderline(children ...Node) (*Underline, error) {
	inlines, err := asInlines(KindUnderline, children)
	if err != nil {
		return nil, err
	}
	return &Underline{Children: inlines}, nil
}

// NewCode creates an inline Code node.
func NewCode(value string) *Code {
	return &Code{Value: value}
}

// NewLink creates a Link to target owning the given inlines.
func NewLink(target string, children ...Node) (*Link, error) {
	inlines, err := asInlines(KindLink, children)
	if err != nil {
		return nil, err
	}
	return &Link{Target: target, Children: inlines}, nil
}

// NewImage creates an Image node.
func NewImage(target, alt string) *Image {
	return &Image{Target: target, Alt: alt}
}

// NewLineBreak creates a LineBreak node.
func NewLineBreak() *LineBreak {
	return &LineBreak{}
}

// NewStyled creates a Styled node. Either attribute may be nil.
func NewStyled(color *Color, size *Size, children ...Node) (*Styled, error) {
	inlines, err := asInlines(KindStyled, children)
	if err != nil {
		return nil, err
	}
	return &Styled{Color: color, Size: size, Children: inlines}, nil
}

// NewRawInline creates an inline Raw node.
func NewRawInline(format, text string) *RawInline {
	return &RawInline{Format: format, Text: text}
}
