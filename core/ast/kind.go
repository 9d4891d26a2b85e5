package ast

// Kind names a node kind of the common AST.
type Kind string

// Node kind constants.
const (
	KindDocument Kind = "Document"

	// Blocks
	KindParagraph     Kind = "Paragraph"
	KindHeading       Kind = "Heading"
	KindList          Kind = "List"
	KindListItem      Kind = "ListItem"
	KindCodeBlock     Kind = "CodeBlock"
	KindQuote         Kind = "Quote"
	KindThematicBreak Kind = "ThematicBreak"
	KindTable         Kind = "Table"
	KindTableRow      Kind = "TableRow"
	KindTableCell     Kind = "TableCell"
	KindRaw           Kind = "Raw"

	// Inlines
	KindText          Kind = "Text"
	KindEmphasis      Kind = "Emphasis"
	KindStrong        Kind = "Strong"
	KindStrikethrough Kind = "Strikethrough"
	KindUnderline     Kind = "Underline"
	KindCode          Kind = "Code"
	KindLink          Kind = "Link"
	KindImage         Kind = "Image"
	KindLineBreak     Kind = "LineBreak"
	KindStyled        Kind = "Styled"
	KindRawInline     Kind = "RawInline"
)

// blockKinds is the set of kinds that implement Block.
var blockKinds = map[Kind]bool{
	KindParagraph:     true,
	KindHeading:       true,
	KindList:          true,
	KindCodeBlock:     true,
	KindQuote:         true,
	KindThematicBreak: true,
	KindTable:         true,
	KindRaw:           true,
}

// inlineKinds is the set of kinds that implement Inline.
var inlineKinds = map[Kind]bool{
	KindText:          true,
	KindEmphasis:      true,
	KindStrong:        true,
	KindStrikethrough: true,
	KindUnderline:     true,
	KindCode:          true,
	KindLink:          true,
	KindImage:         true,
	KindLineBreak:     true,
	KindStyled:        true,
	KindRawInline:     true,
}

// IsBlock returns true if nodes of this kind are blocks.
func (k Kind) IsBlock() bool {
	return blockKinds[k]
}

// IsInline returns true if nodes of this kind are inlines.
func (k Kind) IsInline() bool {
	return inlineKinds[k]
}

// IsValid returns true if the kind is part of the common AST.
func (k Kind) IsValid() bool {
	switch k {
	case KindDocument, KindListItem, KindTableRow, KindTableCell:
		return true
	}
	return blockKinds[k] || inlineKinds[k]
}
