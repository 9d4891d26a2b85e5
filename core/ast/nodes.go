package ast

// Node is implemented by every node of the common AST.
type Node interface {
	// Kind returns the node kind.
	Kind() Kind

	owner() *ownership
}

// Block is a block-level node. Only Document, Quote and ListItem own blocks.
type Block interface {
	Node
	blockNode()
}

// Inline is an inline node. Inline nodes never own blocks.
type Inline interface {
	Node
	inlineNode()
}

// ownership records whether a node has been attached to a parent by a
// constructor.
type ownership struct {
	owned bool
}

func (o *ownership) owner() *ownership { return o }

// Document is the root of a common AST; exactly one exists per conversion unit.
type Document struct {
	ownership

	// Blocks contains the top-level blocks in document order.
	Blocks []Block

	consumed bool
}

// Kind implements Node.
func (*Document) Kind() Kind { return KindDocument }

// Paragraph is a run of inline content.
type Paragraph struct {
	ownership

	// Children contains the inline content.
	Children []Inline
}

// Heading is a section heading.
type Heading struct {
	ownership

	// Level is the heading depth, 1 through 6.
	Level int

	// Children contains the heading text.
	Children []Inline
}

// List is an ordered or unordered list.
type List struct {
	ownership

	// Ordered is true for numbered lists.
	Ordered bool

	// Start is the number of the first item of an ordered list (0 means 1).
	Start int

	// Items contains the list items in order.
	Items []*ListItem
}

// ListItem is a single entry of a List. It owns blocks.
type ListItem struct {
	ownership

	// Children contains the item content.
	Children []Block
}

// CodeBlock is a block of preformatted code.
type CodeBlock struct {
	ownership

	// Language is the optional info string (e.g., "go"); empty means none.
	Language string

	// Text is the literal code, without a trailing newline.
	Text string
}

// Quote is a block quotation.
type Quote struct {
	ownership

	// Attribution names the quoted author (optional).
	Attribution string

	// Children contains the quoted blocks.
	Children []Block
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	ownership
}

// Table is a grid of rows. Rows need not be rectangular in the common AST;
// targets that require it pad during conversion.
type Table struct {
	ownership

	// Rows contains the table rows in order.
	Rows []*TableRow
}

// TableRow is a single table row.
type TableRow struct {
	ownership

	// Header marks a header row.
	Header bool

	// Cells contains the row's cells in column order.
	Cells []*TableCell
}

// TableCell is a single table cell holding inline content.
type TableCell struct {
	ownership

	// Children contains the cell content.
	Children []Inline
}

// Raw carries source text of a construct no common kind represents. It is
// re-emitted verbatim in Format and degraded to text anywhere else.
type Raw struct {
	ownership

	// Format is the name of the format the text was taken from.
	Format string

	// Text is the original source text.
	Text string
}

func (*Paragraph) Kind() Kind     { return KindParagraph }
func (*Heading) Kind() Kind       { return KindHeading }
func (*List) Kind() Kind          { return KindList }
func (*ListItem) Kind() Kind      { return KindListItem }
func (*CodeBlock) Kind() Kind     { return KindCodeBlock }
func (*Quote) Kind() Kind         { return KindQuote }
func (*ThematicBreak) Kind() Kind { return KindThematicBreak }
func (*Table) Kind() Kind         { return KindTable }
func (*TableRow) Kind() Kind      { return KindTableRow }
func (*TableCell) Kind() Kind     { return KindTableCell }
func (*Raw) Kind() Kind           { return KindRaw }

func (*Paragraph) blockNode()     {}
func (*Heading) blockNode()       {}
func (*List) blockNode()          {}
func (*CodeBlock) blockNode()     {}
func (*Quote) blockNode()         {}
func (*ThematicBreak) blockNode() {}
func (*Table) blockNode()         {}
func (*Raw) blockNode()           {}

// Text is literal, unescaped text.
type Text struct {
	ownership

	// Value is the text content.
	Value string
}

// Emphasis is emphasised (usually italic) content.
type Emphasis struct {
	ownership
	Children []Inline
}

// Strong is strongly emphasised (usually bold) content.
type Strong struct {
	ownership
	Children []Inline
}

// Strikethrough is struck-out content.
type Strikethrough struct {
	ownership
	Children []Inline
}

// Underline is underlined content.
type Underline struct {
	ownership
	Children []Inline
}

// Code is an inline code span.
type Code struct {
	ownership

	// Value is the literal code.
	Value string
}

// Link is a hyperlink around inline content.
type Link struct {
	ownership

	// Target is the link destination.
	Target string

	// Children contains the link text.
	Children []Inline
}

// Image is an inline image.
type Image struct {
	ownership

	// Target is the image source.
	Target string

	// Alt is the alternative text.
	Alt string
}

// LineBreak is a hard line break inside inline content.
type LineBreak struct {
	ownership
}

// Styled applies presentational attributes to its children. A nil attribute
// is absent.
type Styled struct {
	ownership

	// Color is the foreground color (optional).
	Color *Color

	// Size is the font size (optional).
	Size *Size

	// Children contains the styled content.
	Children []Inline
}

// RawInline is the inline counterpart of Raw.
type RawInline struct {
	ownership

	// Format is the name of the format the text was taken from.
	Format string

	// Text is the original source text.
	Text string
}

func (*Text) Kind() Kind          { return KindText }
func (*Emphasis) Kind() Kind      { return KindEmphasis }
func (*Strong) Kind() Kind        { return KindStrong }
func (*Strikethrough) Kind() Kind { return KindStrikethrough }
func (*Underline) Kind() Kind     { return KindUnderline }
func (*Code) Kind() Kind          { return KindCode }
func (*Link) Kind() Kind          { return KindLink }
func (*Image) Kind() Kind         { return KindImage }
func (*LineBreak) Kind() Kind     { return KindLineBreak }
func (*Styled) Kind() Kind        { return KindStyled }
func (*RawInline) Kind() Kind     { return KindRawInline }

func (*Text) inlineNode()          {}
func (*Emphasis) inlineNode()      {}
func (*Strong) inlineNode()        {}
func (*Strikethrough) inlineNode() {}
func (*Underline) inlineNode()     {}
func (*Code) inlineNode()          {}
func (*Link) inlineNode()          {}
func (*Image) inlineNode()         {}
func (*LineBreak) inlineNode()     {}
func (*Styled) inlineNode()        {}
func (*RawInline) inlineNode()     {}

// Consume marks the document as handed over to a consuming operation. It
// fails if the document was already consumed.
func (d *Document) Consume() error {
	if d == nil {
		return structural("document", KindDocument, "nil document")
	}
	if d.consumed {
		return structural("document", KindDocument, "document already consumed")
	}
	d.consumed = true
	return nil
}

// Consumed reports whether the document has been consumed.
func (d *Document) Consumed() bool {
	return d.consumed
}

// InlineContainer is implemented by nodes whose children are inlines.
type InlineContainer interface {
	Node
	Inlines() []Inline
	SetInlines([]Inline)
}

func (n *Paragraph) Inlines() []Inline     { return n.Children }
func (n *Heading) Inlines() []Inline       { return n.Children }
func (n *TableCell) Inlines() []Inline     { return n.Children }
func (n *Emphasis) Inlines() []Inline      { return n.Children }
func (n *Strong) Inlines() []Inline        { return n.Children }
func (n *Strikethrough) Inlines() []Inline { return n.Children }
func (n *Underline) Inlines() []Inline     { return n.Children }
func (n *Link) Inlines() []Inline          { return n.Children }
func (n *Styled) Inlines() []Inline        { return n.Children }

func (n *Paragraph) SetInlines(c []Inline)     { n.Children = c }
func (n *Heading) SetInlines(c []Inline)       { n.Children = c }
func (n *TableCell) SetInlines(c []Inline)     { n.Children = c }
func (n *Emphasis) SetInlines(c []Inline)      { n.Children = c }
func (n *Strong) SetInlines(c []Inline)        { n.Children = c }
func (n *Strikethrough) SetInlines(c []Inline) { n.Children = c }
func (n *Underline) SetInlines(c []Inline)     { n.Children = c }
func (n *Link) SetInlines(c []Inline)          { n.Children = c }
func (n *Styled) SetInlines(c []Inline)        { n.Children = c }
