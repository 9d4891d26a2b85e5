package loss

import "strings"

// Capabilities is the set of common-AST constructs a format can represent.
type Capabilities uint32

// Capability flags.
const (
	Headings Capabilities = 1 << iota
	Lists
	CodeBlocks
	CodeLanguage
	Quotes
	QuoteAttribution
	ThematicBreaks
	Tables
	Emphasis
	Strong
	Strikethrough
	Underline
	InlineCode
	Links
	Images
	LineBreaks
	Color
	Size

	// RectangularTables requires every table row to have the same number of cells.
	RectangularTables
	// TableHeaderRequired requires the first table row to be a header row.
	TableHeaderRequired
	// SingleLineBlocks forbids line breaks inside headings and table cells.
	SingleLineBlocks
)

// All represents every construct of the common AST without table constraints.
const All = Headings | Lists | CodeBlocks | CodeLanguage | Quotes | QuoteAttribution |
	ThematicBreaks | Tables | Emphasis | Strong | Strikethrough | Underline |
	InlineCode | Links | Images | LineBreaks | Color | Size

var capabilityNames = []struct {
	c    Capabilities
	name string
}{
	{Headings, "headings"},
	{Lists, "lists"},
	{CodeBlocks, "code-blocks"},
	{CodeLanguage, "code-language"},
	{Quotes, "quotes"},
	{QuoteAttribution, "quote-attribution"},
	{ThematicBreaks, "thematic-breaks"},
	{Tables, "tables"},
	{Emphasis, "emphasis"},
	{Strong, "strong"},
	{Strikethrough, "strikethrough"},
	{Underline, "underline"},
	{InlineCode, "inline-code"},
	{Links, "links"},
	{Images, "images"},
	{LineBreaks, "line-breaks"},
	{Color, "color"},
	{Size, "size"},
	{RectangularTables, "rectangular-tables"},
	{TableHeaderRequired, "table-header-required"},
	{SingleLineBlocks, "single-line-blocks"},
}

// Has returns true if every flag in c is set.
func (caps Capabilities) Has(c Capabilities) bool {
	return caps&c == c
}

// With returns caps with c added.
func (caps Capabilities) With(c Capabilities) Capabilities {
	return caps | c
}

// Without returns caps with c removed.
func (caps Capabilities) Without(c Capabilities) Capabilities {
	return caps &^ c
}

// Names returns the names of the set flags in declaration order.
func (caps Capabilities) Names() []string {
	var names []string
	for _, cn := range capabilityNames {
		if caps.Has(cn.c) {
			names = append(names, cn.name)
		}
	}
	return names
}

// String returns the set flags joined by commas, or "none".
func (caps Capabilities) String() string {
	if caps == 0 {
		return "none"
	}
	return strings.Join(caps.Names(), ",")
}
