package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/loss"
)

// Name is the registered format name.
const Name = "markdown"

// Flavor selects the Markdown dialect.
type Flavor string

// Flavor constants.
const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// DefaultFlavor is used when no flavor is requested.
const DefaultFlavor = FlavorGFM

// ParseFlavor parses a flavor name. The empty string selects DefaultFlavor.
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultFlavor, nil
	case "commonmark", "cm":
		return FlavorCommonMark, nil
	case "gfm", "github":
		return FlavorGFM, nil
	}
	return "", tmerrors.NewValidation("flavor", fmt.Sprintf("unknown markdown flavor %q", s))
}

// Capabilities returns what the flavor represents exactly.
func (f Flavor) Capabilities() loss.Capabilities {
	caps := loss.All &^ (loss.Color | loss.Size | loss.Underline | loss.QuoteAttribution)
	caps |= loss.SingleLineBlocks
	if f == FlavorCommonMark {
		return caps &^ (loss.Strikethrough | loss.Tables)
	}
	return caps | loss.RectangularTables | loss.TableHeaderRequired
}

// Capabilities is the capability set of the default flavor.
var Capabilities = DefaultFlavor.Capabilities()

var parsers = map[Flavor]parser.Parser{
	FlavorCommonMark: goldmark.New().Parser(),
	FlavorGFM: goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify, extension.Footnote),
	).Parser(),
}

// Document is the native Markdown tree: a goldmark AST and the source its
// segments point into.
type Document struct {
	Root   gast.Node
	Source []byte
	Flavor Flavor

	consumed bool
}

// FormatName implements format.Native.
func (*Document) FormatName() string { return Name }

// KindRawBlock is the goldmark kind of RawBlock.
var KindRawBlock = gast.NewNodeKind("RawBlock")

// RawBlock is block markup written verbatim.
type RawBlock struct {
	gast.BaseBlock

	// Markup is the verbatim source.
	Markup string
}

// NewRawBlock creates a RawBlock.
func NewRawBlock(text string) *RawBlock {
	return &RawBlock{Markup: text}
}

// Kind implements gast.Node.
func (n *RawBlock) Kind() gast.NodeKind { return KindRawBlock }

// Dump implements gast.Node.
func (n *RawBlock) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{"Markup": n.Markup}, nil)
}

// KindRawInline is the goldmark kind of RawInline.
var KindRawInline = gast.NewNodeKind("RawInline")

// RawInline is inline markup written verbatim.
type RawInline struct {
	gast.BaseInline

	// Markup is the verbatim source.
	Markup string
}

// NewRawInline creates a RawInline.
func NewRawInline(text string) *RawInline {
	return &RawInline{Markup: text}
}

// Kind implements gast.Node.
func (n *RawInline) Kind() gast.NodeKind { return KindRawInline }

// Dump implements gast.Node.
func (n *RawInline) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{"Markup": n.Markup}, nil)
}
