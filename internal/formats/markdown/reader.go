package markdown

import (
	"io"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/markup"
)

// ReadMarkupText parses Markdown in the default flavor.
func ReadMarkupText(s string) (*Document, error) {
	return Parse([]byte(s), DefaultFlavor)
}

// Parse parses Markdown source in the given flavor. Markdown has no syntax
// errors, so parsing only fails for an unknown flavor.
func Parse(source []byte, flavor Flavor) (*Document, error) {
	p, ok := parsers[flavor]
	if !ok {
		return nil, &tmerrors.ReadError{Format: Name, Offset: -1, Err: tmerrors.NewValidation("flavor", "unknown markdown flavor "+string(flavor))}
	}
	root := p.Parse(text.NewReader(source))
	return &Document{Root: root, Source: source, Flavor: flavor}, nil
}

// ReadMarkup parses Markdown from r, closing it if it is an io.Closer.
func ReadMarkup(r io.Reader, opts format.ReadOptions) (*Document, error) {
	flavor, err := ParseFlavor(opts.Flavor)
	if err != nil {
		if rc, ok := r.(io.Closer); ok {
			rc.Close()
		}
		return nil, &tmerrors.ReadError{Format: Name, Offset: -1, Err: err}
	}
	s, err := markup.ReadAll(r, markup.Options{Charset: opts.Charset})
	if err != nil {
		offset := int64(-1)
		var ee *tmerrors.EncodingError
		if tmerrors.As(err, &ee) {
			offset = ee.Offset
		}
		return nil, &tmerrors.ReadError{Format: Name, Offset: offset, Err: err}
	}
	return Parse([]byte(s), flavor)
}

// textValue returns the literal text of a goldmark text node, resolving
// backslash escapes and entity references unless the node is raw.
func textValue(t *gast.Text, source []byte) string {
	v := t.Segment.Value(source)
	if t.IsRaw() {
		return string(v)
	}
	return resolve(v)
}

func resolve(v []byte) string {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

// linesValue joins the line segments of a block, without the final newline.
func linesValue(n gast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	if html, ok := n.(*gast.HTMLBlock); ok && html.HasClosure() {
		sb.Write(html.ClosureLine.Value(source))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// rawValue joins the segments of inline HTML.
func rawValue(n *gast.RawHTML, source []byte) string {
	var sb strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

// codeSpanValue returns the literal content of a code span.
func codeSpanValue(n gast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *gast.Text:
			sb.Write(c.Segment.Value(source))
		case *gast.String:
			sb.Write(c.Value)
		}
	}
	return strings.ReplaceAll(sb.String(), "\n", " ")
}
