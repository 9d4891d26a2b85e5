package html

import (
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/markup"
)

// bodyContext is the context element fragments are parsed in.
var bodyContext = &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}

// ReadMarkupText parses an HTML fragment. The HTML parser recovers from any
// malformed input, so only reader failures are errors.
func ReadMarkupText(s string) (*Fragment, error) {
	nodes, err := xhtml.ParseFragment(strings.NewReader(s), bodyContext)
	if err != nil {
		return nil, &tmerrors.ReadError{Format: Name, Offset: -1, Err: tmerrors.NewIO("parse", "", err)}
	}
	return &Fragment{Nodes: nodes}, nil
}

// ReadMarkup parses HTML from r, closing it if it is an io.Closer. Without
// an explicit charset the encoding is sniffed from a BOM or meta element.
func ReadMarkup(r io.Reader, opts format.ReadOptions) (*Fragment, error) {
	s, err := markup.ReadAll(r, markup.Options{Charset: opts.Charset, SniffHTML: opts.Charset == ""})
	if err != nil {
		offset := int64(-1)
		var ee *tmerrors.EncodingError
		if tmerrors.As(err, &ee) {
			offset = ee.Offset
		}
		return nil, &tmerrors.ReadError{Format: Name, Offset: offset, Err: err}
	}
	return ReadMarkupText(s)
}
