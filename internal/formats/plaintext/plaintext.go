package plaintext

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
	"github.com/FocuswithJustin/transmark/core/markup"
)

// Name is the registered format name.
const Name = "plaintext"

// Capabilities lists what plain text represents exactly.
const Capabilities = loss.LineBreaks

// Document is the native plain text tree.
type Document struct {
	// Paragraphs holds each paragraph's text; lines are separated by "\n".
	Paragraphs []string

	consumed bool
}

// FormatName implements format.Native.
func (*Document) FormatName() string { return Name }

// ReadMarkupText parses plain text.
func ReadMarkupText(s string) *Document {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	doc := &Document{}
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			doc.Paragraphs = append(doc.Paragraphs, strings.Join(lines, "\n"))
			lines = nil
		}
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return doc
}

// ReadMarkup parses plain text from r, closing it if it is an io.Closer.
func ReadMarkup(r io.Reader, opts format.ReadOptions) (*Document, error) {
	text, err := markup.ReadAll(r, markup.Options{Charset: opts.Charset})
	if err != nil {
		return nil, &tmerrors.ReadError{Format: Name, Offset: offsetOf(err), Err: err}
	}
	return ReadMarkupText(text), nil
}

func offsetOf(err error) int64 {
	var ee *tmerrors.EncodingError
	if tmerrors.As(err, &ee) {
		return ee.Offset
	}
	return -1
}

// WriteMarkupText renders the document.
func (d *Document) WriteMarkupText() (string, error) {
	return markup.WriteString(func(w *bufio.Writer) error { return d.write(w, 0) })
}

// WriteMarkup writes the document to w, wrapping at width when it is positive.
func (d *Document) WriteMarkup(w io.Writer, width int) error {
	return markup.WriteScoped(w, func(bw *bufio.Writer) error { return d.write(bw, width) })
}

func (d *Document) write(w *bufio.Writer, width int) error {
	for i, p := range d.Paragraphs {
		if i > 0 {
			w.WriteString("\n")
		}
		if width > 0 {
			p = wordwrap.String(p, width)
		}
		if _, err := w.WriteString(p + "\n"); err != nil {
			return tmerrors.NewIO("write", "", err)
		}
	}
	return nil
}

// ConvertInto converts a plain text document into the common AST.
func ConvertInto(d *Document) (*ast.Document, error) {
	if d == nil || d.consumed {
		return nil, format.IntoError(Name, "", tmerrors.NewStructural("", "Document", "document is nil or already consumed"))
	}
	d.consumed = true

	blocks := make([]ast.Block, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		var children []ast.Inline
		for i, line := range strings.Split(p, "\n") {
			if i > 0 {
				children = append(children, &ast.LineBreak{})
			}
			if line != "" {
				children = append(children, &ast.Text{Value: line})
			}
		}
		blocks = append(blocks, &ast.Paragraph{Children: children})
	}
	return &ast.Document{Blocks: blocks}, nil
}

// ConvertFrom converts a common AST into plain text.
func ConvertFrom(doc *ast.Document, opts format.Options) (*Document, *loss.Report, error) {
	degraded, report, err := format.Degrade(doc, Name, Capabilities, opts)
	if err != nil {
		return nil, nil, err
	}

	out := &Document{}
	for i, b := range degraded.Blocks {
		var text string
		switch b := b.(type) {
		case *ast.Paragraph:
			text = ast.PlainText(b.Children)
		case *ast.Raw:
			text = b.Text
		default:
			return nil, nil, format.FromError(Name, tmerrors.NewStructural(
				fmt.Sprintf("document.blocks[%d]", i), string(b.Kind()), "block survived degradation"))
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		out.Paragraphs = append(out.Paragraphs, text)
	}
	return out, report, nil
}
