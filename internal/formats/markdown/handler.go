package markdown

import (
	"io"

	"github.com/FocuswithJustin/transmark/core/ast"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
	"github.com/FocuswithJustin/transmark/internal/logging"
)

// Handler implements format.Converter and format.TextCodec for Markdown.
type Handler struct{}

// Manifest returns the format manifest for registration.
func Manifest() format.Manifest {
	return format.Manifest{
		Name:        Name,
		Version:     "1.0.0",
		Aliases:     []string{"md"},
		Extensions:  []string{"md", "markdown", "mkd"},
		MediaType:   "text/markdown",
		Description: "CommonMark and GitHub Flavored Markdown",
	}
}

// Register registers this format with the format registry.
func Register() {
	format.MustRegister(&format.Format{
		Manifest:     Manifest(),
		Converter:    &Handler{},
		Codec:        &Handler{},
		Capabilities: Capabilities,
	})
	logging.FormatRegistered(Name, Manifest().Version)
}

func init() {
	Register()
}

// ConvertInto implements format.Converter.
func (h *Handler) ConvertInto(n format.Native) (*ast.Document, error) {
	d, ok := n.(*Document)
	if !ok {
		return nil, format.WrongNative(Name, n)
	}
	return ConvertInto(d)
}

// ConvertFrom implements format.Converter.
func (h *Handler) ConvertFrom(doc *ast.Document, opts format.Options) (format.Native, *loss.Report, error) {
	d, report, err := ConvertFrom(doc, opts)
	if err != nil {
		return nil, nil, err
	}
	return d, report, nil
}

// ReadMarkup implements format.TextCodec.
func (h *Handler) ReadMarkup(r io.Reader, opts format.ReadOptions) (format.Native, error) {
	d, err := ReadMarkup(r, opts)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// WriteMarkup implements format.TextCodec.
func (h *Handler) WriteMarkup(w io.Writer, n format.Native, _ format.WriteOptions) error {
	d, ok := n.(*Document)
	if !ok || d == nil {
		return format.WrongNative(Name, n)
	}
	return d.WriteMarkup(w)
}
