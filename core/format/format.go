// Package format defines the capability set every markup format implements
// and the registry that maps format names to implementations.
//
// A format is polymorphic over {ConvertInto, ConvertFrom} plus an optional
// TextCodec for reading and writing its textual markup. New formats register
// themselves from an init function, so adding one never requires editing
// another.
package format

import (
	"io"
	"log/slog"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/loss"
)

// Native is implemented by every format-native AST.
type Native interface {
	// FormatName returns the registered name of the format the tree belongs to.
	FormatName() string
}

// Converter converts between a format's native AST and the common AST.
// Both directions consume their input: callers must not reuse it.
type Converter interface {
	// ConvertInto converts a native tree into the common AST. It fails only on
	// structural impossibility.
	ConvertInto(n Native) (*ast.Document, error)

	// ConvertFrom converts a common AST into the native tree, degrading
	// constructs the format cannot represent and reporting each degradation.
	ConvertFrom(doc *ast.Document, opts Options) (Native, *loss.Report, error)
}

// TextCodec reads and writes a format's textual markup.
type TextCodec interface {
	// ReadMarkup parses markup into the native AST.
	ReadMarkup(r io.Reader, opts ReadOptions) (Native, error)

	// WriteMarkup serialises a native tree.
	WriteMarkup(w io.Writer, n Native, opts WriteOptions) error
}

// Manifest describes a registered format.
type Manifest struct {
	// Name is the canonical, lower-case format name (e.g., "markdown").
	Name string `json:"name" yaml:"name"`

	// Version is the implementation version.
	Version string `json:"version" yaml:"version"`

	// Aliases are alternative names accepted by Lookup (e.g., "md").
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Extensions are file extensions without the dot (e.g., "md").
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	// MediaType is the IANA media type of the markup.
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`

	// Description is a one-line human description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Format is a registered markup format.
type Format struct {
	Manifest

	// Converter converts to and from the common AST.
	Converter Converter

	// Codec reads and writes markup text. It is nil for formats without a
	// textual representation.
	Codec TextCodec

	// Capabilities lists the common-AST constructs the format represents exactly.
	Capabilities loss.Capabilities
}

// Options configures ConvertFrom.
type Options struct {
	// Strict fails on the first construct that would have to be degraded.
	Strict bool

	// Parallel degrades top-level blocks concurrently.
	Parallel bool

	// Workers bounds parallelism (0 means GOMAXPROCS).
	Workers int

	// TableDelimiter joins cells of flattened tables.
	TableDelimiter string

	// Flavor selects the target dialect for formats that have one (e.g.,
	// "commonmark" or "gfm" for markdown).
	Flavor string

	// Logger receives debug output; nil means slog.Default().
	Logger *slog.Logger
}

// ReadOptions configures ReadMarkup.
type ReadOptions struct {
	// Charset names the input encoding (e.g., "windows-1252"); empty means UTF-8.
	Charset string

	// Flavor selects a format dialect (e.g., "gfm" for markdown).
	Flavor string
}

// WriteOptions configures WriteMarkup.
type WriteOptions struct {
	// Width wraps text at this column where the format supports it (0 disables).
	Width int

	// Sanitize strips unsafe markup where the format supports it.
	Sanitize bool
}

// LossOptions returns the loss options matching o.
func (o Options) LossOptions() loss.Options {
	return loss.Options{
		Strict:         o.Strict,
		Parallel:       o.Parallel,
		Workers:        o.Workers,
		TableDelimiter: o.TableDelimiter,
	}
}

// Log returns the configured logger or the default one.
func (o Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Degrade applies the lossy-conversion policy for the named target format.
// Format implementations call it at the start of ConvertFrom.
func Degrade(doc *ast.Document, name string, caps loss.Capabilities, opts Options) (*ast.Document, *loss.Report, error) {
	out, report, err := loss.Apply(doc, caps, name, opts.LossOptions())
	if err != nil {
		return nil, nil, FromError(name, err)
	}
	for _, d := range report.Diagnostics {
		opts.Log().Debug("degraded construct",
			"format", name,
			"node", string(d.NodeKind),
			"path", d.Path,
			"reason", d.Reason,
		)
	}
	return out, report, nil
}

// IntoError wraps err as a ConversionError for ConvertInto.
func IntoError(name, path string, err error) error {
	if err == nil {
		return nil
	}
	return &tmerrors.ConversionError{Format: name, Direction: tmerrors.DirectionInto, Path: path, Err: err}
}

// FromError wraps err as a ConversionError for ConvertFrom, taking the node
// path from the underlying error when it carries one.
func FromError(name string, err error) error {
	if err == nil {
		return nil
	}
	path := ""
	var uc *tmerrors.UnsupportedConstructError
	var sv *tmerrors.StructuralViolationError
	switch {
	case tmerrors.As(err, &uc):
		path = uc.Path
	case tmerrors.As(err, &sv):
		path = sv.Path
	}
	return &tmerrors.ConversionError{Format: name, Direction: tmerrors.DirectionFrom, Path: path, Err: err}
}

// WrongNative reports a native tree handed to the wrong format.
func WrongNative(name string, n Native) error {
	got := "nil"
	if n != nil {
		got = n.FormatName()
	}
	return tmerrors.NewValidation("native", "expected a "+name+" tree, got "+got)
}
