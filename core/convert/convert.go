// Package convert runs the full conversion pipeline:
//
//	read -> ConvertInto -> Validate -> loss policy -> ConvertFrom -> write
//
// Each stage consumes the previous stage's output. The context is checked
// between stages only; the stages themselves are pure and synchronous.
package convert

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
	"github.com/FocuswithJustin/transmark/internal/cache"
	"github.com/FocuswithJustin/transmark/internal/logging"
)

// Pipeline stage names used in logs.
const (
	StageLookup   = "lookup"
	StageRead     = "read"
	StageInto     = "convert_into"
	StageValidate = "validate"
	StageFrom     = "convert_from"
	StageWrite    = "write"
)

// Options configures a conversion.
type Options struct {
	format.Options

	// Read configures the source reader.
	Read format.ReadOptions

	// Write configures the target writer.
	Write format.WriteOptions

	// Cache memoises results when set.
	Cache *cache.Store
}

// Result is the outcome of a successful conversion.
type Result struct {
	// Output is the target markup.
	Output string

	// Report lists every degradation applied.
	Report *loss.Report

	// ID identifies the conversion in logs.
	ID string

	// SourceHash is the BLAKE3 hash of the input text.
	SourceHash string

	// Cached is true when Output came from the cache.
	Cached bool
}

// Convert converts input from one registered format to another.
func Convert(ctx context.Context, input, from, to string, opts Options) (*Result, error) {
	ctx, id := begin(ctx)
	start := time.Now()
	logging.ConversionStarted(ctx, from, to, len(input))

	res := &Result{ID: id, SourceHash: ast.HashString(input)}

	var key string
	if opts.Cache != nil {
		key = cache.Key(cache.Request{From: from, To: to, Options: opts.Options, Read: opts.Read, Write: opts.Write, Input: input})
		if e, ok, err := opts.Cache.Get(ctx, key); err != nil {
			logging.WarnContext(ctx, "cache lookup failed", "error", err.Error())
		} else if ok {
			res.Output, res.Report, res.Cached = e.Output, e.Report, true
			finish(ctx, from, to, res.Report, start, "cached", true)
			return res, nil
		}
	}

	src, dst, err := lookupPair(from, to)
	if err != nil {
		logging.ConversionFailed(ctx, from, to, StageLookup, err)
		return nil, err
	}

	doc, err := read(ctx, src, strings.NewReader(input), opts)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	report, err := emit(ctx, doc, src.Name, dst, &sb, opts)
	if err != nil {
		return nil, err
	}
	res.Output, res.Report = sb.String(), report

	if opts.Cache != nil {
		e := &cache.Entry{Output: res.Output, Report: res.Report, SourceHash: res.SourceHash}
		if err := opts.Cache.Put(ctx, key, e); err != nil {
			logging.WarnContext(ctx, "cache store failed", "error", err.Error())
		}
	}

	finish(ctx, src.Name, dst.Name, report, start)
	return res, nil
}

// ConvertStream reads markup from r and writes the converted markup to w.
// r is closed after reading and w after writing when they implement io.Closer.
func ConvertStream(ctx context.Context, r io.Reader, w io.Writer, from, to string, opts Options) (*loss.Report, error) {
	ctx, _ = begin(ctx)
	start := time.Now()
	logging.ConversionStarted(ctx, from, to, -1, "stream", true)

	src, dst, err := lookupPair(from, to)
	if err != nil {
		closeQuietly(r)
		closeQuietly(w)
		logging.ConversionFailed(ctx, from, to, StageLookup, err)
		return nil, err
	}

	doc, err := read(ctx, src, r, opts)
	if err != nil {
		closeQuietly(w)
		return nil, err
	}

	report, err := emit(ctx, doc, src.Name, dst, w, opts)
	if err != nil {
		closeQuietly(w)
		return nil, err
	}

	finish(ctx, src.Name, dst.Name, report, start)
	return report, nil
}

// ToCommon reads input in the given format and returns its common AST.
func ToCommon(ctx context.Context, input, from string, opts Options) (*ast.Document, error) {
	ctx, _ = begin(ctx)

	src, err := format.Lookup(from)
	if err != nil {
		logging.ConversionFailed(ctx, from, "", StageLookup, err)
		return nil, err
	}
	return read(ctx, src, strings.NewReader(input), opts)
}

// FromCommon converts a common AST into markup of the given format. doc is
// consumed.
func FromCommon(ctx context.Context, doc *ast.Document, to string, opts Options) (string, *loss.Report, error) {
	ctx, _ = begin(ctx)

	dst, err := format.Lookup(to)
	if err != nil {
		logging.ConversionFailed(ctx, "", to, StageLookup, err)
		return "", nil, err
	}
	if err := requireCodec(dst); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	report, err := emit(ctx, doc, "", dst, &sb, opts)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), report, nil
}

// begin attaches a conversion ID to ctx unless one is already present.
func begin(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id := logging.GetConversionID(ctx); id != "" {
		return ctx, id
	}
	id := logging.NewConversionID()
	return logging.WithConversionID(ctx, id), id
}

func finish(ctx context.Context, from, to string, report *loss.Report, start time.Time, args ...any) {
	class, n := string(loss.LossL0), 0
	if report != nil {
		class, n = string(report.LossClass), len(report.Diagnostics)
	}
	logging.ConversionFinished(ctx, from, to, class, n, time.Since(start), args...)
}

func lookupPair(from, to string) (*format.Format, *format.Format, error) {
	src, err := format.Lookup(from)
	if err != nil {
		return nil, nil, err
	}
	dst, err := format.Lookup(to)
	if err != nil {
		return nil, nil, err
	}
	if err := requireCodec(src); err != nil {
		return nil, nil, err
	}
	if err := requireCodec(dst); err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

func requireCodec(f *format.Format) error {
	if f.Codec == nil {
		return tmerrors.NewValidation("format", f.Name+" has no markup reader or writer")
	}
	return nil
}

// read parses r and converts it into a validated common AST.
func read(ctx context.Context, src *format.Format, r io.Reader, opts Options) (*ast.Document, error) {
	if err := ctx.Err(); err != nil {
		closeQuietly(r)
		return nil, err
	}

	readOpts := opts.Read
	if readOpts.Flavor == "" {
		readOpts.Flavor = opts.Flavor
	}
	native, err := src.Codec.ReadMarkup(r, readOpts)
	if err != nil {
		logging.ConversionFailed(ctx, src.Name, "", StageRead, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := src.Converter.ConvertInto(native)
	if err != nil {
		logging.ConversionFailed(ctx, src.Name, "", StageInto, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := ast.Validate(doc); err != nil {
		err = format.IntoError(src.Name, "", err)
		logging.ConversionFailed(ctx, src.Name, "", StageValidate, err)
		return nil, err
	}
	return doc, nil
}

// emit consumes doc, degrades it for dst and writes the result to w.
func emit(ctx context.Context, doc *ast.Document, from string, dst *format.Format, w io.Writer, opts Options) (*loss.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fopts := opts.Options
	if fopts.Logger == nil {
		fopts.Logger = logging.LoggerFromContext(ctx)
	}
	native, report, err := dst.Converter.ConvertFrom(doc, fopts)
	if err != nil {
		logging.ConversionFailed(ctx, from, dst.Name, StageFrom, err)
		return nil, err
	}
	report.SourceFormat = from
	for _, d := range report.Diagnostics {
		logging.Degradation(ctx, dst.Name, string(d.NodeKind), d.Path, d.Reason)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := dst.Codec.WriteMarkup(w, native, opts.Write); err != nil {
		logging.ConversionFailed(ctx, from, dst.Name, StageWrite, err)
		return nil, err
	}
	return report, nil
}

// closeQuietly closes v if it is an io.Closer.
func closeQuietly(v any) {
	if c, ok := v.(io.Closer); ok {
		c.Close()
	}
}
