// Package errors provides the error taxonomy shared by every TransMark component.
//
// Lossy degradation is never an error. Only the kinds below propagate:
//
//   - StructuralViolation: a tree invariant was broken while building or
//     transforming a tree.
//   - UnsupportedConstruct: strict mode was requested and a construct had to
//     be degraded.
//   - IOFailure: the underlying byte sink or source failed.
//   - EncodingFailure: input bytes are not valid text in the expected encoding.
//
// Callers see these wrapped in ConversionError, ReadError or WriteError, which
// add the format and the location (node path or byte offset) of the failure.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrStructuralViolation indicates a broken tree invariant
	ErrStructuralViolation = errors.New("structural violation")
	// ErrUnsupportedConstruct indicates a construct with no fallback under strict mode
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	// ErrIOFailure indicates the byte sink or source failed
	ErrIOFailure = errors.New("i/o failure")
	// ErrEncodingFailure indicates input that is not valid text
	ErrEncodingFailure = errors.New("encoding failure")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("already exists")
)

// Kind classifies an error by its taxonomy sentinel.
type Kind string

// Kind constants.
const (
	KindStructuralViolation  Kind = "StructuralViolation"
	KindUnsupportedConstruct Kind = "UnsupportedConstructFatal"
	KindIOFailure            Kind = "IoFailure"
	KindEncodingFailure      Kind = "EncodingFailure"
	KindNotFound             Kind = "NotFound"
	KindInvalidInput         Kind = "InvalidInput"
	KindUnknown              Kind = "Unknown"
)

// KindOf reports which taxonomy kind err belongs to.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStructuralViolation):
		return KindStructuralViolation
	case errors.Is(err, ErrUnsupportedConstruct):
		return KindUnsupportedConstruct
	case errors.Is(err, ErrEncodingFailure):
		return KindEncodingFailure
	case errors.Is(err, ErrIOFailure):
		return KindIOFailure
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

// StructuralViolationError represents a broken AST invariant
type StructuralViolationError struct {
	Path    string // Node path (e.g., "document.blocks[0].children[1]")
	Node    string // Kind of the offending node
	Message string // What was violated
}

func (e *StructuralViolationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("structural violation at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("structural violation: %s", e.Message)
}

func (e *StructuralViolationError) Unwrap() error {
	return ErrStructuralViolation
}

// UnsupportedConstructError represents a construct that strict mode refused to degrade
type UnsupportedConstructError struct {
	Format string // Target format
	Node   string // Kind of the offending node
	Path   string // Node path
	Reason string // Degradation that would have applied
}

func (e *UnsupportedConstructError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("unsupported %s at %s in %s: %s", e.Node, e.Path, e.Format, e.Reason)
	}
	return fmt.Sprintf("unsupported %s in %s: %s", e.Node, e.Format, e.Reason)
}

func (e *UnsupportedConstructError) Unwrap() error {
	return ErrUnsupportedConstruct
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "close")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

// Is reports ErrIOFailure as well as the wrapped error.
func (e *IOError) Is(target error) bool {
	return target == ErrIOFailure
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// EncodingError represents input bytes that are not valid text
type EncodingError struct {
	Encoding string // Expected encoding (e.g., "utf-8", "windows-1252")
	Offset   int64  // Byte offset of the first invalid sequence, -1 if unknown
	Err      error  // Underlying error, if any
}

func (e *EncodingError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("invalid %s input at byte %d", e.Encoding, e.Offset)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s input: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("invalid %s input", e.Encoding)
}

func (e *EncodingError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrEncodingFailure, e.Err)
	}
	return ErrEncodingFailure
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "format")
	ID       string // Identifier of the resource
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Direction names the side of a conversion that failed.
type Direction string

// Direction constants.
const (
	DirectionInto Direction = "into" // native -> common
	DirectionFrom Direction = "from" // common -> native
)

// ConversionError is returned by ConvertInto and ConvertFrom.
type ConversionError struct {
	Format    string
	Direction Direction
	Path      string // Node path of the failure, if known
	Err       error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert %s %s", e.Direction, e.Format)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ReadError is returned by a format's markup reader.
type ReadError struct {
	Format string
	Offset int64 // Byte offset in the input, -1 if unknown
	Err    error
}

func (e *ReadError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("read %s at byte %d: %v", e.Format, e.Offset, e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Format, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError is returned by a format's markup writer.
type WriteError struct {
	Format string
	Path   string // Node path being written, if known
	Err    error
}

func (e *WriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("write %s at %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("write %s: %v", e.Format, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewStructural creates a StructuralViolationError
func NewStructural(path, node, message string) *StructuralViolationError {
	return &StructuralViolationError{
		Path:    path,
		Node:    node,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedConstructError
func NewUnsupported(format, node, path, reason string) *UnsupportedConstructError {
	return &UnsupportedConstructError{
		Format: format,
		Node:   node,
		Path:   path,
		Reason: reason,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewEncoding creates an EncodingError
func NewEncoding(encoding string, offset int64, err error) *EncodingError {
	return &EncodingError{
		Encoding: encoding,
		Offset:   offset,
		Err:      err,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
