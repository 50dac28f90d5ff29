package config

import (
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSourceNotFound    = NewError("config file not found")
	ErrParseFailed       = NewError("config file not parsed")
	ErrReadInput         = NewError("failed to read input")
	ErrUnmatchedEndBlock = NewError(`"endblock" found without matching "block"`)
	ErrReadOnly          = NewError("value is read-only")
	ErrKeyNotFound       = NewError("no such configuration value")
	ErrUnresolved        = NewError("reference not resolved")
	ErrExpand            = NewError("reference expansion failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	base  *Error // sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		base:  e.root(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		base:  e.root(),
	}
}

// Attrs returns the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// DiagnosticKind classifies a recoverable defect.
type DiagnosticKind int

const (
	// DiagSyntax is a malformed statement.
	DiagSyntax DiagnosticKind = iota
	// DiagUnclosedBlock is a block still open at the end of the parse.
	DiagUnclosedBlock
	// DiagIncludeCycle is an include of a file already being processed.
	DiagIncludeCycle
	// DiagExpansion is a reference a provider refused to expand.
	DiagExpansion
	// DiagStore is a write refused by the store.
	DiagStore
)

// String returns the name of the diagnostic kind.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagSyntax:
		return "syntax"
	case DiagUnclosedBlock:
		return "unclosed block"
	case DiagIncludeCycle:
		return "include cycle"
	case DiagExpansion:
		return "expansion"
	case DiagStore:
		return "store"
	default:
		return "unknown"
	}
}

// Diagnostic is a recoverable defect found while parsing. The parse continues
// after a diagnostic is recorded.
type Diagnostic struct {
	Kind    DiagnosticKind
	File    string
	Line    int
	Text    string // raw source line, if any
	Message string
	Err     error // underlying cause, if any
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	var sb strings.Builder

	sb.WriteString(d.File)
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(d.Line))
	sb.WriteString(": ")
	sb.WriteString(d.Message)

	if d.Text != "" {
		sb.WriteString(": ")
		sb.WriteString(strconv.Quote(d.Text))
	}

	if d.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(d.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (d Diagnostic) Unwrap() error { return d.Err }

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", d.Kind.String()),
		slog.String("file", d.File),
		slog.Int("line", d.Line),
	}

	if d.Text != "" {
		attrs = append(attrs, slog.String("text", d.Text))
	}

	if d.Err != nil {
		attrs = append(attrs, slog.String("cause", d.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// Diagnostics is an ordered list of recoverable defects.
type Diagnostics []Diagnostic

// Count returns the number of diagnostics of the given kind.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0

	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}

	return n
}

// ParseError is returned when the outermost file finishes and at least one
// diagnostic was recorded. It matches [ErrParseFailed] with errors.Is.
type ParseError struct {
	Path        string
	Diagnostics Diagnostics
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var sb strings.Builder

	sb.WriteString(ErrParseFailed.msg)
	sb.WriteString(": ")
	sb.WriteString(e.Path)
	sb.WriteString(": ")
	sb.WriteString(strconv.Itoa(len(e.Diagnostics)))

	if len(e.Diagnostics) == 1 {
		sb.WriteString(" error")
	} else {
		sb.WriteString(" errors")
	}

	for _, d := range e.Diagnostics {
		sb.WriteString("\n\t")
		sb.WriteString(d.Error())
	}

	return sb.String()
}

// Unwrap exposes the sentinel and every diagnostic to errors.Is/As.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, 0, len(e.Diagnostics)+1)
	errs = append(errs, ErrParseFailed)

	for _, d := range e.Diagnostics {
		errs = append(errs, d)
	}

	return errs
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrParseFailed.msg),
		slog.String("path", e.Path),
		slog.Int("count", len(e.Diagnostics)),
	)
}
