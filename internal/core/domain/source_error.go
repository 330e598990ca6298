package domain

import (
	"fmt"
	"strings"
)

// SourceError is a fatal module-loading failure tied to a source file.
// Kind is one of ErrReadFailed, ErrCompileFailed or ErrExecutionFailed and is
// reported by errors.Is together with the underlying cause.
type SourceError struct {
	Kind   error
	Module string
	Path   string
	// Line and Col are 1-based; zero means the position is unknown.
	Line int
	Col  int
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("module error")
	}
	if e.Module != "" {
		fmt.Fprintf(&b, " %q", e.Module)
	}
	b.WriteString(": ")
	b.WriteString(e.Location())
	switch {
	case e.Msg != "":
		b.WriteString(": ")
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Location formats the file and, when known, the line and column.
func (e *SourceError) Location() string {
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Col)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d", e.Path, e.Line)
	default:
		return e.Path
	}
}

// Unwrap exposes both the error kind and the cause to errors.Is and errors.As.
func (e *SourceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
