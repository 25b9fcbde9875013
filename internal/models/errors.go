package models

import (
	"errors"
	"fmt"
)

// FormatError reports an import whose overall shape is wrong.
type FormatError struct {
	Msg     string
	Columns int // field count of the offending line, 0 when not applicable
}

func (e *FormatError) Error() string { return e.Msg }

var (
	ErrEmptyImport     = &FormatError{Msg: "missing headers or empty file"}
	ErrBinderExport    = &FormatError{Msg: "expecting a collection export, got a binder export", Columns: 15}
	ErrInvalidEncoding = &FormatError{Msg: "import is not valid UTF-8 text"}
)

// Is matches sentinel format errors by message.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Msg == e.Msg
}

// NewColumnCountError reports a line with the wrong number of fields.
func NewColumnCountError(got int) *FormatError {
	return &FormatError{Msg: fmt.Sprintf("expected 17 fields per line, got %d", got), Columns: got}
}

// ValueError reports a field that could not be converted. Line is 1-based over data lines.
type ValueError struct {
	Line  int
	Field string
	Value string
	Err   error
}

// Error keeps the code validation message when the field is a set or language code.
func (e *ValueError) Error() string {
	msg := fmt.Sprintf("Line %d: invalid %s '%s' (must be a valid value)", e.Line, e.Field, e.Value)
	var ce *CodeError
	if errors.As(e.Err, &ce) {
		msg += ": " + ce.Error()
	}
	return msg
}

func (e *ValueError) Unwrap() error { return e.Err }

// CodeKind names the code family a CodeError refers to.
type CodeKind string

const (
	CodeKindSet      CodeKind = "set code"
	CodeKindLanguage CodeKind = "language code"
)

// CodeError reports an invalid set or language code.
type CodeError struct {
	Kind  CodeKind
	Value string
}

func (e *CodeError) Error() string {
	switch e.Kind {
	case CodeKindSet:
		return fmt.Sprintf("set code must be exactly 3 alphanumeric characters (got %s)", e.Value)
	case CodeKindLanguage:
		return fmt.Sprintf("invalid language code : %s", e.Value)
	default:
		return fmt.Sprintf("invalid %s: %s", e.Kind, e.Value)
	}
}

// ErrSnapshotExists is returned when a valuation for the same (date, user) is already stored.
var ErrSnapshotExists = errors.New("valuation snapshot already exists")

// IsImportError reports whether err is caused by bad import input rather than a collaborator.
func IsImportError(err error) bool {
	var fe *FormatError
	var ve *ValueError
	return errors.As(err, &fe) || errors.As(err, &ve)
}
