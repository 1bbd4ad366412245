package composite

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tuannm99/novaload/internal/record"
	"github.com/tuannm99/novaload/internal/tokenizer"
)

var (
	ErrMissingOpen        = errors.New("composite: missing open bracket")
	ErrMissingClose       = errors.New("composite: missing close bracket")
	ErrFieldCountMismatch = errors.New("composite: field codecs do not match schema")
	ErrTooManyFields      = errors.New("composite: more fields than codecs")
	ErrTypeMismatch       = errors.New("composite: parsed value does not match declared type")
	ErrDuplicateField     = errors.New("composite: duplicate field")
	ErrNilRecord          = errors.New("composite: nil record")
	ErrTypeCycle          = errors.New("composite: nested type refers to itself")
)

// Boundary names the bracket a MalformedError is about.
type Boundary string

const (
	BoundaryOpen  Boundary = "open"
	BoundaryClose Boundary = "close"
)

// MalformedError means the text is not wrapped in the configured
// brackets. It is reported before any tokenizing happens.
type MalformedError struct {
	Boundary Boundary
	Want     rune
	Text     string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("composite: value must %s with %q: %q", e.verb(), e.Want, clip(e.Text))
}

func (e *MalformedError) verb() string {
	if e.Boundary == BoundaryOpen {
		return "begin"
	}
	return "end"
}

func (e *MalformedError) Unwrap() error {
	if e.Boundary == BoundaryOpen {
		return ErrMissingOpen
	}
	return ErrMissingClose
}

// UnsupportedFieldTypeError means a declared field type has no
// coercion. It is never downgraded by PolicySkip.
type UnsupportedFieldTypeError struct {
	Field string
	Type  string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("composite: field %q has unsupported type %q", e.Field, e.Type)
}

// FieldParseError wraps a failure while reading the value at Index.
type FieldParseError struct {
	Index int
	Field string
	Text  string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("composite: field %d (%q) value %q: %v", e.Index, e.Field, clip(e.Text), e.Err)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err only condemns the one composite it
// came from. Malformed outer brackets and unsupported types are not
// recoverable: they point at the configuration or the whole input.
func IsRecoverable(err error) bool {
	var unsupported *UnsupportedFieldTypeError
	if err == nil || errors.As(err, &unsupported) {
		return false
	}
	var (
		fieldErr   *FieldParseError
		unknownErr *record.UnknownFieldError
		syntaxErr  *tokenizer.SyntaxError
	)
	return errors.As(err, &fieldErr) || errors.As(err, &unknownErr) || errors.As(err, &syntaxErr)
}

func clip(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	n := max
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
