// Package fieldcodec holds the text codecs for single composite fields.
package fieldcodec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tuannm99/novaload/internal/record"
	"github.com/tuannm99/novaload/internal/tokenizer"
)

var (
	ErrWrongKind   = errors.New("fieldcodec: value of wrong kind")
	ErrUnsupported = errors.New("fieldcodec: no codec for type")
)

// Codec parses and formats the text of one field. Parse returns a nil
// value for NULL.
type Codec interface {
	Parse(text string) (any, error)
	Format(v any) (string, error)
}

// ParseError is returned by the built-in codecs when text cannot be
// read as their kind.
type ParseError struct {
	Kind string
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fieldcodec: invalid %s %q", e.Kind, e.Text)
	}
	return fmt.Sprintf("fieldcodec: invalid %s %q: %v", e.Kind, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func wrongKind(kind string, v any) error {
	return fmt.Errorf("%w: %s codec given %T", ErrWrongKind, kind, v)
}

// scalar prepares the text of a non-text field: quotes and escapes are
// resolved and surrounding whitespace dropped. ok is false for NULL.
func scalar(q tokenizer.Config, kind, text string) (string, bool, error) {
	s, _, err := q.Unquote(text)
	if err != nil {
		return "", false, &ParseError{Kind: kind, Text: text, Err: err}
	}
	s = strings.TrimSpace(s)
	return s, s != "", nil
}

// ---- boolean ----

type Bool struct{ q tokenizer.Config }

func (c Bool) Parse(text string) (any, error) {
	s, ok, err := scalar(c.q, "boolean", text)
	if !ok {
		return nil, err
	}
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	}
	return nil, &ParseError{Kind: "boolean", Text: text}
}

func (c Bool) Format(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", wrongKind("boolean", v)
	}
	return c.q.QuoteIfNeeded(strconv.FormatBool(b)), nil
}

// ---- integers ----

// Integer covers tinyint, smallint, int and bigint; bits selects the
// width and the native type (int8, int16, int32, int64).
type Integer struct {
	q    tokenizer.Config
	bits int
}

func (c Integer) kind() string {
	switch c.bits {
	case 8:
		return "tinyint"
	case 16:
		return "smallint"
	case 32:
		return "int"
	}
	return "bigint"
}

func (c Integer) Parse(text string) (any, error) {
	s, ok, err := scalar(c.q, c.kind(), text)
	if !ok {
		return nil, err
	}
	n, err := strconv.ParseInt(s, 10, c.bits)
	if err != nil {
		return nil, &ParseError{Kind: c.kind(), Text: text, Err: err}
	}
	switch c.bits {
	case 8:
		return int8(n), nil
	case 16:
		return int16(n), nil
	case 32:
		return int32(n), nil
	}
	return n, nil
}

func (c Integer) Format(v any) (string, error) {
	var n int64
	switch x := v.(type) {
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case int:
		n = int64(x)
	default:
		return "", wrongKind(c.kind(), v)
	}
	if c.bits < 64 {
		lim := int64(1) << (c.bits - 1)
		if n < -lim || n >= lim {
			return "", fmt.Errorf("%w: %d overflows %s", ErrWrongKind, n, c.kind())
		}
	}
	return c.q.QuoteIfNeeded(strconv.FormatInt(n, 10)), nil
}

// ---- floating point ----

type Float struct {
	q    tokenizer.Config
	bits int
}

func (c Float) kind() string {
	if c.bits == 32 {
		return "float"
	}
	return "double"
}

func (c Float) Parse(text string) (any, error) {
	s, ok, err := scalar(c.q, c.kind(), text)
	if !ok {
		return nil, err
	}
	f, err := strconv.ParseFloat(s, c.bits)
	if err != nil {
		return nil, &ParseError{Kind: c.kind(), Text: text, Err: err}
	}
	if c.bits == 32 {
		return float32(f), nil
	}
	return f, nil
}

func (c Float) Format(v any) (string, error) {
	var s string
	switch x := v.(type) {
	case float32:
		if c.bits != 32 {
			s = strconv.FormatFloat(float64(x), 'g', -1, 64)
		} else {
			s = strconv.FormatFloat(float64(x), 'g', -1, 32)
		}
	case float64:
		if c.bits == 32 && !math.IsInf(x, 0) && !math.IsNaN(x) && math.Abs(x) > math.MaxFloat32 {
			return "", fmt.Errorf("%w: %g overflows float", ErrWrongKind, x)
		}
		s = strconv.FormatFloat(x, 'g', -1, c.bits)
	default:
		return "", wrongKind(c.kind(), v)
	}
	return c.q.QuoteIfNeeded(s), nil
}

// ---- text ----

// Text keeps the value as a string. Quoted text is unquoted; quoting on
// format is applied only when the value would not survive tokenizing.
type Text struct{ q tokenizer.Config }

func (c Text) Parse(text string) (any, error) {
	s, quoted, err := c.q.Unquote(text)
	if err != nil {
		return nil, &ParseError{Kind: "text", Text: text, Err: err}
	}
	if s == "" && !quoted {
		return nil, nil
	}
	return s, nil
}

func (c Text) Format(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", wrongKind("text", v)
	}
	return c.q.QuoteIfNeeded(s), nil
}

// ForType returns the built-in codec for a scalar tag. Nested
// composites are built by the composite package.
func ForType(tag record.TypeTag, q tokenizer.Config, opts ...Option) (Codec, error) {
	o := options{layouts: DefaultTimestampLayouts}
	for _, fn := range opts {
		fn(&o)
	}
	switch tag {
	case record.TypeBoolean:
		return Bool{q: q}, nil
	case record.TypeTinyInt:
		return Integer{q: q, bits: 8}, nil
	case record.TypeSmallInt:
		return Integer{q: q, bits: 16}, nil
	case record.TypeInt:
		return Integer{q: q, bits: 32}, nil
	case record.TypeBigInt:
		return Integer{q: q, bits: 64}, nil
	case record.TypeFloat:
		return Float{q: q, bits: 32}, nil
	case record.TypeDouble:
		return Float{q: q, bits: 64}, nil
	case record.TypeTimestamp:
		return Timestamp{q: q, layouts: o.layouts}, nil
	case record.TypeUUID:
		return UUID{q: q}, nil
	case record.TypeTimeUUID:
		return UUID{q: q, timeBased: true}, nil
	case record.TypeText, record.TypeVarchar:
		return Text{q: q}, nil
	}
	return nil, fmt.Errorf("%w %s", ErrUnsupported, tag)
}

// NewText is the codec used for field names.
func NewText(q tokenizer.Config) Text { return Text{q: q} }

type options struct {
	layouts []string
}

type Option func(*options)

// WithTimestampLayouts replaces the accepted timestamp layouts. The
// first layout is used for formatting.
func WithTimestampLayouts(layouts ...string) Option {
	return func(o *options) {
		if len(layouts) > 0 {
			o.layouts = layouts
		}
	}
}
