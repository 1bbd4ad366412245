// Package composite parses and formats composite (user-defined type)
// values written as bracketed, delimited name/value text:
//
//	{street="1 Main St, Apt 2",zip=12345,verified=true}
//
// Field values are read by per-field codecs aligned with the schema.
package composite

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuannm99/novaload/internal/fieldcodec"
	"github.com/tuannm99/novaload/internal/record"
	"github.com/tuannm99/novaload/internal/tokenizer"
)

// DelimiterConfig holds the structural characters of a composite.
type DelimiterConfig struct {
	Collection rune // between name/value pairs
	Open       rune
	Close      rune
	Map        rune // between a name and its value
	Quote      rune
	Escape     rune
}

func DefaultDelimiters() DelimiterConfig {
	return DelimiterConfig{
		Collection: ',',
		Open:       '{',
		Close:      '}',
		Map:        '=',
		Quote:      '"',
		Escape:     '\\',
	}
}

// Tokenizer returns the scanner configuration: pairs are records, the
// map delimiter splits fields, quotes and escapes are kept raw.
func (d DelimiterConfig) Tokenizer() tokenizer.Config {
	return tokenizer.Config{
		RecordSep:  d.Collection,
		FieldSep:   d.Map,
		Quote:      d.Quote,
		Escape:     d.Escape,
		Open:       d.Open,
		Close:      d.Close,
		KeepQuotes: true,
	}
}

// Dispatch selects which field codec reads a pair.
type Dispatch uint8

const (
	// DispatchByPosition reads the i-th pair with the i-th codec,
	// whatever name the pair carries. Text must list fields in schema
	// order; reordered fields are misread.
	DispatchByPosition Dispatch = iota
	// DispatchByName reads a pair with the codec of its named field.
	DispatchByName
)

// Policy controls what Parse does with recoverable errors.
type Policy uint8

const (
	// PolicySkip logs recoverable errors and returns a nil record.
	PolicySkip Policy = iota
	// PolicyAbort returns every error.
	PolicyAbort
)

type Option func(*Codec)

func WithDelimiters(d DelimiterConfig) Option { return func(c *Codec) { c.delims = d } }

func WithDispatch(d Dispatch) Option { return func(c *Codec) { c.dispatch = d } }

func WithPolicy(p Policy) Option { return func(c *Codec) { c.policy = p } }

func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.log = l
		}
	}
}

// Codec reads and writes the composites of one schema. Every Parse
// builds a new record and the configuration never changes after New,
// so a Codec is safe for concurrent use as long as its field codecs
// are. The built-in field codecs are.
type Codec struct {
	schema   record.Schema
	codecs   []fieldcodec.Codec
	keys     fieldcodec.Text
	delims   DelimiterConfig
	tok      tokenizer.Config
	dispatch Dispatch
	policy   Policy
	log      *slog.Logger
}

// New builds a codec whose i-th field codec reads the i-th schema field.
func New(codecs []fieldcodec.Codec, schema record.Schema, opts ...Option) (*Codec, error) {
	if len(codecs) != schema.NumCols() {
		return nil, fmt.Errorf("%w: %d codecs for %d fields", ErrFieldCountMismatch, len(codecs), schema.NumCols())
	}
	for i, fc := range codecs {
		if fc == nil {
			return nil, fmt.Errorf("%w: nil codec for field %q", ErrFieldCountMismatch, schema.Cols[i].Name)
		}
	}
	c := &Codec{
		schema: schema,
		codecs: codecs,
		delims: DefaultDelimiters(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tok = c.delims.Tokenizer()
	if err := c.tok.Validate(); err != nil {
		return nil, fmt.Errorf("composite: delimiters: %w", err)
	}
	c.keys = fieldcodec.NewText(c.tok)
	return c, nil
}

func (c *Codec) Schema() record.Schema { return c.schema }

func (c *Codec) Delimiters() DelimiterConfig { return c.delims }

func (c *Codec) Policy() Policy { return c.policy }

// Parse decodes one composite. A nil text is NULL and yields a nil
// record. No partial record is ever returned: on error the record is
// nil. Under PolicySkip recoverable errors are logged and reported as
// (nil, nil).
func (c *Codec) Parse(text *string) (*record.Record, error) {
	if text == nil {
		return nil, nil
	}
	rec, err := c.parse(*text)
	if err != nil {
		if c.policy == PolicySkip && IsRecoverable(err) {
			c.log.Warn("composite: discarded unparseable value",
				"type", c.schema.Name, "text", clip(*text), "err", err)
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// ParseString is Parse for a non-NULL text.
func (c *Codec) ParseString(text string) (*record.Record, error) {
	return c.Parse(&text)
}

func (c *Codec) parse(text string) (*record.Record, error) {
	open, closing := string(c.delims.Open), string(c.delims.Close)
	if !strings.HasPrefix(text, open) {
		return nil, &MalformedError{Boundary: BoundaryOpen, Want: c.delims.Open, Text: text}
	}
	if len(text) < len(open)+len(closing) || !strings.HasSuffix(text, closing) {
		return nil, &MalformedError{Boundary: BoundaryClose, Want: c.delims.Close, Text: text}
	}
	inner := text[len(open) : len(text)-len(closing)]

	rec := record.New(len(c.codecs))
	seen := make([]bool, len(c.codecs))
	sc := tokenizer.NewScanner(c.tok, inner)
	for i := 0; sc.Next(); i++ {
		keyText, valText := sc.Pair()
		pos, v, err := c.parseField(i, keyText, valText)
		if err != nil {
			return nil, err
		}
		if seen[pos] {
			return nil, &FieldParseError{Index: i, Field: c.schema.Cols[pos].Name, Text: valText, Err: ErrDuplicateField}
		}
		seen[pos] = true
		if v != nil {
			rec.Set(c.schema.Cols[pos].Name, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// parseField returns the schema position of the pair's field and its
// coerced value, nil for NULL.
func (c *Codec) parseField(i int, keyText, valText string) (int, any, error) {
	k, err := c.keys.Parse(keyText)
	if err != nil {
		return 0, nil, &FieldParseError{Index: i, Field: keyText, Text: keyText, Err: err}
	}
	name, _ := k.(string)
	pos := c.schema.Index(name)
	if pos < 0 {
		return 0, nil, &record.UnknownFieldError{Schema: c.schema.Name, Field: name}
	}

	idx := i
	if c.dispatch == DispatchByName {
		idx = pos
	}
	if idx >= len(c.codecs) {
		return 0, nil, &FieldParseError{Index: i, Field: name, Text: valText, Err: ErrTooManyFields}
	}

	v, err := c.codecs[idx].Parse(valText)
	if err != nil {
		var unsupported *UnsupportedFieldTypeError
		if errors.As(err, &unsupported) {
			return 0, nil, err
		}
		return 0, nil, &FieldParseError{Index: i, Field: name, Text: valText, Err: err}
	}
	if v == nil {
		return pos, nil, nil
	}
	col := c.schema.Cols[pos]
	v, err = coerce(col, v)
	if err != nil {
		if errors.Is(err, ErrTypeMismatch) {
			return 0, nil, &FieldParseError{Index: i, Field: name, Text: valText, Err: err}
		}
		return 0, nil, err
	}
	return pos, v, nil
}

// coerce checks v against the declared type of col. Each TypeTag has
// its own case; only TypeUnsupported and unknown tag values fall
// through to the error.
func coerce(col record.Column, v any) (any, error) {
	var ok bool
	switch col.Type {
	case record.TypeBoolean:
		_, ok = v.(bool)
	case record.TypeTinyInt:
		_, ok = v.(int8)
	case record.TypeSmallInt:
		_, ok = v.(int16)
	case record.TypeInt:
		_, ok = v.(int32)
	case record.TypeBigInt:
		_, ok = v.(int64)
	case record.TypeFloat:
		_, ok = v.(float32)
	case record.TypeDouble:
		_, ok = v.(float64)
	case record.TypeTimestamp:
		_, ok = v.(time.Time)
	case record.TypeUUID, record.TypeTimeUUID:
		_, ok = v.(uuid.UUID)
	case record.TypeText, record.TypeVarchar:
		_, ok = v.(string)
	case record.TypeUDT:
		_, ok = v.(*record.Record)
	case record.TypeUnsupported:
		return nil, &UnsupportedFieldTypeError{Field: col.Name, Type: col.TypeName()}
	default:
		return nil, &UnsupportedFieldTypeError{Field: col.Name, Type: col.TypeName()}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s field %q got %T", ErrTypeMismatch, col.Type, col.Name, v)
	}
	return v, nil
}

// Format writes rec as composite text. Fields are written in record
// order; under DispatchByPosition the n-th present field is formatted
// with the n-th codec. Errors here mean the record does not fit the
// schema and are always returned.
func (c *Codec) Format(rec *record.Record) (string, error) {
	if rec == nil {
		return "", ErrNilRecord
	}
	var b strings.Builder
	b.WriteRune(c.delims.Open)
	for i, f := range rec.Fields() {
		idx := i
		if c.dispatch == DispatchByName {
			if idx = c.schema.Index(f.Name); idx < 0 {
				return "", &record.UnknownFieldError{Schema: c.schema.Name, Field: f.Name}
			}
		}
		if idx >= len(c.codecs) {
			return "", fmt.Errorf("%w: field %q at %d", ErrTooManyFields, f.Name, i)
		}
		key, err := c.keys.Format(f.Name)
		if err != nil {
			return "", fmt.Errorf("composite: format name %q: %w", f.Name, err)
		}
		val, err := c.codecs[idx].Format(f.Value)
		if err != nil {
			return "", fmt.Errorf("composite: format field %q: %w", f.Name, err)
		}
		if i > 0 {
			b.WriteRune(c.delims.Collection)
		}
		b.WriteString(key)
		b.WriteRune(c.delims.Map)
		b.WriteString(val)
	}
	b.WriteRune(c.delims.Close)
	return b.String(), nil
}
