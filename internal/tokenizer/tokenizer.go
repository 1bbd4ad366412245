// Package tokenizer splits delimited key/value text, such as the inside
// of a composite value, into ordered pairs. It is quote, escape and
// bracket aware and can keep quotes and escapes in the output so that
// the consumer of each value decides how to resolve them.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrUnterminatedQuote = errors.New("tokenizer: unterminated quote")
	ErrUnbalanced        = errors.New("tokenizer: unbalanced brackets")
	ErrMissingSeparator  = errors.New("tokenizer: missing field separator")
	ErrExtraSeparator    = errors.New("tokenizer: more than one field separator")
	ErrEmptyRecord       = errors.New("tokenizer: empty record")
	ErrDanglingEscape    = errors.New("tokenizer: escape at end of input")
)

// SyntaxError carries the byte offset in the scanned text where
// tokenizing stopped.
type SyntaxError struct {
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

type Config struct {
	RecordSep rune
	FieldSep  rune
	Quote     rune
	Escape    rune
	// Open and Close, when non-zero, make separators inside nested
	// brackets non-structural.
	Open  rune
	Close rune
	// KeepQuotes leaves quote marks and escape sequences in the output.
	KeepQuotes bool
}

func DefaultConfig() Config {
	return Config{
		RecordSep:  ',',
		FieldSep:   '=',
		Quote:      '"',
		Escape:     '\\',
		Open:       '{',
		Close:      '}',
		KeepQuotes: true,
	}
}

// Validate rejects configurations whose structural characters collide.
func (c Config) Validate() error {
	seen := map[rune]string{}
	for _, p := range []struct {
		name string
		r    rune
	}{
		{"record separator", c.RecordSep},
		{"field separator", c.FieldSep},
		{"quote", c.Quote},
		{"escape", c.Escape},
		{"open bracket", c.Open},
		{"close bracket", c.Close},
	} {
		if p.r == 0 {
			if p.name == "open bracket" || p.name == "close bracket" {
				continue
			}
			return fmt.Errorf("tokenizer: %s not set", p.name)
		}
		if other, dup := seen[p.r]; dup {
			return fmt.Errorf("tokenizer: %s and %s are both %q", other, p.name, p.r)
		}
		seen[p.r] = p.name
	}
	if (c.Open == 0) != (c.Close == 0) {
		return fmt.Errorf("tokenizer: open and close brackets must be set together")
	}
	return nil
}

func (c Config) structural(r rune) bool {
	return r == c.RecordSep || r == c.FieldSep || r == c.Quote || r == c.Escape ||
		(c.Open != 0 && (r == c.Open || r == c.Close))
}

// Scanner walks the pairs of one text in a single pass. It is not
// restartable: once Next returns false it keeps returning false.
type Scanner struct {
	cfg  Config
	text string
	pos  int
	done bool
	key  string
	val  string
	err  error
}

func NewScanner(cfg Config, text string) *Scanner {
	return &Scanner{cfg: cfg, text: text}
}

// Next advances to the next pair.
func (s *Scanner) Next() bool {
	if s.done {
		return false
	}
	if s.pos == 0 && strings.TrimSpace(s.text) == "" {
		s.done = true
		return false
	}
	if s.pos > len(s.text) {
		s.done = true
		return false
	}
	k, v, next, err := s.scanRecord(s.pos)
	if err != nil {
		s.err = err
		s.done = true
		return false
	}
	s.key, s.val = k, v
	s.pos = next
	return true
}

func (s *Scanner) Pair() (key, value string) { return s.key, s.val }

func (s *Scanner) Err() error { return s.err }

// All drains the scanner into a slice.
func (s *Scanner) All() ([][2]string, error) {
	var out [][2]string
	for s.Next() {
		k, v := s.Pair()
		out = append(out, [2]string{k, v})
	}
	return out, s.Err()
}

// Split tokenizes text in one call.
func Split(cfg Config, text string) ([][2]string, error) {
	return NewScanner(cfg, text).All()
}

// scanRecord reads one key/value record starting at start and returns
// the offset just past its record separator (len(text)+1 at the end).
func (s *Scanner) scanRecord(start int) (string, string, int, error) {
	c := s.cfg
	var (
		fields   [2]token
		field    int
		depth    int
		inQuote  bool
		escaping bool
	)
	fail := func(off int, err error) (string, string, int, error) {
		return "", "", 0, &SyntaxError{Offset: off, Err: err}
	}

	i := start
	for i < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[i:])
		off := i
		i += size
		f := &fields[field]

		switch {
		case escaping:
			escaping = false
			if c.KeepQuotes {
				f.write(c.Escape, true)
			}
			f.write(r, true)
		case r == c.Escape:
			escaping = true
		case inQuote:
			if r == c.Quote {
				inQuote = false
				if !c.KeepQuotes {
					continue
				}
			}
			f.write(r, true)
		case r == c.Quote:
			inQuote = true
			if c.KeepQuotes {
				f.write(r, true)
			} else {
				f.mark()
			}
		case c.Open != 0 && r == c.Open:
			depth++
			f.write(r, true)
		case c.Open != 0 && r == c.Close:
			depth--
			if depth < 0 {
				return fail(off, ErrUnbalanced)
			}
			f.write(r, true)
		case depth == 0 && r == c.RecordSep:
			return finish(&fields, field, off, i)
		case depth == 0 && r == c.FieldSep:
			if field == 1 {
				return fail(off, ErrExtraSeparator)
			}
			field = 1
		default:
			f.write(r, !unicode.IsSpace(r))
		}
	}

	switch {
	case escaping:
		return fail(len(s.text), ErrDanglingEscape)
	case inQuote:
		return fail(len(s.text), ErrUnterminatedQuote)
	case depth != 0:
		return fail(len(s.text), ErrUnbalanced)
	}
	return finish(&fields, field, len(s.text), len(s.text)+1)
}

func finish(fields *[2]token, field, off, next int) (string, string, int, error) {
	if field == 0 {
		if fields[0].empty() {
			return "", "", 0, &SyntaxError{Offset: off, Err: ErrEmptyRecord}
		}
		return "", "", 0, &SyntaxError{Offset: off, Err: ErrMissingSeparator}
	}
	return fields[0].String(), fields[1].String(), next, nil
}

// token accumulates one raw field. Whitespace outside quotes and
// escapes is trimmed from both ends; lo and hi bound the bytes that
// must survive trimming.
type token struct {
	b      strings.Builder
	lo, hi int
	solid  bool
}

func (t *token) write(r rune, solid bool) {
	if solid && !t.solid {
		t.lo = t.b.Len()
		t.solid = true
	}
	t.b.WriteRune(r)
	if solid {
		t.hi = t.b.Len()
	}
}

// mark records a zero-width solid position, e.g. an opening quote
// that is dropped from the output.
func (t *token) mark() {
	if !t.solid {
		t.lo = t.b.Len()
		t.solid = true
	}
	t.hi = t.b.Len()
}

func (t *token) empty() bool { return !t.solid }

func (t *token) String() string {
	if !t.solid {
		return ""
	}
	return t.b.String()[t.lo:t.hi]
}
