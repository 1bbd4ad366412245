package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NeedsQuote reports whether s must be quoted to survive a round trip
// through a Scanner with configuration c.
func (c Config) NeedsQuote(s string) bool {
	if s == "" {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return true
	}
	return strings.ContainsFunc(s, c.structural)
}

// QuoteText wraps s in the quote character, escaping quote and escape
// characters inside it.
func (c Config) QuoteText(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteRune(c.Quote)
	for _, r := range s {
		if r == c.Quote || r == c.Escape {
			b.WriteRune(c.Escape)
		}
		b.WriteRune(r)
	}
	b.WriteRune(c.Quote)
	return b.String()
}

// QuoteIfNeeded quotes s only when NeedsQuote says so.
func (c Config) QuoteIfNeeded(s string) string {
	if c.NeedsQuote(s) {
		return c.QuoteText(s)
	}
	return s
}

// Unquote resolves a raw token produced with KeepQuotes. Quoted
// sections lose their quote marks and every escape sequence is
// replaced by the escaped character. The second result is false when
// s had no quoted section at all.
func (c Config) Unquote(s string) (string, bool, error) {
	if !strings.ContainsRune(s, c.Quote) && !strings.ContainsRune(s, c.Escape) {
		return s, false, nil
	}
	var (
		b        strings.Builder
		quoted   bool
		inQuote  bool
		escaping bool
	)
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case escaping:
			escaping = false
			b.WriteRune(r)
		case r == c.Escape:
			escaping = true
		case r == c.Quote:
			inQuote = !inQuote
			quoted = true
		default:
			b.WriteRune(r)
		}
	}
	if escaping {
		return "", quoted, &SyntaxError{Offset: len(s), Err: ErrDanglingEscape}
	}
	if inQuote {
		return "", quoted, &SyntaxError{Offset: len(s), Err: ErrUnterminatedQuote}
	}
	return b.String(), quoted, nil
}

// IsQuoted reports whether s is a single quoted token, e.g. "a,b".
func (c Config) IsQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, n := utf8.DecodeLastRuneInString(s)
	if first != c.Quote || last != c.Quote {
		return false
	}
	// the closing quote must not itself be escaped
	esc := 0
	for i := len(s) - n - 1; i >= 0 && rune(s[i]) == c.Escape; i-- {
		esc++
	}
	return esc%2 == 0
}
