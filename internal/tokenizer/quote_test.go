package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNeedsQuote(t *testing.T) {
	c := DefaultConfig()
	for s, want := range map[string]bool{
		"":        true,
		"abc":     false,
		"a b":     false,
		" a":      true,
		"a ":      true,
		"a,b":     true,
		"k=v":     true,
		`say "x"`: true,
		`a\b`:     true,
		"{x}":     true,
		"héllo":   false,
	} {
		require.Equal(t, want, c.NeedsQuote(s), "%q", s)
	}
}

func TestQuoteUnquote(t *testing.T) {
	c := DefaultConfig()
	for _, s := range []string{"", "plain", "a,b", `say "hi"`, `back\slash`, " padded ", "{x=1,y=2}"} {
		q := c.QuoteText(s)
		require.True(t, c.IsQuoted(q), q)

		got, quoted, err := c.Unquote(q)
		require.NoError(t, err)
		require.True(t, quoted)
		require.Equal(t, s, got)
	}
}

func TestQuote_Escapes(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, `"a\"b"`, c.QuoteText(`a"b`))
	require.Equal(t, `"a\\b"`, c.QuoteText(`a\b`))
	require.Equal(t, "plain", c.QuoteIfNeeded("plain"))
	require.Equal(t, `"a,b"`, c.QuoteIfNeeded("a,b"))
}

func TestUnquote(t *testing.T) {
	c := DefaultConfig()

	got, quoted, err := c.Unquote("plain")
	require.NoError(t, err)
	require.False(t, quoted)
	require.Equal(t, "plain", got)

	got, quoted, err = c.Unquote(`x\,y`)
	require.NoError(t, err)
	require.False(t, quoted)
	require.Equal(t, "x,y", got)

	_, _, err = c.Unquote(`"open`)
	require.ErrorIs(t, err, ErrUnterminatedQuote)

	_, _, err = c.Unquote(`tail\`)
	require.ErrorIs(t, err, ErrDanglingEscape)
}

func TestIsQuoted(t *testing.T) {
	c := DefaultConfig()
	require.True(t, c.IsQuoted(`""`))
	require.True(t, c.IsQuoted(`"abc"`))
	require.False(t, c.IsQuoted(`"`))
	require.False(t, c.IsQuoted(`abc`))
	require.False(t, c.IsQuoted(`"abc\"`))
	require.True(t, c.IsQuoted(`"abc\\"`))
}
