package tokenizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Pairs(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want [][2]string
	}{
		{"simple", "a=5,b=hello", [][2]string{{"a", "5"}, {"b", "hello"}}},
		{"spaces trimmed", " a = 5 , b=hello world ", [][2]string{{"a", "5"}, {"b", "hello world"}}},
		{"quotes kept", `a="x,y", b=2`, [][2]string{{"a", `"x,y"`}, {"b", "2"}}},
		{"space inside quotes", `a=" x "`, [][2]string{{"a", `" x "`}}},
		{"escape kept", `a=x\,y`, [][2]string{{"a", `x\,y`}}},
		{"escaped quote", `a="say \"hi\""`, [][2]string{{"a", `"say \"hi\""`}}},
		{"nested", "p={x=1,y=2},q=3", [][2]string{{"p", "{x=1,y=2}"}, {"q", "3"}}},
		{"deep nested", "p={x={z=1},y=2}", [][2]string{{"p", "{x={z=1},y=2}"}}},
		{"empty value", "a=,b=1", [][2]string{{"a", ""}, {"b", "1"}}},
		{"separator in quotes", `a="k=v"`, [][2]string{{"a", `"k=v"`}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Split(DefaultConfig(), tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   "} {
		got, err := Split(DefaultConfig(), in)
		require.NoError(t, err)
		require.Empty(t, got)
	}
}

func TestSplit_Errors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"a=1,,b=2", ErrEmptyRecord},
		{"a=1,", ErrEmptyRecord},
		{"a", ErrMissingSeparator},
		{"a=1=2", ErrExtraSeparator},
		{`a="x`, ErrUnterminatedQuote},
		{"a={x=1", ErrUnbalanced},
		{"a=}", ErrUnbalanced},
		{`a=x\`, ErrDanglingEscape},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := Split(DefaultConfig(), tc.in)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.want)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
		})
	}
}

func TestSplit_ErrorOffset(t *testing.T) {
	_, err := Split(DefaultConfig(), "a=1,,b=2")
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 4, se.Offset)
}

func TestScanner_NotRestartable(t *testing.T) {
	s := NewScanner(DefaultConfig(), "a=1")
	require.True(t, s.Next())
	k, v := s.Pair()
	require.Equal(t, "a", k)
	require.Equal(t, "1", v)

	require.False(t, s.Next())
	require.False(t, s.Next())
	require.NoError(t, s.Err())
}

func TestScanner_StopsAtError(t *testing.T) {
	s := NewScanner(DefaultConfig(), "a=1,b,c=3")
	require.True(t, s.Next())
	require.False(t, s.Next())
	require.ErrorIs(t, s.Err(), ErrMissingSeparator)
	require.False(t, s.Next())
}

func TestSplit_DropQuotes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepQuotes = false

	got, err := Split(cfg, `a=" x ",b=x\,y,c=""`)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"a", " x "}, {"b", "x,y"}, {"c", ""}}, got)
}

func TestSplit_CustomDelimiters(t *testing.T) {
	cfg := Config{RecordSep: ';', FieldSep: ':', Quote: '\'', Escape: '\\', Open: '[', Close: ']', KeepQuotes: true}
	require.NoError(t, cfg.Validate())

	got, err := Split(cfg, "a:1;b:'x;y';c:[k:v;w:z]")
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"a", "1"}, {"b", "'x;y'"}, {"c", "[k:v;w:z]"}}, got)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.FieldSep = cfg.RecordSep
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Quote = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Close = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Open, cfg.Close = 0, 0
	require.NoError(t, cfg.Validate())
}
