package novaload

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novaload/internal/composite"
)

func TestNewCodec(t *testing.T) {
	s, err := NewSchema("pair",
		Column{Name: "a", Type: ParseTypeTag("int")},
		Column{Name: "b", Type: ParseTypeTag("text")},
	)
	require.NoError(t, err)

	c, err := NewCodec(s, composite.DefaultDelimiters())
	require.NoError(t, err)

	rec, err := c.ParseString("{a=5, b=hello}")
	require.NoError(t, err)
	out, err := c.Format(rec)
	require.NoError(t, err)
	require.Equal(t, "{a=5,b=hello}", out)

	_, err = NewCodec(Schema{}, composite.DefaultDelimiters())
	require.Error(t, err)
}
