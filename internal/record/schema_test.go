package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTestSchema builds a simple schema used across tests.
func makeTestSchema(t *testing.T) Schema {
	t.Helper()
	s, err := NewSchema("person",
		Column{Name: "id", Type: TypeInt},
		Column{Name: "name", Type: TypeText},
		Column{Name: "born", Type: TypeTimestamp},
	)
	require.NoError(t, err)
	return s
}

func TestSchema_Lookup(t *testing.T) {
	s := makeTestSchema(t)

	require.Equal(t, 3, s.NumCols())
	require.Equal(t, 1, s.Index("name"))
	require.Equal(t, -1, s.Index("missing"))

	tag, err := s.FieldType("born")
	require.NoError(t, err)
	require.Equal(t, TypeTimestamp, tag)

	_, err = s.FieldType("missing")
	var ue *UnknownFieldError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "missing", ue.Field)
	assert.Equal(t, "person", ue.Schema)
}

func TestSchema_IndexWithoutConstructor(t *testing.T) {
	s := Schema{Cols: []Column{{Name: "a", Type: TypeInt}, {Name: "b", Type: TypeText}}}
	require.Equal(t, 1, s.Index("b"))
	require.Equal(t, -1, s.Index("c"))
}

func TestNewSchema_Rejects(t *testing.T) {
	_, err := NewSchema("t", Column{Name: "a"}, Column{Name: "a"})
	require.ErrorIs(t, err, ErrDuplicateColumnName)

	_, err = NewSchema("t", Column{Name: ""})
	require.ErrorIs(t, err, ErrEmptyColumnName)
}

func TestParseTypeTag(t *testing.T) {
	cases := map[string]TypeTag{
		"boolean":         TypeBoolean,
		"BOOL":            TypeBoolean,
		"tinyint":         TypeTinyInt,
		"smallint":        TypeSmallInt,
		"int":             TypeInt,
		"bigint":          TypeBigInt,
		"float":           TypeFloat,
		"double":          TypeDouble,
		" Timestamp ":     TypeTimestamp,
		"uuid":            TypeUUID,
		"timeuuid":        TypeTimeUUID,
		"text":            TypeText,
		"varchar":         TypeVarchar,
		"frozen<address>": TypeUDT,
		"blob":            TypeUnsupported,
		"list<int>":       TypeUnsupported,
		"unsupported":     TypeUnsupported,
	}
	for name, want := range cases {
		require.Equal(t, want, ParseTypeTag(name), name)
	}
}

func TestTypeTag_String(t *testing.T) {
	for _, tag := range Tags() {
		require.True(t, tag.Valid())
		require.Equal(t, tag, ParseTypeTag(tag.String()), tag.String())
	}
	require.False(t, TypeUnsupported.Valid())
	require.False(t, TypeTag(200).Valid())
	require.Equal(t, "TypeTag(200)", TypeTag(200).String())
}

func TestColumn_TypeName(t *testing.T) {
	require.Equal(t, "int", Column{Type: TypeInt}.TypeName())
	require.Equal(t, "blob", Column{Type: TypeUnsupported, Declared: "blob"}.TypeName())
}
