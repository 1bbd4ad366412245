package record

import (
	"errors"
	"fmt"
	"strings"
)

// TypeTag identifies the declared kind of a composite field.
type TypeTag uint8

const (
	TypeUnsupported TypeTag = iota
	TypeBoolean
	TypeTinyInt
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeFloat
	TypeDouble
	TypeTimestamp
	TypeUUID
	TypeTimeUUID
	TypeText
	TypeVarchar
	TypeUDT // nested composite

	numTypeTags
)

var typeNames = [numTypeTags]string{
	TypeUnsupported: "unsupported",
	TypeBoolean:     "boolean",
	TypeTinyInt:     "tinyint",
	TypeSmallInt:    "smallint",
	TypeInt:         "int",
	TypeBigInt:      "bigint",
	TypeFloat:       "float",
	TypeDouble:      "double",
	TypeTimestamp:   "timestamp",
	TypeUUID:        "uuid",
	TypeTimeUUID:    "timeuuid",
	TypeText:        "text",
	TypeVarchar:     "varchar",
	TypeUDT:         "udt",
}

func (t TypeTag) String() string {
	if t < numTypeTags {
		return typeNames[t]
	}
	return fmt.Sprintf("TypeTag(%d)", uint8(t))
}

// Valid reports whether t is a known tag other than TypeUnsupported.
func (t TypeTag) Valid() bool { return t > TypeUnsupported && t < numTypeTags }

// Tags returns every supported tag in declaration order.
func Tags() []TypeTag {
	out := make([]TypeTag, 0, numTypeTags-1)
	for t := TypeBoolean; t < numTypeTags; t++ {
		out = append(out, t)
	}
	return out
}

// ParseTypeTag maps a declared type name to its tag. Names are matched
// case-insensitively; "frozen<x>" is a nested composite. Anything else
// yields TypeUnsupported.
func ParseTypeTag(name string) TypeTag {
	n := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(n, "frozen<") && strings.HasSuffix(n, ">") {
		return TypeUDT
	}
	switch n {
	case "bool":
		return TypeBoolean
	case "int8":
		return TypeTinyInt
	case "int16":
		return TypeSmallInt
	case "integer", "int32":
		return TypeInt
	case "int64", "counter":
		return TypeBigInt
	case "string":
		return TypeText
	}
	for t := TypeBoolean; t < numTypeTags; t++ {
		if typeNames[t] == n {
			return t
		}
	}
	return TypeUnsupported
}

var (
	ErrEmptyColumnName     = errors.New("record: empty column name")
	ErrDuplicateColumnName = errors.New("record: duplicate column name")
)

type Column struct {
	Name string  `json:"name"`
	Type TypeTag `json:"type"`
	// Declared keeps the type name as written, e.g. "frozen<address>".
	Declared string `json:"declared,omitempty"`
}

// TypeName is the declared name when present, otherwise the tag name.
func (c Column) TypeName() string {
	if c.Declared != "" {
		return c.Declared
	}
	return c.Type.String()
}

// Schema is the ordered field list of one composite type. It must not
// be modified after NewSchema returns it.
type Schema struct {
	Name  string   `json:"name"`
	Cols  []Column `json:"columns"`
	index map[string]int
}

func NewSchema(name string, cols ...Column) (Schema, error) {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return Schema{}, fmt.Errorf("%w at position %d", ErrEmptyColumnName, i)
		}
		if _, dup := idx[c.Name]; dup {
			return Schema{}, fmt.Errorf("%w %q", ErrDuplicateColumnName, c.Name)
		}
		idx[c.Name] = i
	}
	return Schema{Name: name, Cols: cols, index: idx}, nil
}

func (s Schema) NumCols() int { return len(s.Cols) }

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	if s.index != nil {
		if i, ok := s.index[name]; ok {
			return i
		}
		return -1
	}
	for i, c := range s.Cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FieldType returns the declared tag of the named column.
func (s Schema) FieldType(name string) (TypeTag, error) {
	c, err := s.Column(name)
	if err != nil {
		return TypeUnsupported, err
	}
	return c.Type, nil
}

func (s Schema) Column(name string) (Column, error) {
	i := s.Index(name)
	if i < 0 {
		return Column{}, &UnknownFieldError{Schema: s.Name, Field: name}
	}
	return s.Cols[i], nil
}

// UnknownFieldError reports a field name the schema does not declare.
type UnknownFieldError struct {
	Schema string
	Field  string
}

func (e *UnknownFieldError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("record: unknown field %q", e.Field)
	}
	return fmt.Sprintf("record: unknown field %q in type %q", e.Field, e.Schema)
}
