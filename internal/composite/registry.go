package composite

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tuannm99/novaload/internal/fieldcodec"
	"github.com/tuannm99/novaload/internal/record"
)

// Registry builds codecs for a set of named composite types. A field
// declared as frozen<name>, or just as name, of another registered type
// is read with that type's codec.
type Registry struct {
	mu        sync.Mutex
	opts      []Option
	fieldOpts []fieldcodec.Option
	delims    DelimiterConfig
	schemas   map[string]record.Schema
	codecs    map[string]*Codec
	building  map[string]bool
}

func NewRegistry(delims DelimiterConfig, fieldOpts []fieldcodec.Option, opts ...Option) *Registry {
	return &Registry{
		opts:      append([]Option{WithDelimiters(delims)}, opts...),
		fieldOpts: fieldOpts,
		delims:    delims,
		schemas:   make(map[string]record.Schema),
		codecs:    make(map[string]*Codec),
		building:  make(map[string]bool),
	}
}

// Define registers a schema under its name.
func (r *Registry) Define(s record.Schema) error {
	if s.Name == "" {
		return fmt.Errorf("composite: type without a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.schemas[s.Name]; dup {
		return fmt.Errorf("composite: type %q defined twice", s.Name)
	}
	r.schemas[s.Name] = s
	return nil
}

func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	return out
}

// Codec returns the codec of the named type, building it on first use.
func (r *Registry) Codec(name string) (*Codec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codec(name)
}

func (r *Registry) codec(name string) (*Codec, error) {
	if c, ok := r.codecs[name]; ok {
		return c, nil
	}
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("composite: unknown type %q", name)
	}
	if r.building[name] {
		return nil, fmt.Errorf("%w: %q", ErrTypeCycle, name)
	}
	r.building[name] = true
	defer delete(r.building, name)

	tok := r.delims.Tokenizer()
	cols := make([]record.Column, len(s.Cols))
	codecs := make([]fieldcodec.Codec, len(s.Cols))
	for i, col := range s.Cols {
		if ref := r.nestedName(col); ref != "" {
			inner, err := r.codec(ref)
			if err != nil {
				return nil, fmt.Errorf("composite: field %q of %q: %w", col.Name, name, err)
			}
			col.Type = record.TypeUDT
			codecs[i] = inner.Nested(true)
			cols[i] = col
			continue
		}
		if col.Type == record.TypeUDT {
			return nil, fmt.Errorf("composite: field %q of %q: nested type %q not found", col.Name, name, col.Declared)
		}
		fc, err := fieldcodec.ForType(col.Type, tok, r.fieldOpts...)
		if err != nil {
			// Kept as text so the unsupported type is reported when a
			// value for it is actually read.
			fc = fieldcodec.NewText(tok)
		}
		codecs[i] = fc
		cols[i] = col
	}

	resolved, err := record.NewSchema(s.Name, cols...)
	if err != nil {
		return nil, err
	}
	c, err := New(codecs, resolved, r.opts...)
	if err != nil {
		return nil, err
	}
	r.codecs[name] = c
	return c, nil
}

// nestedName returns the referenced type of a nested field, or "".
func (r *Registry) nestedName(col record.Column) string {
	d := strings.TrimSpace(col.Declared)
	if strings.HasPrefix(strings.ToLower(d), "frozen<") && strings.HasSuffix(d, ">") {
		return strings.TrimSpace(d[len("frozen<") : len(d)-1])
	}
	if col.Type == record.TypeUnsupported {
		if _, ok := r.schemas[d]; ok {
			return d
		}
	}
	return ""
}
