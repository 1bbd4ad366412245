package composite

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novaload/internal/fieldcodec"
	"github.com/tuannm99/novaload/internal/record"
)

// Nested exposes c as the field codec of an enclosing composite. With
// quote set the formatted value is wrapped in the quote character, as
// loaders that split without bracket tracking expect. Parse accepts
// both quoted and bare nested values and never applies the skip
// policy: failures go to the enclosing codec.
func (c *Codec) Nested(quote bool) fieldcodec.Codec {
	return nested{c: c, quote: quote}
}

type nested struct {
	c     *Codec
	quote bool
}

func (n nested) Parse(text string) (any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, nil
	}
	if n.c.tok.IsQuoted(s) {
		u, _, err := n.c.tok.Unquote(s)
		if err != nil {
			return nil, err
		}
		s = u
	}
	rec, err := n.c.parse(s)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (n nested) Format(v any) (string, error) {
	rec, ok := v.(*record.Record)
	if !ok {
		return "", fmt.Errorf("%w: composite codec given %T", fieldcodec.ErrWrongKind, v)
	}
	s, err := n.c.Format(rec)
	if err != nil {
		return "", err
	}
	if n.quote {
		return n.c.tok.QuoteText(s), nil
	}
	return s, nil
}
