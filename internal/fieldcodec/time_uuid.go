package fieldcodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuannm99/novaload/internal/tokenizer"
)

// DefaultTimestampLayouts are tried in order when parsing timestamps.
// Layouts without a zone are read as UTC. The first one is also the
// output layout.
var DefaultTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

var ErrNotTimeUUID = errors.New("fieldcodec: uuid is not time based")

// Timestamp reads any of its layouts and writes the first, in UTC.
type Timestamp struct {
	q       tokenizer.Config
	layouts []string
}

func (c Timestamp) Parse(text string) (any, error) {
	s, ok, err := scalar(c.q, "timestamp", text)
	if !ok {
		return nil, err
	}
	for _, layout := range c.layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return nil, &ParseError{Kind: "timestamp", Text: text}
}

func (c Timestamp) Format(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", wrongKind("timestamp", v)
	}
	// a ':' map delimiter would split the clock part
	return c.q.QuoteIfNeeded(t.UTC().Format(c.layouts[0])), nil
}

// UUID parses canonical uuids. With timeBased set only version 1
// values are accepted, matching a timeuuid column.
type UUID struct {
	q         tokenizer.Config
	timeBased bool
}

func (c UUID) kind() string {
	if c.timeBased {
		return "timeuuid"
	}
	return "uuid"
}

func (c UUID) Parse(text string) (any, error) {
	s, ok, err := scalar(c.q, c.kind(), text)
	if !ok {
		return nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, &ParseError{Kind: c.kind(), Text: text, Err: err}
	}
	if c.timeBased && id.Version() != 1 {
		return nil, &ParseError{Kind: c.kind(), Text: text, Err: ErrNotTimeUUID}
	}
	return id, nil
}

func (c UUID) Format(v any) (string, error) {
	id, ok := v.(uuid.UUID)
	if !ok {
		return "", wrongKind(c.kind(), v)
	}
	if c.timeBased && id.Version() != 1 {
		return "", fmt.Errorf("%w: %s", ErrNotTimeUUID, id)
	}
	return c.q.QuoteIfNeeded(id.String()), nil
}
