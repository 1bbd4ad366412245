// Package loader streams composite values, one per line, through a
// codec and writes each accepted value back out.
package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tuannm99/novaload/internal/composite"
	"github.com/tuannm99/novaload/internal/record"
)

type Output uint8

const (
	// OutputText re-formats each record as composite text.
	OutputText Output = iota
	// OutputJSON writes each record as a JSON object.
	OutputJSON
)

func ParseOutput(s string) (Output, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	}
	return 0, fmt.Errorf("loader: unknown output %q", s)
}

// Stats counts what a Run did with its input.
type Stats struct {
	Lines   int
	OK      int
	Nulls   int
	Skipped int
}

type Loader struct {
	Codec      *composite.Codec
	NullMarker string
	Output     Output
	Log        *slog.Logger
}

// LineError reports the input line that stopped a Run.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// Run reads lines from r until EOF. A NULL line is written back as the
// null marker. A line the codec discards is counted as skipped and
// produces no output. Under PolicySkip a line without its brackets is
// skipped too; any other codec error stops the run.
func (l *Loader) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var st Stats
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Lines++
		line := sc.Text()
		if line == "" {
			st.Skipped++
			continue
		}

		var text *string
		if line != l.NullMarker {
			text = &line
		}
		rec, err := l.Codec.Parse(text)
		if err != nil {
			if !l.skippable(err) {
				return st, &LineError{Line: st.Lines, Err: err}
			}
			st.Skipped++
			log.Warn("loader: skipped malformed line", "line", st.Lines, "err", err)
			continue
		}
		if rec == nil {
			if text == nil {
				st.Nulls++
				if _, err := fmt.Fprintln(bw, l.NullMarker); err != nil {
					return st, err
				}
				continue
			}
			st.Skipped++
			log.Debug("loader: skipped line", "line", st.Lines)
			continue
		}

		out, err := l.encode(rec)
		if err != nil {
			return st, &LineError{Line: st.Lines, Err: err}
		}
		if _, err := fmt.Fprintln(bw, out); err != nil {
			return st, err
		}
		st.OK++
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("loader: read input: %w", err)
	}
	return st, bw.Flush()
}

// skippable reports whether a codec error only spoils its own line.
// Unsupported field types are a schema fault and never skipped.
func (l *Loader) skippable(err error) bool {
	if l.Codec.Policy() != composite.PolicySkip {
		return false
	}
	var ue *composite.UnsupportedFieldTypeError
	if errors.As(err, &ue) {
		return false
	}
	var me *composite.MalformedError
	return errors.As(err, &me)
}

func (l *Loader) encode(rec *record.Record) (string, error) {
	switch l.Output {
	case OutputText:
		return l.Codec.Format(rec)
	case OutputJSON:
		b, err := json.Marshal(rec)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", errors.New("loader: unknown output")
}
