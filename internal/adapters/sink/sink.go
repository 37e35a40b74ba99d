// Package sink persists finished rating tables.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/courtside/internal/domain/rating"
)

// Supported encodings.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var (
	// ErrUnknownFormat is returned for an encoding other than csv or json.
	ErrUnknownFormat = errors.New("sink: unknown format")
	// ErrNilTable is returned when asked to write nothing.
	ErrNilTable = errors.New("sink: nil table")
)

// Sink writes one rating table. A table is written whole or not at all.
type Sink interface {
	Write(ctx context.Context, table *rating.Table) error
	Name() string
}

// Encode writes table to w in format.
func Encode(w io.Writer, format string, table *rating.Table) error {
	if table == nil {
		return ErrNilTable
	}
	switch format {
	case FormatCSV, "":
		return EncodeCSV(w, table)
	case FormatJSON:
		return EncodeJSON(w, table)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Expand fills {season} and {mode} in a path template. Several seasons
// render joined by "-".
func Expand(template string, table *rating.Table) string {
	return strings.NewReplacer(
		"{season}", strings.Join(table.Meta.Seasons, "-"),
		"{mode}", string(table.Meta.Mode),
	).Replace(template)
}

// Multi writes to every sink in order and stops at the first failure.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, table *rating.Table) error {
	for _, s := range m {
		if err := s.Write(ctx, table); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return nil
}

// Name implements Sink.
func (m Multi) Name() string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}
