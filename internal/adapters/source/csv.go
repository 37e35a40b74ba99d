package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/courtside/internal/domain/failure"
	"github.com/okian/courtside/internal/domain/model"
)

// CSVSource reads one CSV file per season. The path template may contain
// {season}; rows whose season column names another season are skipped so
// one file can also hold several seasons.
type CSVSource struct {
	path string
}

var _ Source = (*CSVSource)(nil)

// NewCSVSource returns a source reading files named by the path template.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Name implements Source.
func (s *CSVSource) Name() string { return "csv" }

// Close implements Source. Files are closed after every read.
func (s *CSVSource) Close() error { return nil }

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context, seasons []string) ([]model.Possession, error) {
	var out []model.Possession
	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return nil, failure.DataAcquisition(s.Name(), err)
		}
		path := Expand(s.path, season)
		f, err := os.Open(path)
		if err != nil {
			return nil, failure.DataAcquisition(s.Name(), err)
		}
		rows, err := ReadCSV(f, season)
		_ = f.Close()
		if err != nil {
			return nil, failure.DataAcquisition(s.Name(), fmt.Errorf("%s: %w", path, err))
		}
		out = append(out, rows...)
	}
	return out, nil
}

// ReadCSV parses possessions from r, keeping rows of season. Columns are
// matched by header name, so extra columns and any column order are fine.
func ReadCSV(r io.Reader, season string) ([]model.Possession, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, err
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	idx := make([]int, len(Columns))
	for i, c := range Columns {
		j, ok := pos[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		idx[i] = j
	}

	var out []model.Possession
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var raw rawRecord
		for i, j := range idx {
			raw[i] = rec[j]
		}
		p, err := raw.parse(season)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if keep(p, season) {
			out = append(out, p)
		}
	}
}
