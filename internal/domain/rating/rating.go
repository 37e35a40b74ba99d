// Package rating turns fitted coefficients into per-entity rating tables.
package rating

import (
	"slices"
	"strings"

	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/failure"
)

// Scale converts a per-possession coefficient into points per 100 possessions.
const Scale = 100

// Row is one rated column.
type Row struct {
	Column      entity.Column
	Label       string
	Rating      float64
	Appearances int
}

// Meta describes the run a table came from.
type Meta struct {
	RunID     string
	Mode      entity.Mode
	Seasons   []string
	Alpha     float64
	Intercept float64
}

// Table is the output of one run: one row per surviving column, in column
// order unless sorted explicitly.
type Table struct {
	Meta Meta
	Rows []Row
}

// Report builds a table with one row per column of idx. coef must hold one
// coefficient per column.
func Report(idx *entity.Index, coef []float64) (*Table, error) {
	if len(coef) != idx.Len() {
		return nil, failure.InvalidInput("index has %d columns but %d coefficients were given", idx.Len(), len(coef))
	}
	t := &Table{
		Meta: Meta{Mode: idx.Mode()},
		Rows: make([]Row, idx.Len()),
	}
	for i := range t.Rows {
		c := idx.At(i)
		t.Rows[i] = Row{
			Column:      c,
			Label:       c.Label(),
			Rating:      coef[i] * Scale,
			Appearances: idx.Appearances(c.Entity),
		}
	}
	return t, nil
}

// Header returns the column names of the flat table encoding.
func (t *Table) Header() []string {
	if t.Meta.Mode == entity.ModeGroup {
		return []string{"Group", "APM", "Appearances"}
	}
	return []string{"Player", "RAPM", "Appearances"}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// WithMinAppearances returns a copy holding only rows whose entity appeared
// at least n times. Ratings are not refit. n <= 0 keeps every row.
func (t *Table) WithMinAppearances(n int) *Table {
	out := &Table{Meta: t.Meta, Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if n > 0 && r.Appearances < n {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Relabel returns a copy whose labels are produced by fn.
func (t *Table) Relabel(fn func(entity.Column) string) *Table {
	out := &Table{Meta: t.Meta, Rows: slices.Clone(t.Rows)}
	for i := range out.Rows {
		out.Rows[i].Label = fn(out.Rows[i].Column)
	}
	return out
}

// Ranked returns the rows ordered by rating, highest first. Ties are
// broken by label so the order is total.
func (t *Table) Ranked() []Row {
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		switch {
		case a.Rating > b.Rating:
			return -1
		case a.Rating < b.Rating:
			return 1
		default:
			return strings.Compare(a.Label, b.Label)
		}
	})
	return rows
}
