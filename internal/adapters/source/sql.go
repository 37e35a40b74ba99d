package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okian/courtside/internal/domain/model"
)

// queryPossessions runs query, which must select Columns in order, and
// parses every row. NULL ids are missing slots.
func queryPossessions(ctx context.Context, db *sql.DB, season, query string, args ...any) ([]model.Possession, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var (
		out  []model.Possession
		cols [13]sql.NullString
		dest = make([]any, len(cols))
	)
	for i := range cols {
		dest[i] = &cols[i]
	}
	for n := 1; rows.Next(); n++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		var raw rawRecord
		for i, c := range cols {
			if c.Valid {
				raw[i] = c.String
			}
		}
		p, err := raw.parse(season)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		if keep(p, season) {
			out = append(out, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
