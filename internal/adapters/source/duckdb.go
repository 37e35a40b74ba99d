package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/okian/courtside/internal/domain/failure"
	"github.com/okian/courtside/internal/domain/model"
)

// Supported file formats for DuckDBSource.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// DuckDBSource reads CSV or Parquet files through an in-process DuckDB.
// The path template may contain {season} and may be a glob.
type DuckDBSource struct {
	db     *sql.DB
	path   string
	format string
}

var _ Source = (*DuckDBSource)(nil)

// OpenDuckDB opens an in-memory DuckDB for reading files at path.
func OpenDuckDB(path, format string) (*DuckDBSource, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatParquet {
		return nil, failure.DataAcquisition("duckdb", fmt.Errorf("%w: format %q", ErrBadValue, format))
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, failure.DataAcquisition("duckdb", err)
	}
	return &DuckDBSource{db: db, path: path, format: format}, nil
}

// Name implements Source.
func (s *DuckDBSource) Name() string { return "duckdb" }

func (s *DuckDBSource) query(path string) string {
	reader := "read_csv_auto"
	if s.format == FormatParquet {
		reader = "read_parquet"
	}
	cols := make([]string, len(Columns))
	for i, c := range Columns {
		cols[i] = fmt.Sprintf("CAST(%s AS VARCHAR)", c)
	}
	return fmt.Sprintf("SELECT %s FROM %s(%s) WHERE CAST(season AS VARCHAR) = ?",
		strings.Join(cols, ", "), reader, quoteLiteral(path))
}

// Load implements Source.
func (s *DuckDBSource) Load(ctx context.Context, seasons []string) ([]model.Possession, error) {
	var out []model.Possession
	for _, season := range seasons {
		path := Expand(s.path, season)
		rows, err := queryPossessions(ctx, s.db, season, s.query(path), season)
		if err != nil {
			return nil, failure.DataAcquisition(s.Name(), fmt.Errorf("%s: %w", path, err))
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Close releases the database.
func (s *DuckDBSource) Close() error { return s.db.Close() }

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
