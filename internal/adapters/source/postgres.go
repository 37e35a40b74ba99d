package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/okian/courtside/internal/domain/failure"
	"github.com/okian/courtside/internal/domain/model"
)

// PostgresSource queries a matchups table one season at a time.
type PostgresSource struct {
	db    *sql.DB
	query string
}

var _ Source = (*PostgresSource)(nil)

// OpenPostgres connects with lib/pq and checks the connection.
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, failure.DataAcquisition("postgres", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, failure.DataAcquisition("postgres", err)
	}
	return NewPostgresSource(db, table), nil
}

// NewPostgresSource wraps an open database. table may be schema qualified.
func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, query: postgresQuery(table)}
}

func postgresQuery(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	cols := make([]string, len(Columns))
	for i, c := range Columns {
		cols[i] = pq.QuoteIdentifier(c) + "::text"
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE season::text = $1",
		strings.Join(cols, ", "), strings.Join(parts, "."))
}

// Name implements Source.
func (s *PostgresSource) Name() string { return "postgres" }

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context, seasons []string) ([]model.Possession, error) {
	var out []model.Possession
	for _, season := range seasons {
		rows, err := queryPossessions(ctx, s.db, season, s.query, season)
		if err != nil {
			return nil, failure.DataAcquisition(s.Name(), fmt.Errorf("season %s: %w", season, err))
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error { return s.db.Close() }
