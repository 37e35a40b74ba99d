package source

import (
	"context"
	"fmt"

	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/failure"
)

// Open builds the source cfg describes. Callers must Close it.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case "", "csv":
		return NewCSVSource(cfg.Path), nil
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN, cfg.Table)
	case "duckdb":
		return OpenDuckDB(cfg.Path, cfg.Format)
	default:
		return nil, failure.DataAcquisition(cfg.Kind, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind))
	}
}
