// Package repository keeps finished rating tables for reading.
package repository

import (
	"context"

	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/internal/domain/types"
)

// Query narrows a ranked read.
type Query struct {
	Limit          int // rows to return, must be positive
	MinAppearances int // display floor, 0 keeps every row
}

// Store provides read/write access to finished rating tables.
type Store interface {
	// Put publishes table under name, replacing any earlier table of that name.
	Put(ctx context.Context, name string, table *rating.Table) error

	// Tables lists stored tables ordered by name.
	Tables(ctx context.Context) []types.TableInfo

	// Top returns the best rows of a table, highest rating first.
	// Returns ErrTableNotFound if the table is unknown.
	Top(ctx context.Context, name string, q Query) ([]types.Entry, error)

	// Rank returns one row of a table by label.
	// Returns ErrNotFound if the label is unknown.
	Rank(ctx context.Context, name, label string) (types.Entry, error)

	// Count returns the number of stored tables.
	Count(ctx context.Context) int
}
