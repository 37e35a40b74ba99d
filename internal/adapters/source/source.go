// Package source loads possession records for a set of seasons.
//
// Every source reads the same logical columns: home_poss, pts, a1..a5,
// h1..h5 and season. Errors of any kind are reported as
// failure.DataAcquisitionError and are never retried.
package source

import (
	"context"
	"strings"

	"github.com/okian/courtside/internal/domain/model"
)

// Source yields the full, ordered possession set of the given seasons.
// Records are returned season by season in the order the seasons are given,
// and in storage order within a season.
type Source interface {
	Load(ctx context.Context, seasons []string) ([]model.Possession, error)
	// Name identifies the source in logs and errors.
	Name() string
	Close() error
}

// Columns lists the logical possession columns in read order.
var Columns = []string{
	"home_poss", "pts",
	"a1", "a2", "a3", "a4", "a5",
	"h1", "h2", "h3", "h4", "h5",
	"season",
}

const seasonPlaceholder = "{season}"

// Expand substitutes season into a path template.
func Expand(template, season string) string {
	return strings.ReplaceAll(template, seasonPlaceholder, season)
}
