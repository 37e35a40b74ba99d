package synth

import (
	"gonum.org/v1/gonum/stat"

	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/rating"
)

// Recovery compares fitted player ratings with the planted impacts.
type Recovery struct {
	Offense float64 // Pearson correlation over players rated on offense
	Defense float64 // Pearson correlation over players rated on defense
	Players int
}

// Recover correlates a player-mode table with the league's truth. Ratings
// are only identified up to a shift, so correlation rather than distance
// is reported.
func (lg *League) Recover(table *rating.Table) Recovery {
	var offFit, offTrue, defFit, defTrue []float64
	for _, r := range table.Rows {
		imp, ok := lg.Truth[r.Column.Entity.ID]
		if !ok || r.Column.Entity.Kind != entity.KindPlayer {
			continue
		}
		switch r.Column.Role {
		case entity.RoleOffense:
			offFit = append(offFit, r.Rating)
			offTrue = append(offTrue, imp.Offense)
		case entity.RoleDefense:
			// A defensive column is -1 when on court, so its coefficient
			// estimates the points a defender takes away.
			defFit = append(defFit, r.Rating)
			defTrue = append(defTrue, imp.Defense)
		}
	}
	return Recovery{
		Offense: correlation(offFit, offTrue),
		Defense: correlation(defFit, defTrue),
		Players: len(offFit),
	}
}

func correlation(a, b []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	return stat.Correlation(a, b, nil)
}
