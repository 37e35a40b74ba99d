package design

import (
	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/failure"
	"github.com/okian/courtside/internal/domain/model"
)

// Build writes one row per possession: every surviving column of an
// offensive entity gets its offensive sign, every surviving column of a
// defensive entity its defensive sign. Entities without a column in idx are
// omitted; this is how the appearance floor reaches the matrix. The target
// holds the points of each possession, unmodified.
//
// Build does not modify idx.
func Build(idx *entity.Index, possessions []model.Possession) (*Matrix, []float64) {
	s := idx.Strategy()
	roles := s.Roles()
	b := newBuilder(idx.Len(), len(possessions))
	b.colIdx = make([]int, 0, len(possessions)*2*len(roles))
	b.values = make([]float64, 0, len(possessions)*2*len(roles))
	y := make([]float64, len(possessions))

	place := func(l model.Lineup, onOffense bool) {
		for _, e := range s.Entities(l) {
			for _, r := range roles {
				sign := r.Sign(onOffense)
				if sign == 0 {
					continue
				}
				if col, ok := idx.Lookup(entity.Column{Entity: e, Role: r}); ok {
					b.set(col, sign)
				}
			}
		}
	}

	for i := range possessions {
		p := &possessions[i]
		place(p.Offense(), true)
		place(p.Defense(), false)
		b.endRow()
		y[i] = p.Points
	}
	return b.matrix(), y
}

// SeasonWeights maps every possession to the weight of its season. When
// bySeason is empty all rows weigh 1 and nil is returned.
func SeasonWeights(possessions []model.Possession, bySeason map[string]float64) ([]float64, error) {
	if len(bySeason) == 0 {
		return nil, nil
	}
	w := make([]float64, len(possessions))
	for i := range possessions {
		v, ok := bySeason[possessions[i].Season]
		if !ok {
			return nil, failure.InvalidInput("no weight configured for season %q", possessions[i].Season)
		}
		if v < 0 {
			return nil, failure.InvalidInput("negative weight %g for season %q", v, possessions[i].Season)
		}
		w[i] = v
	}
	return w, nil
}
