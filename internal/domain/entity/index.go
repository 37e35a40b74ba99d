package entity

import "github.com/okian/courtside/internal/domain/model"

// Index is the frozen bijection between columns and (entity, role) pairs,
// plus the appearance count of every entity seen in the possession set.
//
// Appearance counts cover every entity seen, including those dropped by the
// appearance floor, and are never changed by filtering.
type Index struct {
	strategy    Strategy
	columns     []Column
	byColumn    map[Column]int
	appearances map[Entity]int
	seen        int // distinct entities before the floor
	kept        int // distinct entities after the floor
	floor       int
}

// BuildIndex scans possessions once and assigns columns to every entity the
// strategy extracts. Entities are numbered in first-seen order: within a
// possession the away lineup is scanned before the home lineup.
//
// The appearance floor is applied per entity, so in player mode both columns
// of a player survive or neither does. Filtering is per side: a possession
// may keep only its offensive or only its defensive entities in the matrix.
// That asymmetry is an accepted approximation and is not corrected here.
func BuildIndex(possessions []model.Possession, s Strategy, opts ...Option) *Index {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	appearances := make(map[Entity]int)
	order := make([]Entity, 0)
	for i := range possessions {
		p := &possessions[i]
		for _, side := range [2]model.Lineup{p.Away, p.Home} {
			for _, e := range s.Entities(side) {
				if _, ok := appearances[e]; !ok {
					order = append(order, e)
				}
				appearances[e]++
			}
		}
	}

	roles := s.Roles()
	idx := &Index{
		strategy:    s,
		columns:     make([]Column, 0, len(order)*len(roles)),
		byColumn:    make(map[Column]int, len(order)*len(roles)),
		appearances: appearances,
		seen:        len(order),
		floor:       cfg.minAppearances,
	}
	for _, e := range order {
		if cfg.minAppearances > 0 && appearances[e] < cfg.minAppearances {
			continue
		}
		idx.kept++
		for _, r := range roles {
			c := Column{Entity: e, Role: r}
			idx.byColumn[c] = len(idx.columns)
			idx.columns = append(idx.columns, c)
		}
	}
	return idx
}

// Strategy returns the strategy the index was built with.
func (x *Index) Strategy() Strategy { return x.strategy }

// Mode returns the rating mode of the index.
func (x *Index) Mode() Mode { return x.strategy.Mode() }

// Len returns the number of columns.
func (x *Index) Len() int { return len(x.columns) }

// At returns the column at index i. It panics if i is out of range.
func (x *Index) At(i int) Column { return x.columns[i] }

// Lookup returns the index of column c, if it survived the floor.
func (x *Index) Lookup(c Column) (int, bool) {
	i, ok := x.byColumn[c]
	return i, ok
}

// Appearances returns how many possessions e appeared in.
func (x *Index) Appearances(e Entity) int { return x.appearances[e] }

// Seen returns the number of distinct entities before the floor.
func (x *Index) Seen() int { return x.seen }

// Kept returns the number of distinct entities that survived the floor.
func (x *Index) Kept() int { return x.kept }

// Floor returns the appearance floor the index was built with (0 = none).
func (x *Index) Floor() int { return x.floor }
