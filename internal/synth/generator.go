// Package synth generates possession data with known player impacts.
//
// Each player has a true offensive and defensive impact in points per
// possession. A possession's expected points are BasePoints plus the
// offensive impacts of the five players with the ball minus the defensive
// impacts of the five defenders. Rosters are larger than five so lineups
// vary and impacts are identifiable.
package synth

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/courtside/internal/domain/model"
)

// ErrInvalidConfig is returned for a league that cannot produce lineups.
var ErrInvalidConfig = errors.New("synth: invalid config")

const firstPlayerID = 100001

// Impact is a player's true effect in points per possession. Positive
// Defense means opponents score less.
type Impact struct {
	Offense float64
	Defense float64
}

// League is a generated data set.
type League struct {
	Rosters     [][]string
	Truth       map[string]Impact
	Possessions []model.Possession
}

// Generate builds a league and its possessions, season by season.
func Generate(cfg Config) (*League, error) {
	if cfg.Teams < 2 || cfg.Roster < model.LineupSize || cfg.Possessions < 0 || len(cfg.Seasons) == 0 {
		return nil, ErrInvalidConfig
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	lg := &League{
		Rosters: make([][]string, cfg.Teams),
		Truth:   make(map[string]Impact, cfg.Teams*cfg.Roster),
	}
	next := firstPlayerID
	for t := range lg.Rosters {
		lg.Rosters[t] = make([]string, cfg.Roster)
		for p := range lg.Rosters[t] {
			id := strconv.Itoa(next)
			next++
			lg.Rosters[t][p] = id
			lg.Truth[id] = Impact{
				Offense: rng.NormFloat64() * cfg.ImpactSD,
				Defense: rng.NormFloat64() * cfg.ImpactSD,
			}
		}
	}

	lg.Possessions = make([]model.Possession, 0, cfg.Possessions*len(cfg.Seasons))
	for _, season := range cfg.Seasons {
		for i := 0; i < cfg.Possessions; i++ {
			lg.Possessions = append(lg.Possessions, lg.possession(rng, cfg, season))
		}
	}
	return lg, nil
}

func (lg *League) possession(rng *rand.Rand, cfg Config, season string) model.Possession {
	home := rng.IntN(len(lg.Rosters))
	away := rng.IntN(len(lg.Rosters) - 1)
	if away >= home {
		away++
	}
	p := model.Possession{
		OffenseIsHome: rng.IntN(2) == 1,
		Home:          lineup(rng, lg.Rosters[home]),
		Away:          lineup(rng, lg.Rosters[away]),
		Season:        season,
	}

	expected := cfg.BasePoints
	off, def := p.Offense(), p.Defense()
	for i := 0; i < model.LineupSize; i++ {
		expected += lg.Truth[off[i]].Offense
		expected -= lg.Truth[def[i]].Defense
	}
	points := expected + rng.NormFloat64()*cfg.NoiseSD
	if cfg.Integer {
		points = math.Max(0, math.Round(points))
	}
	p.Points = points
	return p
}

// lineup draws five distinct players from roster.
func lineup(rng *rand.Rand, roster []string) model.Lineup {
	var l model.Lineup
	perm := rng.Perm(len(roster))
	for i := range l {
		l[i] = roster[perm[i]]
	}
	return l
}

// Players returns every player id in roster order.
func (lg *League) Players() []string {
	out := make([]string, 0, len(lg.Truth))
	for _, r := range lg.Rosters {
		out = append(out, r...)
	}
	return out
}
