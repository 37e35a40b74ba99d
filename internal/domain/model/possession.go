// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"strings"
)

// LineupSize is the number of players a team has on court.
const LineupSize = 5

// Lineup holds the player ids one team had on court, in slot order.
// An empty id marks a missing or invalid slot.
type Lineup [LineupSize]string

// Possession is one offensive trip and the ten players on court for it.
// Fields mirror the matchups table: home_poss, pts, a1..a5, h1..h5, season.
type Possession struct {
	OffenseIsHome bool    // true when the home team had the ball
	Points        float64 // points scored on the trip, typically 0-4
	Away          Lineup
	Home          Lineup
	Season        string
}

// Offense returns the lineup that had the ball.
func (p *Possession) Offense() Lineup {
	if p.OffenseIsHome {
		return p.Home
	}
	return p.Away
}

// Defense returns the lineup that did not have the ball.
func (p *Possession) Defense() Lineup {
	if p.OffenseIsHome {
		return p.Away
	}
	return p.Home
}

// Canonical returns the lineup with ids sorted so that slot order does not
// distinguish two otherwise identical lineups. Missing slots sort first.
func (l Lineup) Canonical() Lineup {
	out := l
	slices.Sort(out[:])
	return out
}

// Players returns the distinct non-empty ids in slot order.
func (l Lineup) Players() []string {
	out := make([]string, 0, LineupSize)
	for _, id := range l {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Complete reports whether every slot holds an id.
func (l Lineup) Complete() bool {
	for _, id := range l {
		if id == "" {
			return false
		}
	}
	return true
}

// String renders the lineup as a comma separated list of its present ids.
func (l Lineup) String() string {
	return strings.Join(l.Players(), ", ")
}
