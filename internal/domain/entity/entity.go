// Package entity assigns rated entities (players or lineup groups) to
// design-matrix columns.
//
// An Index is built once per run from the full possession set and is
// immutable afterwards. Columns are numbered densely in first-seen order
// and renumbered densely again after the appearance floor is applied.
package entity

import (
	"fmt"
	"strings"

	"github.com/okian/courtside/internal/domain/model"
)

// Mode selects the granularity of rated entities.
type Mode string

// Supported modes.
const (
	ModePlayer Mode = "player"
	ModeGroup  Mode = "group"
)

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePlayer:
		return ModePlayer, nil
	case ModeGroup:
		return ModeGroup, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Kind distinguishes the two entity variants.
type Kind uint8

// Entity kinds.
const (
	KindPlayer Kind = iota + 1
	KindGroup
)

// Entity is a rated unit. It is comparable and used directly as a map key.
type Entity struct {
	Kind   Kind
	ID     string       // player id, KindPlayer only
	Lineup model.Lineup // canonical lineup, KindGroup only
}

// Player returns the entity for a single player id.
func Player(id string) Entity {
	return Entity{Kind: KindPlayer, ID: id}
}

// Group returns the entity for a lineup, canonicalized so slot order is irrelevant.
func Group(l model.Lineup) Entity {
	return Entity{Kind: KindGroup, Lineup: l.Canonical()}
}

func (e Entity) String() string {
	if e.Kind == KindGroup {
		return e.Lineup.String()
	}
	return e.ID
}

// Role says how a column responds to its entity being on court.
type Role uint8

// Column roles.
const (
	// RoleNet is +1 on offense and -1 on defense (lineup groups).
	RoleNet Role = iota
	// RoleOffense is +1 on offense and absent on defense.
	RoleOffense
	// RoleDefense is -1 on defense and absent on offense.
	RoleDefense
)

// Sign returns the design-matrix value for an entity in this role, given
// whether its team had the ball. Zero means the column is not touched.
func (r Role) Sign(onOffense bool) float64 {
	switch r {
	case RoleOffense:
		if onOffense {
			return 1
		}
		return 0
	case RoleDefense:
		if onOffense {
			return 0
		}
		return -1
	default:
		if onOffense {
			return 1
		}
		return -1
	}
}

// Suffix is appended to an entity label to name its column.
func (r Role) Suffix() string {
	switch r {
	case RoleOffense:
		return "_off"
	case RoleDefense:
		return "_def"
	default:
		return ""
	}
}

// Column is one design-matrix column: an entity in a role.
type Column struct {
	Entity Entity
	Role   Role
}

// Label names the column, e.g. "201939_off" or "p1, p2, p3, p4, p5".
func (c Column) Label() string {
	return c.Entity.String() + c.Role.Suffix()
}
