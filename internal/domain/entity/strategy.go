package entity

import (
	"slices"

	"github.com/okian/courtside/internal/domain/model"
)

// Strategy extracts rated entities from one side of a possession and says
// how many columns each entity owns. It is the only mode-specific piece of
// the pipeline.
type Strategy interface {
	Mode() Mode
	// Entities returns the entities one lineup fields, each at most once.
	// The returned entities are also the appearance-count keys.
	Entities(l model.Lineup) []Entity
	// Roles lists the columns each entity owns, in column order.
	Roles() []Role
}

// ForMode returns the strategy for mode.
func ForMode(mode Mode) (Strategy, error) {
	switch mode {
	case ModePlayer:
		return PlayerStrategy{}, nil
	case ModeGroup:
		return GroupStrategy{}, nil
	default:
		return nil, ErrUnknownMode
	}
}

// PlayerStrategy rates individual players with independent offensive and
// defensive columns.
type PlayerStrategy struct{}

// Mode implements Strategy.
func (PlayerStrategy) Mode() Mode { return ModePlayer }

// Entities implements Strategy. Missing slots contribute nothing.
func (PlayerStrategy) Entities(l model.Lineup) []Entity {
	ids := l.Players()
	out := make([]Entity, len(ids))
	for i, id := range ids {
		out[i] = Player(id)
	}
	return out
}

var playerRoles = [...]Role{RoleOffense, RoleDefense}

// Roles implements Strategy. The result is a fresh slice.
func (PlayerStrategy) Roles() []Role { return slices.Clone(playerRoles[:]) }

// GroupStrategy rates canonical five-man lineups with one signed column.
type GroupStrategy struct{}

// Mode implements Strategy.
func (GroupStrategy) Mode() Mode { return ModeGroup }

// Entities implements Strategy.
func (GroupStrategy) Entities(l model.Lineup) []Entity {
	return []Entity{Group(l)}
}

var groupRoles = [...]Role{RoleNet}

// Roles implements Strategy. The result is a fresh slice.
func (GroupStrategy) Roles() []Role { return slices.Clone(groupRoles[:]) }
