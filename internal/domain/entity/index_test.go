package entity_test

import (
	"errors"
	"testing"

	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func lineup(prefix string) model.Lineup {
	return model.Lineup{prefix + "1", prefix + "2", prefix + "3", prefix + "4", prefix + "5"}
}

func TestParseMode(t *testing.T) {
	Convey("Given mode names", t, func() {
		m, err := entity.ParseMode(" Group ")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, entity.ModeGroup)

		m, err = entity.ParseMode("player")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, entity.ModePlayer)

		_, err = entity.ParseMode("team")
		So(errors.Is(err, entity.ErrUnknownMode), ShouldBeTrue)
	})
}

func TestRoleSign(t *testing.T) {
	Convey("Given column roles", t, func() {
		So(entity.RoleNet.Sign(true), ShouldEqual, 1)
		So(entity.RoleNet.Sign(false), ShouldEqual, -1)
		So(entity.RoleOffense.Sign(true), ShouldEqual, 1)
		So(entity.RoleOffense.Sign(false), ShouldEqual, 0)
		So(entity.RoleDefense.Sign(true), ShouldEqual, 0)
		So(entity.RoleDefense.Sign(false), ShouldEqual, -1)
	})
}

func TestStrategyRoles(t *testing.T) {
	Convey("Given the strategies' roles", t, func() {
		Convey("When a caller overwrites a returned slice", func() {
			roles := entity.PlayerStrategy{}.Roles()
			roles[0] = entity.RoleNet
			groups := entity.GroupStrategy{}.Roles()
			groups[0] = entity.RoleOffense

			Convey("Then later calls and indexes are unaffected", func() {
				So(entity.PlayerStrategy{}.Roles(), ShouldResemble, []entity.Role{entity.RoleOffense, entity.RoleDefense})
				So(entity.GroupStrategy{}.Roles(), ShouldResemble, []entity.Role{entity.RoleNet})

				idx := entity.BuildIndex([]model.Possession{{Away: lineup("a"), Home: lineup("b")}}, entity.PlayerStrategy{})
				So(idx.At(0).Role, ShouldEqual, entity.RoleOffense)
				So(idx.At(1).Role, ShouldEqual, entity.RoleDefense)
			})
		})
	})
}

func TestBuildIndex_GroupMode(t *testing.T) {
	Convey("Given possessions between two lineups", t, func() {
		g1, g2 := lineup("a"), lineup("b")
		possessions := []model.Possession{
			{OffenseIsHome: false, Points: 2, Away: g1, Home: g2},
			{OffenseIsHome: true, Points: 3, Away: g1, Home: g2},
		}

		Convey("When building a group index", func() {
			idx := entity.BuildIndex(possessions, entity.GroupStrategy{})

			Convey("Then each lineup owns one column in first-seen order", func() {
				So(idx.Len(), ShouldEqual, 2)
				So(idx.At(0), ShouldResemble, entity.Column{Entity: entity.Group(g1), Role: entity.RoleNet})
				So(idx.At(1).Entity, ShouldResemble, entity.Group(g2))
			})

			Convey("And each lineup is counted once per possession", func() {
				So(idx.Appearances(entity.Group(g1)), ShouldEqual, 2)
				So(idx.Appearances(entity.Group(g2)), ShouldEqual, 2)
			})
		})

		Convey("When a later possession permutes a lineup", func() {
			shuffled := model.Lineup{"b5", "b3", "b1", "b4", "b2"}
			possessions = append(possessions, model.Possession{Away: g1, Home: shuffled})
			idx := entity.BuildIndex(possessions, entity.GroupStrategy{})

			Convey("Then it maps to the same column", func() {
				So(idx.Len(), ShouldEqual, 2)
				col, ok := idx.Lookup(entity.Column{Entity: entity.Group(shuffled), Role: entity.RoleNet})
				So(ok, ShouldBeTrue)
				So(col, ShouldEqual, 1)
				So(idx.Appearances(entity.Group(g2)), ShouldEqual, 3)
			})
		})
	})
}

func TestBuildIndex_PlayerMode(t *testing.T) {
	Convey("Given a single possession", t, func() {
		possessions := []model.Possession{
			{OffenseIsHome: true, Points: 3, Away: lineup("a"), Home: lineup("h")},
		}

		Convey("When building a player index", func() {
			idx := entity.BuildIndex(possessions, entity.PlayerStrategy{})

			Convey("Then every player owns adjacent offense and defense columns", func() {
				So(idx.Len(), ShouldEqual, 20)
				So(idx.At(0).Label(), ShouldEqual, "a1_off")
				So(idx.At(1).Label(), ShouldEqual, "a1_def")
				So(idx.At(10).Label(), ShouldEqual, "h1_off")
				So(idx.Seen(), ShouldEqual, 10)
			})
		})

		Convey("When a slot is missing", func() {
			l := lineup("a")
			l[2] = ""
			possessions[0].Away = l
			idx := entity.BuildIndex(possessions, entity.PlayerStrategy{})

			Convey("Then the slot contributes nothing", func() {
				So(idx.Seen(), ShouldEqual, 9)
				So(idx.Appearances(entity.Player("")), ShouldEqual, 0)
			})
		})
	})
}

func TestBuildIndex_Floor(t *testing.T) {
	Convey("Given lineups with different appearance counts", t, func() {
		g1, g2, g3 := lineup("a"), lineup("b"), lineup("c")
		possessions := []model.Possession{
			{Away: g1, Home: g2},
			{Away: g1, Home: g2},
			{Away: g1, Home: g3},
		}
		// g1: 3, g2: 2, g3: 1

		Convey("When the floor equals a count exactly", func() {
			idx := entity.BuildIndex(possessions, entity.GroupStrategy{}, entity.WithMinAppearances(2))

			Convey("Then that entity is kept and the one below is dropped", func() {
				So(idx.Len(), ShouldEqual, 2)
				_, ok := idx.Lookup(entity.Column{Entity: entity.Group(g2)})
				So(ok, ShouldBeTrue)
				_, ok = idx.Lookup(entity.Column{Entity: entity.Group(g3)})
				So(ok, ShouldBeFalse)
				So(idx.Kept(), ShouldEqual, 2)
				So(idx.Seen(), ShouldEqual, 3)
			})

			Convey("And appearance counts are unchanged by filtering", func() {
				unfiltered := entity.BuildIndex(possessions, entity.GroupStrategy{})
				for _, g := range []model.Lineup{g1, g2, g3} {
					So(idx.Appearances(entity.Group(g)), ShouldEqual, unfiltered.Appearances(entity.Group(g)))
				}
			})
		})

		Convey("When the floor sits above most counts", func() {
			possessions = append(possessions, model.Possession{Away: g3, Home: g1})
			// g1: 4, g2: 2, g3: 2
			idx := entity.BuildIndex(possessions, entity.GroupStrategy{}, entity.WithMinAppearances(3))

			Convey("Then survivors are renumbered densely", func() {
				So(idx.Len(), ShouldEqual, 1)
				So(idx.At(0).Entity, ShouldResemble, entity.Group(g1))
			})
		})

		Convey("When the floor is disabled", func() {
			idx := entity.BuildIndex(possessions, entity.GroupStrategy{}, entity.WithMinAppearances(0))
			So(idx.Len(), ShouldEqual, 3)
			So(idx.Floor(), ShouldEqual, 0)
		})
	})
}

func TestIndexRoundTrip(t *testing.T) {
	Convey("Given a filtered player index", t, func() {
		possessions := []model.Possession{
			{Away: lineup("a"), Home: lineup("h")},
			{Away: lineup("a"), Home: lineup("x")},
		}
		idx := entity.BuildIndex(possessions, entity.PlayerStrategy{}, entity.WithMinAppearances(2))

		Convey("Then every column survives a lookup round trip", func() {
			So(idx.Len(), ShouldEqual, 10)
			for c := 0; c < idx.Len(); c++ {
				got, ok := idx.Lookup(idx.At(c))
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, c)
			}
		})
	})
}

func TestBuildIndex_Empty(t *testing.T) {
	Convey("Given no possessions", t, func() {
		idx := entity.BuildIndex(nil, entity.GroupStrategy{})
		So(idx.Len(), ShouldEqual, 0)
		So(idx.Seen(), ShouldEqual, 0)
		So(idx.Mode(), ShouldEqual, entity.ModeGroup)
	})
}
