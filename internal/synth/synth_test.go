package synth_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/courtside/internal/adapters/source"
	"github.com/okian/courtside/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func smallConfig() synth.Config {
	cfg := synth.DefaultConfig()
	cfg.Possessions = 200
	cfg.Seasons = []string{"2021", "2022"}
	return cfg
}

func TestGenerate(t *testing.T) {
	Convey("Given a small league", t, func() {
		lg, err := synth.Generate(smallConfig())
		So(err, ShouldBeNil)

		Convey("Every player has a planted impact", func() {
			So(lg.Players(), ShouldHaveLength, 8*9)
			So(lg.Truth, ShouldHaveLength, 8*9)
		})

		Convey("Possessions are grouped by season in order", func() {
			So(lg.Possessions, ShouldHaveLength, 400)
			So(lg.Possessions[0].Season, ShouldEqual, "2021")
			So(lg.Possessions[399].Season, ShouldEqual, "2022")
		})

		Convey("Lineups hold five distinct players", func() {
			for _, p := range lg.Possessions {
				So(p.Home.Complete(), ShouldBeTrue)
				So(p.Home.Players(), ShouldHaveLength, 5)
				So(p.Away.Players(), ShouldHaveLength, 5)
			}
		})

		Convey("The same seed gives the same league", func() {
			again, err := synth.Generate(smallConfig())
			So(err, ShouldBeNil)
			So(again.Possessions, ShouldResemble, lg.Possessions)
		})

		Convey("A different seed gives a different league", func() {
			cfg := smallConfig()
			cfg.Seed = 2
			other, err := synth.Generate(cfg)
			So(err, ShouldBeNil)
			So(other.Possessions, ShouldNotResemble, lg.Possessions)
		})
	})

	Convey("Integer points are whole and never negative", t, func() {
		cfg := smallConfig()
		cfg.Integer = true
		lg, err := synth.Generate(cfg)
		So(err, ShouldBeNil)
		for _, p := range lg.Possessions {
			So(p.Points, ShouldBeGreaterThanOrEqualTo, 0)
			So(p.Points, ShouldEqual, float64(int(p.Points)))
		}
	})

	Convey("Rosters smaller than a lineup are rejected", t, func() {
		cfg := smallConfig()
		cfg.Roster = 4
		_, err := synth.Generate(cfg)
		So(errors.Is(err, synth.ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Written possessions read back unchanged", t, func() {
		lg, err := synth.Generate(smallConfig())
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(synth.WriteCSV(&buf, lg.Possessions), ShouldBeNil)

		got, err := source.ReadCSV(bytes.NewReader(buf.Bytes()), "2022")
		So(err, ShouldBeNil)
		So(got, ShouldResemble, lg.Possessions[200:])
	})

	Convey("Truth is written in roster order", t, func() {
		lg, err := synth.Generate(smallConfig())
		So(err, ShouldBeNil)
		var buf bytes.Buffer
		So(lg.WriteTruth(&buf), ShouldBeNil)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		So(lines, ShouldHaveLength, 1+8*9)
		So(lines[0], ShouldEqual, "Player,offense,defense")
		So(lines[1], ShouldStartWith, "100001,")
	})
}
