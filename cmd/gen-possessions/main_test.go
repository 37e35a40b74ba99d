package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/courtside/internal/adapters/names"
	"github.com/okian/courtside/internal/adapters/source"
	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	convey.Convey("Given a small league", t, func() {
		dir := t.TempDir()
		var stdout, stderr bytes.Buffer
		base := []string{"-teams", "3", "-roster", "6", "-possessions", "50"}

		convey.Convey("When two seasons are written to files", func() {
			args := append(base,
				"-season", "2021,2022",
				"-out", filepath.Join(dir, "data", "poss_{season}.csv"),
				"-truth", filepath.Join(dir, "truth.csv"),
				"-names", filepath.Join(dir, "names.csv"),
			)
			code := run(args, &stdout, &stderr)

			convey.Convey("Then each season file loads back on its own", func() {
				convey.So(code, convey.ShouldEqual, 0)
				for _, season := range []string{"2021", "2022"} {
					f, err := os.Open(filepath.Join(dir, "data", "poss_"+season+".csv"))
					convey.So(err, convey.ShouldBeNil)
					poss, err := source.ReadCSV(f, season)
					_ = f.Close()
					convey.So(err, convey.ShouldBeNil)
					convey.So(poss, convey.ShouldHaveLength, 50)
				}
			})

			convey.Convey("And the truth and names files cover every player", func() {
				truth, err := os.ReadFile(filepath.Join(dir, "truth.csv"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(bytes.Count(truth, []byte("\n")), convey.ShouldEqual, 1+3*6)

				dirNames, err := names.Load(filepath.Join(dir, "names.csv"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(dirNames.Len(), convey.ShouldEqual, 3*6)
				convey.So(dirNames.Name("100001"), convey.ShouldEqual, "Player 100001")
			})
		})

		convey.Convey("When output goes to stdout", func() {
			code := run(append(base, "-out", "-"), &stdout, &stderr)

			convey.Convey("Then the CSV is printed", func() {
				convey.So(code, convey.ShouldEqual, 0)
				poss, err := source.ReadCSV(&stdout, "2022")
				convey.So(err, convey.ShouldBeNil)
				convey.So(poss, convey.ShouldHaveLength, 50)
			})
		})

		convey.Convey("When the roster is too small for a lineup", func() {
			code := run([]string{"-roster", "4", "-out", "-"}, &stdout, &stderr)

			convey.Convey("Then generation is refused", func() {
				convey.So(code, convey.ShouldEqual, 2)
				convey.So(stdout.Len(), convey.ShouldEqual, 0)
			})
		})
	})
}
