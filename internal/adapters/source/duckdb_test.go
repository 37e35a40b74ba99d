package source_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/courtside/internal/adapters/source"
	"github.com/okian/courtside/internal/domain/failure"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDuckDBSource(t *testing.T) {
	Convey("Given a DuckDB source over season CSV files", t, func() {
		dir := t.TempDir()
		writeSeason(t, dir, "2022", header+
			"1,2,1,2,3,4,5,6,7,8,9,10,2022\n"+
			"0,1,1,2,3,4,5,6,7,8,,10,2022\n")
		src, err := source.OpenDuckDB(filepath.Join(dir, "base_poss_data_{season}.csv"), source.FormatCSV)
		So(err, ShouldBeNil)
		defer func() { _ = src.Close() }()

		Convey("It loads the same records as the CSV reader", func() {
			rows, err := src.Load(context.Background(), []string{"2022"})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[0].OffenseIsHome, ShouldBeTrue)
			So(rows[0].Points, ShouldEqual, 2)
			So(rows[0].Home[4], ShouldEqual, "10")
			So(rows[1].Home[3], ShouldEqual, "")
		})

		Convey("A missing file is a data acquisition error", func() {
			_, err := src.Load(context.Background(), []string{"1999"})
			So(errors.Is(err, failure.ErrDataAcquisition), ShouldBeTrue)
		})
	})

	Convey("An unsupported format is rejected", t, func() {
		_, err := source.OpenDuckDB("x.json", "json")
		So(errors.Is(err, source.ErrBadValue), ShouldBeTrue)
	})
}
