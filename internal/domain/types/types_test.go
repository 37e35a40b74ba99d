package types_test

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	types "github.com/okian/courtside/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryJSON(t *testing.T) {
	Convey("Given a ranked entry", t, func() {
		entry := types.Entry{Rank: 3, Label: "201939_off", Rating: 4.25, Appearances: 5120}

		Convey("When encoded", func() {
			b, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			Convey("Then it uses snake case keys", func() {
				So(string(b), ShouldEqual, `{"rank":3,"label":"201939_off","rating":4.25,"appearances":5120}`)
			})
		})
	})
}

func TestTableInfoJSON(t *testing.T) {
	Convey("Given table metadata", t, func() {
		info := types.TableInfo{
			Name:     "player-2022",
			Mode:     "player",
			Seasons:  []string{"2022"},
			Alpha:    2500,
			Rows:     900,
			StoredAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		b, err := json.Marshal(info)
		So(err, ShouldBeNil)

		Convey("Then the seasons and alpha are exposed", func() {
			var decoded map[string]any
			So(json.Unmarshal(b, &decoded), ShouldBeNil)
			So(decoded["name"], ShouldEqual, "player-2022")
			So(decoded["alpha"], ShouldEqual, 2500.0)
			So(decoded["seasons"], ShouldResemble, []any{"2022"})
			So(decoded["stored_at"], ShouldEqual, "2023-06-01T00:00:00Z")
		})
	})
}
