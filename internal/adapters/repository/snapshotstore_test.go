package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func table(rows ...rating.Row) *rating.Table {
	return &rating.Table{
		Meta: rating.Meta{RunID: "run-1", Mode: entity.ModePlayer, Seasons: []string{"2022"}, Alpha: 2500},
		Rows: rows,
	}
}

func newStore(opts ...repository.Option) *repository.SnapshotStore {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	return repository.NewSnapshotStore(append([]repository.Option{repository.WithMetrics(m)}, opts...)...)
}

func TestSnapshotStore_PutAndRead(t *testing.T) {
	Convey("Given a store holding one table", t, func() {
		ctx := context.Background()
		store := newStore()
		err := store.Put(ctx, "player-2022", table(
			rating.Row{Label: "a_off", Rating: 1.5, Appearances: 900},
			rating.Row{Label: "b_off", Rating: 4.0, Appearances: 100},
			rating.Row{Label: "c_def", Rating: 1.5, Appearances: 1200},
			rating.Row{Label: "d_def", Rating: -2, Appearances: 50},
		))
		So(err, ShouldBeNil)

		Convey("Then tables are listed with their metadata", func() {
			So(store.Count(ctx), ShouldEqual, 1)
			infos := store.Tables(ctx)
			So(len(infos), ShouldEqual, 1)
			So(infos[0].Name, ShouldEqual, "player-2022")
			So(infos[0].Rows, ShouldEqual, 4)
			So(infos[0].Alpha, ShouldEqual, 2500)
			So(infos[0].Mode, ShouldEqual, "player")
		})

		Convey("Then top rows are ranked with ties sharing a rank", func() {
			top, err := store.Top(ctx, "player-2022", repository.Query{Limit: 10})
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 4)
			So(top[0].Label, ShouldEqual, "b_off")
			So(top[0].Rank, ShouldEqual, 1)
			So(top[1].Label, ShouldEqual, "a_off")
			So(top[1].Rank, ShouldEqual, 2)
			So(top[2].Label, ShouldEqual, "c_def")
			So(top[2].Rank, ShouldEqual, 2)
			So(top[3].Rank, ShouldEqual, 3)
		})

		Convey("Then a display floor filters without re-ranking", func() {
			top, err := store.Top(ctx, "player-2022", repository.Query{Limit: 2, MinAppearances: 500})
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 2)
			So(top[0].Label, ShouldEqual, "a_off")
			So(top[0].Rank, ShouldEqual, 2)
			So(top[1].Label, ShouldEqual, "c_def")
		})

		Convey("Then a label can be looked up", func() {
			e, err := store.Rank(ctx, "player-2022", "d_def")
			So(err, ShouldBeNil)
			So(e.Rating, ShouldEqual, -2)
			So(e.Rank, ShouldEqual, 3)

			_, err = store.Rank(ctx, "player-2022", "zzz")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then unknown tables and bad limits are rejected", func() {
			_, err := store.Top(ctx, "group-2022", repository.Query{Limit: 1})
			So(errors.Is(err, repository.ErrTableNotFound), ShouldBeTrue)
			_, err = store.Top(ctx, "player-2022", repository.Query{Limit: 0})
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("When the table is replaced", func() {
			So(store.Put(ctx, "player-2022", table(rating.Row{Label: "z_off", Rating: 9, Appearances: 1})), ShouldBeNil)

			Convey("Then readers see only the new rows", func() {
				So(store.Count(ctx), ShouldEqual, 1)
				top, err := store.Top(ctx, "player-2022", repository.Query{Limit: 5})
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 1)
				So(top[0].Label, ShouldEqual, "z_off")
			})
		})

		Convey("When a name is malformed", func() {
			So(errors.Is(store.Put(ctx, " ", table()), repository.ErrInvalidName), ShouldBeTrue)
			So(errors.Is(store.Put(ctx, "a/b", table()), repository.ErrInvalidName), ShouldBeTrue)
		})
	})
}

func TestSnapshotStore_TopCache(t *testing.T) {
	Convey("Given a small top cache", t, func() {
		ctx := context.Background()
		store := newStore(repository.WithTopCacheSize(2))
		rows := make([]rating.Row, 0, 5)
		for i := 0; i < 5; i++ {
			rows = append(rows, rating.Row{Label: fmt.Sprintf("p%d", i), Rating: float64(i), Appearances: 10})
		}
		So(store.Put(ctx, "t", table(rows...)), ShouldBeNil)

		Convey("Then limits inside and beyond the cache agree", func() {
			small, err := store.Top(ctx, "t", repository.Query{Limit: 2})
			So(err, ShouldBeNil)
			large, err := store.Top(ctx, "t", repository.Query{Limit: 4})
			So(err, ShouldBeNil)
			So(large[:2], ShouldResemble, small)
			So(large[3].Label, ShouldEqual, "p1")
		})

		Convey("Then returned slices do not alias the snapshot", func() {
			small, _ := store.Top(ctx, "t", repository.Query{Limit: 1})
			small[0].Label = "mutated"
			again, _ := store.Top(ctx, "t", repository.Query{Limit: 1})
			So(again[0].Label, ShouldEqual, "p4")
		})
	})
}

func TestSnapshotStore_ConcurrentAccess(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		store := newStore()
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(2)
			go func(w int) {
				defer wg.Done()
				name := fmt.Sprintf("t%d", w)
				_ = store.Put(ctx, name, table(rating.Row{Label: "x", Rating: float64(w), Appearances: 1}))
			}(w)
			go func() {
				defer wg.Done()
				_ = store.Tables(ctx)
				_, _ = store.Top(ctx, "t0", repository.Query{Limit: 1})
			}()
		}
		wg.Wait()

		Convey("Then every write is kept", func() {
			So(store.Count(ctx), ShouldEqual, 8)
			infos := store.Tables(ctx)
			So(infos[0].Name, ShouldEqual, "t0")
			So(infos[7].Name, ShouldEqual, "t7")
		})
	})
}
