package ridge

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestContiguousFolds(t *testing.T) {
	convey.Convey("Given 7 rows and 5 folds", t, func() {
		folds := contiguousFolds(7, 5)

		convey.Convey("Then the first two folds hold the extra rows", func() {
			convey.So(folds, convey.ShouldResemble, []fold{{0, 2}, {2, 4}, {4, 5}, {5, 6}, {6, 7}})
		})

		convey.Convey("Then a split partitions the rows", func() {
			train, test := folds[1].split(7)
			convey.So(test, convey.ShouldResemble, []int{2, 3})
			convey.So(train, convey.ShouldResemble, []int{0, 1, 4, 5, 6})
		})
	})
}

func TestRSquared(t *testing.T) {
	convey.Convey("Given held-out targets", t, func() {
		convey.Convey("A perfect prediction scores 1", func() {
			convey.So(rSquared([]float64{1, 2, 3}, []float64{1, 2, 3}, nil), convey.ShouldAlmostEqual, 1)
		})

		convey.Convey("Predicting the mean scores 0", func() {
			convey.So(rSquared([]float64{2, 2, 2}, []float64{1, 2, 3}, nil), convey.ShouldAlmostEqual, 0)
		})

		convey.Convey("Constant targets score 1 only when matched exactly", func() {
			convey.So(rSquared([]float64{2, 2}, []float64{2, 2}, nil), convey.ShouldEqual, 1)
			convey.So(rSquared([]float64{2, 3}, []float64{2, 2}, nil), convey.ShouldEqual, 0)
		})

		convey.Convey("Weights emphasize rows", func() {
			pred := []float64{1, 2, 10}
			y := []float64{1, 2, 3}
			convey.So(rSquared(pred, y, []float64{1, 1, 0}), convey.ShouldAlmostEqual, 1)
			convey.So(rSquared(pred, y, []float64{0, 0, 0}), convey.ShouldEqual, 0)
		})
	})
}
