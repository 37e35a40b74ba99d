package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry), WithConstLabels(map[string]string{"env": "test"}))

		Convey("When a run is recorded", func() {
			m.RecordRun("player", StatusSuccess, 1500*time.Millisecond)
			m.RecordRun("player", StatusFailure, time.Second)
			m.RecordStage("solving", 20*time.Millisecond)

			Convey("Then runs are counted by outcome", func() {
				So(testutil.ToFloat64(m.runsTotal.WithLabelValues("player", StatusSuccess)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.runsTotal.WithLabelValues("player", StatusFailure)), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.stageDuration), ShouldEqual, 1)
			})
		})

		Convey("When the design and fit are recorded", func() {
			m.RecordDesign("group", 100, 12, 9, 95, 5, 9)
			m.RecordFit("group", 10, 0.02, 0)
			m.RecordFit("player", 100, 0.03, 42)

			Convey("Then gauges reflect the last run", func() {
				So(testutil.ToFloat64(m.possessionsLoaded), ShouldEqual, 100)
				So(testutil.ToFloat64(m.entities.WithLabelValues("group", "seen")), ShouldEqual, 12)
				So(testutil.ToFloat64(m.designRows.WithLabelValues("group", "pruned")), ShouldEqual, 5)
				So(testutil.ToFloat64(m.designColumns.WithLabelValues("group")), ShouldEqual, 9)
				So(testutil.ToFloat64(m.chosenAlpha.WithLabelValues("player")), ShouldEqual, 100)
				So(testutil.CollectAndCount(m.cgIterations), ShouldEqual, 1)
			})
		})

		Convey("When queue and workers report", func() {
			m.UpdateQueue(3, 8)
			m.RecordEnqueue(true)
			m.RecordEnqueue(false)
			m.WorkerStarted()
			m.WorkerStarted()
			m.WorkerFinished(time.Millisecond, errors.New("boom"))

			Convey("Then gauges and counters move", func() {
				So(testutil.ToFloat64(m.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(m.queueCapacity), ShouldEqual, 8)
				So(testutil.ToFloat64(m.queueEnqueued), ShouldEqual, 1)
				So(testutil.ToFloat64(m.queueEnqueueErrors), ShouldEqual, 1)
				So(testutil.ToFloat64(m.workerActive), ShouldEqual, 1)
				So(testutil.ToFloat64(m.workerErrors), ShouldEqual, 1)
			})
		})

		Convey("When HTTP, sink and error metrics are recorded", func() {
			m.RecordHTTPRequest("/tables", "GET", "200", 1.5)
			m.RecordSinkWrite("csv", StatusSuccess)
			m.RecordError("source", "data_acquisition")
			m.UpdateTables(2)
			m.UpdateTableRows("2023-player", 40)

			Convey("Then they are exposed on the registry", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/tables", "GET", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.sinkWrites.WithLabelValues("csv", StatusSuccess)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorsByComponent.WithLabelValues("source", "data_acquisition")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.tableRows.WithLabelValues("2023-player")), ShouldEqual, 40)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "courtside_rapm_http_requests_total")
				So(names, ShouldContain, "courtside_rapm_tables")
			})
		})
	})
}

func TestManagerPush(t *testing.T) {
	Convey("Given a fake Pushgateway", t, func() {
		var (
			mu   sync.Mutex
			path string
			body string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			path, body = r.URL.Path, string(b)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		m.RecordRun("group", StatusSuccess, time.Second)

		Convey("When pushing", func() {
			err := m.Push(context.Background(), srv.URL, "rapm_batch")

			Convey("Then the job's metrics reach the gateway", func() {
				So(err, ShouldBeNil)
				mu.Lock()
				defer mu.Unlock()
				So(path, ShouldEqual, "/metrics/job/rapm_batch")
				So(len(body), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When no url is configured", func() {
			So(errors.Is(m.Push(context.Background(), "", "job"), ErrNoPushURL), ShouldBeTrue)
		})

		Convey("When the gateway rejects the push", func() {
			bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer bad.Close()
			err := m.Push(context.Background(), bad.URL, "job")
			So(errors.Is(err, ErrPushFailed), ShouldBeTrue)
		})
	})
}

func TestDefaultManager(t *testing.T) {
	Convey("Given the package-level helpers", t, func() {
		So(func() {
			RecordRun("player", StatusSuccess, time.Millisecond)
			RecordStage("indexing", time.Millisecond)
			RecordHTTPRequest("/healthz", "GET", "200", 0.2)
			RecordError("api", "not_found")
		}, ShouldNotPanic)

		Convey("Then they land on the custom registry", func() {
			So(Default().Registry(), ShouldEqual, GetRegistry())
			n, err := testutil.GatherAndCount(GetRegistry(), "courtside_rapm_runs_total")
			So(err, ShouldBeNil)
			So(n, ShouldBeGreaterThan, 0)
			So(strings.HasPrefix(Default().namespace, "courtside"), ShouldBeTrue)
		})
	})
}
