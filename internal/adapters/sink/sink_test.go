package sink_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	json "github.com/goccy/go-json"

	"github.com/okian/courtside/internal/adapters/sink"
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleTable(mode entity.Mode, seasons ...string) *rating.Table {
	return &rating.Table{
		Meta: rating.Meta{RunID: "run-7", Mode: mode, Seasons: seasons, Alpha: 2500, Intercept: 1.1},
		Rows: []rating.Row{
			{Label: "201939_off", Rating: 3.25, Appearances: 4000},
			{Label: "201939_def", Rating: -0.5, Appearances: 4000},
		},
	}
}

func TestEncode(t *testing.T) {
	Convey("Given a player table", t, func() {
		table := sampleTable(entity.ModePlayer, "2022")

		Convey("CSV has the RAPM header and rows in table order", func() {
			var buf bytes.Buffer
			So(sink.Encode(&buf, sink.FormatCSV, table), ShouldBeNil)
			So(buf.String(), ShouldEqual, "Player,RAPM,Appearances\n201939_off,3.25,4000\n201939_def,-0.5,4000\n")
		})

		Convey("JSON carries the run metadata", func() {
			var buf bytes.Buffer
			So(sink.Encode(&buf, sink.FormatJSON, table), ShouldBeNil)
			var got struct {
				RunID string  `json:"run_id"`
				Alpha float64 `json:"alpha"`
				Rows  []struct {
					Label  string  `json:"label"`
					Rating float64 `json:"rating"`
				} `json:"rows"`
			}
			So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
			So(got.RunID, ShouldEqual, "run-7")
			So(got.Alpha, ShouldEqual, 2500.0)
			So(got.Rows, ShouldHaveLength, 2)
			So(got.Rows[1].Rating, ShouldEqual, -0.5)
		})

		Convey("Unknown formats are rejected", func() {
			err := sink.Encode(io.Discard, "xml", table)
			So(errors.Is(err, sink.ErrUnknownFormat), ShouldBeTrue)
		})
	})

	Convey("Group tables use the APM header", t, func() {
		var buf bytes.Buffer
		So(sink.EncodeCSV(&buf, sampleTable(entity.ModeGroup, "2022")), ShouldBeNil)
		So(buf.String(), ShouldStartWith, "Group,APM,Appearances\n")
	})
}

func TestExpand(t *testing.T) {
	Convey("Templates take mode and seasons", t, func() {
		So(sink.Expand("{mode}_rapm_{season}.csv", sampleTable(entity.ModePlayer, "2022")), ShouldEqual, "player_rapm_2022.csv")
		So(sink.Expand("out/{mode}/{season}.json", sampleTable(entity.ModeGroup, "2021", "2022")), ShouldEqual, "out/group/2021-2022.json")
	})
}

func TestFileSink(t *testing.T) {
	Convey("Given a file sink in a temp dir", t, func() {
		dir := t.TempDir()
		s := sink.NewFileSink(filepath.Join(dir, "nested", "{mode}_rapm_{season}.csv"), sink.FormatCSV)
		table := sampleTable(entity.ModePlayer, "2022")

		So(s.Write(context.Background(), table), ShouldBeNil)

		Convey("The expanded file holds the table", func() {
			path := s.Path(table)
			So(path, ShouldEqual, filepath.Join(dir, "nested", "player_rapm_2022.csv"))
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldStartWith, "Player,RAPM,Appearances\n")
		})

		Convey("No temp files are left behind", func() {
			entries, err := os.ReadDir(filepath.Join(dir, "nested"))
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
		})

		Convey("A nil table is rejected", func() {
			So(errors.Is(s.Write(context.Background(), nil), sink.ErrNilTable), ShouldBeTrue)
		})
	})
}

// chunkWriter forwards writes a few bytes at a time, yielding in between.
type chunkWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	for i := 0; i < len(p); i += 16 {
		end := min(i+16, len(p))
		w.mu.Lock()
		w.buf.Write(p[i:end])
		w.mu.Unlock()
		runtime.Gosched()
	}
	return len(p), nil
}

func bigTable(season string, rows int) *rating.Table {
	t := &rating.Table{Meta: rating.Meta{Mode: entity.ModePlayer, Seasons: []string{season}}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, rating.Row{Label: season + "_" + strconv.Itoa(i), Rating: float64(i) / 7, Appearances: i})
	}
	return t
}

func TestFileSink_StdoutConcurrent(t *testing.T) {
	Convey("Given a stdout sink shared by two runs", t, func() {
		out := &chunkWriter{}
		s := sink.NewFileSink(sink.Stdout, sink.FormatCSV)
		s.SetStdout(out)
		a, b := bigTable("2021", 2000), bigTable("2022", 2000)

		Convey("When both tables are written at once", func() {
			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i, table := range []*rating.Table{a, b} {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs[i] = s.Write(context.Background(), table)
				}()
			}
			wg.Wait()

			Convey("Then each table comes out whole", func() {
				So(errs[0], ShouldBeNil)
				So(errs[1], ShouldBeNil)
				var encA, encB bytes.Buffer
				So(sink.EncodeCSV(&encA, a), ShouldBeNil)
				So(sink.EncodeCSV(&encB, b), ShouldBeNil)
				got := out.buf.String()
				So(got == encA.String()+encB.String() || got == encB.String()+encA.String(), ShouldBeTrue)
			})
		})
	})
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Sink(t *testing.T) {
	Convey("Given an S3 sink", t, func() {
		putter := &fakePutter{}
		s := sink.NewS3Sink(putter, "ratings", "rapm/{mode}/{season}.json", sink.FormatJSON)

		Convey("It uploads the encoded table under the expanded key", func() {
			So(s.Write(context.Background(), sampleTable(entity.ModePlayer, "2022")), ShouldBeNil)
			So(aws.ToString(putter.in.Bucket), ShouldEqual, "ratings")
			So(aws.ToString(putter.in.Key), ShouldEqual, "rapm/player/2022.json")
			So(aws.ToString(putter.in.ContentType), ShouldEqual, "application/json")
			So(aws.ToInt64(putter.in.ContentLength), ShouldEqual, int64(len(putter.body)))
			So(putter.body, ShouldContainSubstring, `"run_id": "run-7"`)
		})

		Convey("Upload errors are returned", func() {
			putter.err = errors.New("denied")
			So(s.Write(context.Background(), sampleTable(entity.ModePlayer, "2022")), ShouldNotBeNil)
		})
	})

	Convey("Given a client pointed at a local endpoint", t, func() {
		var (
			mu     sync.Mutex
			method string
			path   string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			method, path = r.Method, r.URL.Path
			mu.Unlock()
			_, _ = io.Copy(io.Discard, r.Body)
			w.Header().Set("ETag", `"abc"`)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := sink.NewS3Client(config.S3Config{
			Region:          "us-east-1",
			Endpoint:        srv.URL,
			AccessKeyID:     "test",
			SecretAccessKey: "test",
			UsePathStyle:    true,
		})
		s := sink.NewS3Sink(client, "ratings", "{mode}_rapm_{season}.csv", sink.FormatCSV)

		So(s.Write(context.Background(), sampleTable(entity.ModePlayer, "2022")), ShouldBeNil)
		mu.Lock()
		defer mu.Unlock()
		So(method, ShouldEqual, http.MethodPut)
		So(path, ShouldEqual, "/ratings/player_rapm_2022.csv")
	})
}

func TestFromConfig(t *testing.T) {
	Convey("FromConfig enables sinks by setting", t, func() {
		So(sink.FromConfig(config.OutputConfig{Format: "csv"}), ShouldBeEmpty)

		m := sink.FromConfig(config.OutputConfig{
			Format: "csv",
			Path:   "x.csv",
			S3:     config.S3Config{Bucket: "b", Key: "k", Region: "us-east-1"},
		})
		So(m, ShouldHaveLength, 2)
		So(m.Name(), ShouldEqual, "file+s3")
	})
}
