package sink

import (
	"encoding/csv"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/okian/courtside/internal/domain/rating"
)

// EncodeCSV writes the flat three-column table: label, rating, appearances.
func EncodeCSV(w io.Writer, table *rating.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header()); err != nil {
		return err
	}
	rec := make([]string, 3)
	for _, r := range table.Rows {
		rec[0] = r.Label
		rec[1] = strconv.FormatFloat(r.Rating, 'f', -1, 64)
		rec[2] = strconv.Itoa(r.Appearances)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	Label       string  `json:"label"`
	Rating      float64 `json:"rating"`
	Appearances int     `json:"appearances"`
}

type jsonTable struct {
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode"`
	Seasons   []string  `json:"seasons"`
	Alpha     float64   `json:"alpha"`
	Intercept float64   `json:"intercept"`
	Rows      []jsonRow `json:"rows"`
}

// EncodeJSON writes the table with its run metadata.
func EncodeJSON(w io.Writer, table *rating.Table) error {
	out := jsonTable{
		RunID:     table.Meta.RunID,
		Mode:      string(table.Meta.Mode),
		Seasons:   table.Meta.Seasons,
		Alpha:     table.Meta.Alpha,
		Intercept: table.Meta.Intercept,
		Rows:      make([]jsonRow, len(table.Rows)),
	}
	for i, r := range table.Rows {
		out.Rows[i] = jsonRow{Label: r.Label, Rating: r.Rating, Appearances: r.Appearances}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
