// Package types contains the ranked rating views shared by the rating store
// and the HTTP API.
package types

import "time"

// Entry is one ranked row of a rating table.
type Entry struct {
	Rank        int     `json:"rank"`
	Label       string  `json:"label"`
	Rating      float64 `json:"rating"`
	Appearances int     `json:"appearances"`
}

// TableInfo describes a stored rating table.
type TableInfo struct {
	Name      string    `json:"name"`
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode"`
	Seasons   []string  `json:"seasons"`
	Alpha     float64   `json:"alpha"`
	Intercept float64   `json:"intercept"`
	Rows      int       `json:"rows"`
	StoredAt  time.Time `json:"stored_at"`
}
