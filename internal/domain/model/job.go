package model

import "strings"

// Job asks for one rating run: one mode over one set of seasons.
type Job struct {
	Name    string   // table name the result is stored under
	Mode    string   // "player" or "group"
	Seasons []string // possessions of all seasons are pooled into one fit
}

// JobName returns the conventional table name for mode and seasons,
// e.g. "player-2021-2022".
func JobName(mode string, seasons []string) string {
	return mode + "-" + strings.Join(seasons, "-")
}
