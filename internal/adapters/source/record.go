package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/courtside/internal/domain/model"
)

// rawRecord is one possession as text, in Columns order.
type rawRecord [13]string

// parse converts a raw record. A record with an empty season takes
// fallbackSeason.
func (r rawRecord) parse(fallbackSeason string) (model.Possession, error) {
	home, err := parseFlag(r[0])
	if err != nil {
		return model.Possession{}, fmt.Errorf("%w: home_poss %q", ErrBadValue, r[0])
	}
	pts, err := strconv.ParseFloat(strings.TrimSpace(r[1]), 64)
	if err != nil {
		return model.Possession{}, fmt.Errorf("%w: pts %q", ErrBadValue, r[1])
	}
	p := model.Possession{OffenseIsHome: home, Points: pts, Season: strings.TrimSpace(r[12])}
	for i := 0; i < model.LineupSize; i++ {
		p.Away[i] = normalizeID(r[2+i])
		p.Home[i] = normalizeID(r[7+i])
	}
	if p.Season == "" {
		p.Season = fallbackSeason
	}
	return p, nil
}

// parseFlag accepts the boolean spellings databases and dataframes emit.
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "t", "yes":
		return true, nil
	case "0", "0.0", "false", "f", "no":
		return false, nil
	default:
		return false, ErrBadValue
	}
}

// normalizeID maps null spellings to a missing slot and drops the ".0"
// that float-typed id columns carry.
func normalizeID(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null", "<na>":
		return ""
	}
	if head, ok := strings.CutSuffix(s, ".0"); ok && head != "" && isDigits(head) {
		return head
	}
	return s
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// keep reports whether a parsed record belongs to season.
func keep(p model.Possession, season string) bool {
	return p.Season == season
}
