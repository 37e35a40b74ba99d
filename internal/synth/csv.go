package synth

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/okian/courtside/internal/domain/model"
)

var possessionHeader = []string{
	"home_poss", "pts",
	"a1", "a2", "a3", "a4", "a5",
	"h1", "h2", "h3", "h4", "h5",
	"season",
}

// WriteCSV writes possessions in the matchups CSV layout.
func WriteCSV(w io.Writer, possessions []model.Possession) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(possessionHeader); err != nil {
		return err
	}
	rec := make([]string, len(possessionHeader))
	for _, p := range possessions {
		rec[0] = "0"
		if p.OffenseIsHome {
			rec[0] = "1"
		}
		rec[1] = strconv.FormatFloat(p.Points, 'f', -1, 64)
		for i := 0; i < model.LineupSize; i++ {
			rec[2+i] = p.Away[i]
			rec[7+i] = p.Home[i]
		}
		rec[12] = p.Season
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTruth writes the planted impacts as Player,offense,defense rows in
// roster order.
func (lg *League) WriteTruth(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Player", "offense", "defense"}); err != nil {
		return err
	}
	for _, id := range lg.Players() {
		imp := lg.Truth[id]
		if err := cw.Write([]string{
			id,
			strconv.FormatFloat(imp.Offense, 'f', -1, 64),
			strconv.FormatFloat(imp.Defense, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNames writes a Player,player_name directory naming every player
// "Player <id>".
func (lg *League) WriteNames(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Player", "player_name"}); err != nil {
		return err
	}
	for _, id := range lg.Players() {
		if err := cw.Write([]string{id, "Player " + id}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
