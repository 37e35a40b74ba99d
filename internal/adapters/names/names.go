// Package names maps player ids to display names for output tables.
//
// Names are applied to labels only. The entity index and every column stay
// keyed by id.
package names

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/model"
)

var (
	// ErrMissingColumn is returned when the mapping lacks a Player or
	// player_name column.
	ErrMissingColumn = errors.New("names: missing column")
)

// Directory resolves player ids to names. Unknown ids resolve to themselves.
type Directory struct {
	names map[string]string
}

// Load reads a Player,player_name CSV file.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses a Player,player_name CSV. Later rows win on duplicate ids.
func Read(r io.Reader) (*Directory, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("names: header: %w", err)
	}
	idCol, nameCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "Player":
			idCol = i
		case "player_name":
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, ErrMissingColumn
	}

	d := &Directory{names: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return d, nil
		}
		if err != nil {
			return nil, fmt.Errorf("names: %w", err)
		}
		id := strings.TrimSuffix(strings.TrimSpace(rec[idCol]), ".0")
		if name := strings.TrimSpace(rec[nameCol]); id != "" && name != "" {
			d.names[id] = name
		}
	}
}

// Len returns the number of known ids.
func (d *Directory) Len() int { return len(d.names) }

// Name returns the display name of id, or id itself when unknown.
func (d *Directory) Name(id string) string {
	if n, ok := d.names[id]; ok {
		return n
	}
	return id
}

// Label renders a column with names substituted, suitable for
// rating.Table.Relabel.
func (d *Directory) Label(c entity.Column) string {
	if c.Entity.Kind != entity.KindGroup {
		return d.Name(c.Entity.ID) + c.Role.Suffix()
	}
	parts := make([]string, 0, model.LineupSize)
	for _, id := range c.Entity.Lineup.Players() {
		parts = append(parts, d.Name(id))
	}
	return strings.Join(parts, ", ") + c.Role.Suffix()
}
