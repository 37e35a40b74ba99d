package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/metrics"
)

const defaultTopCacheSize = 100

// Snapshot is the immutable, ranked view of one rating table.
type Snapshot struct {
	Info types.TableInfo

	// Entries holds every row, best first, with tie-aware ranks.
	Entries []types.Entry

	// RankByLabel indexes Entries by label.
	RankByLabel map[string]int

	// TopCache is Entries[:min(M, len)].
	TopCache []types.Entry
}

// SnapshotStore is an in-memory Store. Writers build a new snapshot set and
// swap it in atomically; readers never lock.
type SnapshotStore struct {
	topCacheSize int
	metrics      *metrics.Manager
	now          func() time.Time

	mu     sync.Mutex // serializes writers
	tables atomic.Pointer[map[string]*Snapshot]
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore returns an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		topCacheSize: defaultTopCacheSize,
		metrics:      metrics.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	empty := map[string]*Snapshot{}
	s.tables.Store(&empty)
	return s
}

// Put implements Store.
func (s *SnapshotStore) Put(_ context.Context, name string, table *rating.Table) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsRune(name, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	snap := s.buildSnapshot(name, table)

	s.mu.Lock()
	defer s.mu.Unlock()
	current := *s.tables.Load()
	next := make(map[string]*Snapshot, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[name] = snap
	s.tables.Store(&next)

	s.metrics.UpdateTables(len(next))
	s.metrics.UpdateTableRows(name, len(snap.Entries))
	return nil
}

func (s *SnapshotStore) buildSnapshot(name string, table *rating.Table) *Snapshot {
	ranked := table.Ranked()
	entries := make([]types.Entry, len(ranked))
	for i, r := range ranked {
		entries[i] = types.Entry{Label: r.Label, Rating: r.Rating, Appearances: r.Appearances}
	}
	assignRanksWithTies(entries)

	byLabel := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, dup := byLabel[e.Label]; !dup {
			byLabel[e.Label] = i
		}
	}

	return &Snapshot{
		Info: types.TableInfo{
			Name:      name,
			RunID:     table.Meta.RunID,
			Mode:      string(table.Meta.Mode),
			Seasons:   slices.Clone(table.Meta.Seasons),
			Alpha:     table.Meta.Alpha,
			Intercept: table.Meta.Intercept,
			Rows:      len(entries),
			StoredAt:  s.now().UTC(),
		},
		Entries:     entries,
		RankByLabel: byLabel,
		TopCache:    entries[:min(s.topCacheSize, len(entries))],
	}
}

func (s *SnapshotStore) snapshot(name string) (*Snapshot, error) {
	snap, ok := (*s.tables.Load())[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return snap, nil
}

// Tables implements Store.
func (s *SnapshotStore) Tables(_ context.Context) []types.TableInfo {
	current := *s.tables.Load()
	out := make([]types.TableInfo, 0, len(current))
	for _, snap := range current {
		out = append(out, snap.Info)
	}
	slices.SortFunc(out, func(a, b types.TableInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Top implements Store.
func (s *SnapshotStore) Top(_ context.Context, name string, q Query) ([]types.Entry, error) {
	if q.Limit <= 0 {
		return nil, ErrInvalidLimit
	}
	snap, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}

	if q.MinAppearances <= 0 && q.Limit <= len(snap.TopCache) {
		return slices.Clone(snap.TopCache[:q.Limit]), nil
	}
	out := make([]types.Entry, 0, min(q.Limit, len(snap.Entries)))
	for _, e := range snap.Entries {
		if len(out) == q.Limit {
			break
		}
		if e.Appearances < q.MinAppearances {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Rank implements Store.
func (s *SnapshotStore) Rank(_ context.Context, name, label string) (types.Entry, error) {
	snap, err := s.snapshot(name)
	if err != nil {
		return types.Entry{}, err
	}
	i, ok := snap.RankByLabel[label]
	if !ok {
		return types.Entry{}, fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	return snap.Entries[i], nil
}

// Count implements Store.
func (s *SnapshotStore) Count(_ context.Context) int {
	return len(*s.tables.Load())
}

// assignRanksWithTies assigns ranks to entries already sorted best first.
// Entries with the same rating share a rank and the next distinct rating
// takes the following rank.
func assignRanksWithTies(entries []types.Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Rating != entries[i-1].Rating {
			rank++
		}
		entries[i].Rank = rank
	}
}
