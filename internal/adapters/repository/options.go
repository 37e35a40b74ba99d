package repository

import "github.com/okian/courtside/pkg/metrics"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithMetrics reports table counts and sizes to m.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *SnapshotStore) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTopCacheSize sets how many leading rows per table are kept in the
// pre-sliced top cache.
func WithTopCacheSize(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.topCacheSize = n
		}
	}
}
