package entity

// Option applies a configuration option to index construction.
type Option func(*buildConfig)

type buildConfig struct {
	minAppearances int
}

// WithMinAppearances drops entities that appeared in fewer than n
// possessions. The floor is inclusive; n <= 0 disables it.
func WithMinAppearances(n int) Option {
	return func(c *buildConfig) {
		c.minAppearances = n
	}
}
