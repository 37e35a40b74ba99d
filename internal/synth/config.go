package synth

// Config describes a synthetic league.
type Config struct {
	Seed        uint64  // same seed, same league and possessions
	Teams       int     // number of teams, at least 2
	Roster      int     // players per team, at least 5
	Possessions int     // possessions per season
	Seasons     []string
	BasePoints  float64 // expected points of a league average possession
	ImpactSD    float64 // spread of true per-possession player impacts
	NoiseSD     float64 // spread of points around their expectation
	Integer     bool    // round points to whole numbers, clamped at 0
}

// DefaultConfig returns a small league with a clear planted signal.
func DefaultConfig() Config {
	return Config{
		Seed:        1,
		Teams:       8,
		Roster:      9,
		Possessions: 20000,
		Seasons:     []string{"2022"},
		BasePoints:  1.1,
		ImpactSD:    0.05,
		NoiseSD:     0.5,
	}
}
