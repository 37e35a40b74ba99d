// Package config defines the rating pipeline configuration and how it is
// loaded.
//
// Values are layered: defaults from New, then an optional YAML file named by
// RAPM_CONFIG, then RAPM_* environment variables. Nested keys use a double
// underscore in the environment, e.g. RAPM_SOLVER__METHOD=cg.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Mode is the rated entity granularity: player or group.
	Mode string `koanf:"mode" validate:"oneof=player group"`

	// Seasons lists the seasons to rate.
	Seasons []string `koanf:"seasons" validate:"min=1,dive,required"`

	// PoolSeasons fits all seasons as one run instead of one run per season.
	PoolSeasons bool `koanf:"pool_seasons"`

	// MinAppearances drops entities seen in fewer possessions before fitting.
	MinAppearances int `koanf:"min_appearances" validate:"gte=0"`

	// DisplayMinAppearances drops rows from the output table after fitting.
	DisplayMinAppearances int `koanf:"display_min_appearances" validate:"gte=0"`

	// Alphas is the ridge penalty grid searched by cross-validation.
	Alphas []float64 `koanf:"alphas" validate:"min=1,dive,gt=0"`

	// CVFolds is the number of contiguous cross-validation folds.
	CVFolds int `koanf:"cv_folds" validate:"gte=2"`

	// SeasonWeights maps seasons to per-possession weights. Empty means
	// every possession weighs 1.
	SeasonWeights map[string]float64 `koanf:"season_weights" validate:"dive,gte=0"`

	// WorkerCount bounds how many runs execute at once.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// QueueSize bounds the run queue.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	Solver  SolverConfig  `koanf:"solver"`
	Source  SourceConfig  `koanf:"source"`
	Output  OutputConfig  `koanf:"output"`
	Serve   ServeConfig   `koanf:"serve"`
	Metrics MetricsConfig `koanf:"metrics"`

	// NamesPath optionally points at a Player,player_name CSV used to
	// label output rows.
	NamesPath string `koanf:"names_path"`
}

// SolverConfig tunes the ridge backend.
type SolverConfig struct {
	Method          string  `koanf:"method" validate:"oneof=auto dense cg"`
	DenseMaxColumns int     `koanf:"dense_max_columns" validate:"gte=1"`
	CGTolerance     float64 `koanf:"cg_tolerance" validate:"gt=0,lt=1"`
	CGMaxIterations int     `koanf:"cg_max_iterations" validate:"gte=0"`
}

// SourceConfig selects where possessions come from.
type SourceConfig struct {
	// Kind is csv, postgres or duckdb.
	Kind string `koanf:"kind" validate:"oneof=csv postgres duckdb"`
	// Path is a file path template for csv and duckdb; {season} is replaced.
	Path string `koanf:"path"`
	// Format is csv or parquet, duckdb only.
	Format string `koanf:"format" validate:"omitempty,oneof=csv parquet"`
	// DSN is the postgres connection string.
	DSN string `koanf:"dsn"`
	// Table is the postgres table holding possessions.
	Table string `koanf:"table" validate:"omitempty,max=63"`
}

// OutputConfig selects where rating tables are written.
type OutputConfig struct {
	// Format is csv or json.
	Format string `koanf:"format" validate:"oneof=csv json"`
	// Path is a file path template; {season} and {mode} are replaced.
	// "-" writes to stdout and an empty path writes no file.
	Path string   `koanf:"path"`
	S3   S3Config `koanf:"s3"`
}

// S3Config uploads rating tables to an S3 compatible bucket when Bucket is set.
type S3Config struct {
	Bucket          string `koanf:"bucket"`
	Key             string `koanf:"key" validate:"required_with=Bucket"`
	Region          string `koanf:"region" validate:"required_with=Bucket"`
	Endpoint        string `koanf:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	UsePathStyle    bool   `koanf:"use_path_style"`
}

// ServeConfig exposes finished tables over HTTP when Addr is set.
type ServeConfig struct {
	Addr     string `koanf:"addr"`
	MaxLimit int    `koanf:"max_limit" validate:"gte=1"`
}

// MetricsConfig pushes batch metrics to a Pushgateway when PushURL is set.
type MetricsConfig struct {
	PushURL string `koanf:"push_url" validate:"omitempty,url"`
	Job     string `koanf:"job" validate:"required"`
}

// Default alpha grid, spaced for possession-level RAPM.
var defaultAlphas = []float64{1500, 1750, 2000, 2250, 2500, 2750, 3000, 3250, 3500, 3750, 4000}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Mode:                  "player",
		Seasons:               []string{"2022"},
		MinAppearances:        0,
		DisplayMinAppearances: 0,
		Alphas:                append([]float64(nil), defaultAlphas...),
		CVFolds:               5,
		WorkerCount:           runtime.NumCPU(),
		QueueSize:             64,
		Solver: SolverConfig{
			Method:          "auto",
			DenseMaxColumns: 4000,
			CGTolerance:     1e-8,
		},
		Source: SourceConfig{
			Kind:   "csv",
			Path:   "base_poss_data_{season}.csv",
			Format: "csv",
			Table:  "matchups",
		},
		Output: OutputConfig{
			Format: "csv",
			Path:   "{mode}_rapm_{season}.csv",
		},
		Serve: ServeConfig{
			MaxLimit: 500,
		},
		Metrics: MetricsConfig{
			Job: "rapm",
		},
	}
}
