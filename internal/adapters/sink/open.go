package sink

import (
	"github.com/okian/courtside/internal/config"
)

// FromConfig builds the sinks cfg enables, file first. It may return an
// empty Multi when no output is configured.
func FromConfig(cfg config.OutputConfig) Multi {
	var out Multi
	if cfg.Path != "" {
		out = append(out, NewFileSink(cfg.Path, cfg.Format))
	}
	if cfg.S3.Bucket != "" {
		out = append(out, NewS3Sink(NewS3Client(cfg.S3), cfg.S3.Bucket, cfg.S3.Key, cfg.Format))
	}
	return out
}
