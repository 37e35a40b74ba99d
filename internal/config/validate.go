package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// tableName accepts plain or schema-qualified SQL identifiers.
var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), tagWithParam(fe)))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch c.Source.Kind {
	case "postgres":
		if c.Source.DSN == "" {
			return fmt.Errorf("%w: source.dsn is required for the postgres source", ErrInvalidConfig)
		}
		if !tableName.MatchString(c.Source.Table) {
			return fmt.Errorf("%w: source.table %q is not a valid table name", ErrInvalidConfig, c.Source.Table)
		}
	case "csv", "duckdb":
		if c.Source.Path == "" {
			return fmt.Errorf("%w: source.path is required for the %s source", ErrInvalidConfig, c.Source.Kind)
		}
	}

	if !c.PoolSeasons && len(c.Seasons) > 1 && c.Output.Path != "" && c.Output.Path != "-" &&
		!strings.Contains(c.Output.Path, "{season}") {
		return fmt.Errorf("%w: output.path needs {season} when seasons run separately", ErrInvalidConfig)
	}
	if c.Output.S3.Bucket != "" && len(c.Seasons) > 1 && !c.PoolSeasons &&
		!strings.Contains(c.Output.S3.Key, "{season}") {
		return fmt.Errorf("%w: output.s3.key needs {season} when seasons run separately", ErrInvalidConfig)
	}
	return nil
}

func tagWithParam(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
