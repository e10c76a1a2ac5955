package config

import (
	"fmt"
	"strings"
)

// Validate checks that the driver selections are known and that each
// selected driver has the settings it needs.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	if cfg.PreferredTab == "" {
		problems = append(problems, "preferredTab must not be empty")
	}
	if cfg.MaxUploadBytes <= 0 {
		problems = append(problems, "maxUploadBytes must be positive")
	}

	problems = append(problems, ValidateStore(cfg.Store)...)
	problems = append(problems, ValidateSink(cfg.Sink)...)

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}

	if len(problems) == 0 {
		return nil
	}

	return &InvalidConfigError{
		Message: strings.Join(problems, "\n"),
		Hint:    "Check ~/.usagelog.json and USAGELOG_* environment variables",
	}
}

// ValidateStore returns the problems with a store configuration.
func ValidateStore(s StoreConfig) []string {
	var problems []string

	switch s.Driver {
	case StoreSQLite:
		if s.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case StorePostgres:
		if s.DSN == "" {
			problems = append(problems, "store.dsn is required for the postgres driver")
		}
	case StoreMongo:
		if s.DSN == "" {
			problems = append(problems, "store.dsn is required for the mongo driver")
		}
		if s.Database == "" || s.Collection == "" {
			problems = append(problems, "store.database and store.collection are required for the mongo driver")
		}
	case StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of sqlite, postgres, mongo, memory", s.Driver))
	}

	return problems
}

// ValidateSink returns the problems with a sink configuration.
func ValidateSink(s SinkConfig) []string {
	var problems []string

	switch s.Driver {
	case SinkLocal:
		if s.Dir == "" {
			problems = append(problems, "sink.dir is required for the local driver")
		}
	case SinkS3, SinkGCS:
		if s.Bucket == "" {
			problems = append(problems, fmt.Sprintf("sink.bucket is required for the %s driver", s.Driver))
		}
	case SinkNone:
	default:
		problems = append(problems, fmt.Sprintf("sink.driver %q is not one of local, s3, gcs, none", s.Driver))
	}

	return problems
}
