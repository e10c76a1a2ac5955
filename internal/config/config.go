/*
Package config handles loading, saving, and validating usagelog configuration.

Configuration is resolved in layers: built-in defaults, then the JSON file at
~/.usagelog.json (or --config), then USAGELOG_* environment variables.

Schema:
  {
    "addr": ":5000",
    "preferredTab": "redact-image",
    "maxUploadBytes": 33554432,
    "corsOrigins": ["http://localhost:3000"],
    "store": {"driver": "sqlite", "path": "~/.usagelog/usage.db"},
    "sink": {"driver": "local", "dir": "uploads"},
    "log": {"json": false, "level": "info"},
    "tracing": {"endpoint": ""}
  }
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// Sink drivers.
const (
	SinkLocal = "local"
	SinkS3    = "s3"
	SinkGCS   = "gcs"
	SinkNone  = "none"
)

// DefaultPreferredTab is the tab the preference endpoint answers for when
// the caller does not name one.
const DefaultPreferredTab = "redact-image"

// Config represents the root configuration structure.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr" env:"USAGELOG_ADDR"`

	// PreferredTab is the designated tab for preference inference.
	PreferredTab string `json:"preferredTab" env:"USAGELOG_PREFERRED_TAB"`

	// MaxUploadBytes bounds the size of a log-usage request body.
	MaxUploadBytes int64 `json:"maxUploadBytes" env:"USAGELOG_MAX_UPLOAD_BYTES"`

	// CORSOrigins lists the browser origins allowed to call the API. Empty
	// allows any origin.
	CORSOrigins []string `json:"corsOrigins,omitempty" env:"USAGELOG_CORS_ORIGINS" envSeparator:","`

	Store   StoreConfig   `json:"store" envPrefix:"USAGELOG_STORE_"`
	Sink    SinkConfig    `json:"sink" envPrefix:"USAGELOG_SINK_"`
	Log     LogConfig     `json:"log" envPrefix:"USAGELOG_LOG_"`
	Tracing TracingConfig `json:"tracing" envPrefix:"USAGELOG_TRACING_"`
}

// StoreConfig selects and configures the durable event store.
type StoreConfig struct {
	// Driver is one of sqlite, postgres, mongo, memory.
	Driver string `json:"driver" env:"DRIVER"`

	// Path is the SQLite database file.
	Path string `json:"path,omitempty" env:"PATH"`

	// DSN is the Postgres connection string or the Mongo URI.
	DSN string `json:"dsn,omitempty" env:"DSN"`

	// Database and Collection name the Mongo collection holding events.
	Database   string `json:"database,omitempty" env:"DATABASE"`
	Collection string `json:"collection,omitempty" env:"COLLECTION"`
}

// SinkConfig selects and configures where raw uploads are written.
type SinkConfig struct {
	// Driver is one of local, s3, gcs, none.
	Driver string `json:"driver" env:"DRIVER"`

	// Dir is the upload directory for the local sink.
	Dir string `json:"dir,omitempty" env:"DIR"`

	Bucket string `json:"bucket,omitempty" env:"BUCKET"`
	Region string `json:"region,omitempty" env:"REGION"`

	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty" env:"PREFIX"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	JSON  bool   `json:"json" env:"JSON"`
	Level string `json:"level" env:"LEVEL"`
}

// TracingConfig controls OpenTelemetry export. Tracing is off when Endpoint is empty.
type TracingConfig struct {
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"`
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Addr:           ":5000",
		PreferredTab:   DefaultPreferredTab,
		MaxUploadBytes: 32 << 20,
		Store: StoreConfig{
			Driver:     StoreSQLite,
			Path:       defaultDatabasePath(),
			Database:   "app_usage_db",
			Collection: "usage_logs",
		},
		Sink: SinkConfig{
			Driver: SinkLocal,
			Dir:    "uploads",
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.usagelog.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".usagelog.json"), nil
}

// defaultDatabasePath returns ~/.usagelog/usage.db, falling back to the
// working directory when there is no home directory.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "usage.db"
	}
	return filepath.Join(home, ".usagelog", "usage.db")
}
