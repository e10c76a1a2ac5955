package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// Load resolves the configuration from defaults, the config file, and the
// environment, then validates it.
//
// An empty path means the default location; a missing default file is not
// an error. An explicit path that does not exist is.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		defaultPath, err := GetDefaultConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	if path != "" {
		if err := readInto(cfg, path); err != nil {
			var notFound *ConfigNotFoundError
			if explicit || !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFrom reads the config file at path on top of the defaults, without
// consulting the environment.
func LoadFrom(path string) (*Config, error) {
	cfg := NewConfig()
	if err := readInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInto decodes the JSON file at path over cfg with enhanced error handling.
func readInto(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'usagelog init' to create a configuration file",
			}
		}
		return errors.Wrap(err, "failed to access config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return errors.Wrap(err, "failed to read config")
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("JSON parse error: %v", err),
			Hint:    "Restore from .bak file if available",
		}
	}

	return nil
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s -> Properties -> Security -> Edit permissions", path)
	default:
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails reports the file's current permission bits.
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
