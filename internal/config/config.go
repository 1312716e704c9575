// Package config loads the zipsh configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
)

const (
	// EnvPrefix prefixes environment variables that override config keys.
	EnvPrefix = "ZIPSH"

	KeyVFSPath       = "vfs_path"
	KeyLogPath       = "log_path"
	KeyStartupScript = "startup_script"
)

// ErrMissingField is returned when a required key is absent or empty.
var ErrMissingField = errors.New("missing required field")

// Config holds the three settings a session needs.
type Config struct {
	// VFSPath is the zip archive used as the virtual filesystem
	VFSPath string `mapstructure:"vfs_path"`
	// LogPath is the CSV action journal
	LogPath string `mapstructure:"log_path"`
	// StartupScript is relative to the archive root
	StartupScript string `mapstructure:"startup_script"`
}

// Load reads and validates the JSON configuration at path. Comments and
// trailing commas are accepted. Each key may be overridden from the
// environment, e.g. ZIPSH_VFS_PATH.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes configuration from raw JSON(C) bytes.
func Parse(data []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{KeyVFSPath, KeyLogPath, KeyStartupScript} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadConfig(bytes.NewReader(jsonc.ToJSON(data))); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every required field is set.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.VFSPath) == "" {
		missing = append(missing, KeyVFSPath)
	}
	if strings.TrimSpace(c.LogPath) == "" {
		missing = append(missing, KeyLogPath)
	}
	if strings.TrimSpace(c.StartupScript) == "" {
		missing = append(missing, KeyStartupScript)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}
