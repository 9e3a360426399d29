// Package config loads plcore settings.
//
// Settings come from three layers, later layers overriding earlier ones:
// built-in defaults, a TOML file and PLCORE_* environment variables.
// Command-line flags are applied by the caller on top of the result.
//
//	log_level      = "info"     # debug|info|warn|error
//	log_format     = "text"     # text|json
//	build_type     = "release"  # release|debug
//	script_timeout = "5s"
//
//	[plugins]
//	paths     = ["plugins"]
//	recursive = true
//	delayed   = true
//	watch     = false
//
// A missing file is not an error; the defaults apply.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PLCORE_"

// Config holds all settings.
type Config struct {
	LogLevel      string  `toml:"log_level"`
	LogFormat     string  `toml:"log_format"`
	BuildType     string  `toml:"build_type"`
	ScriptTimeout string  `toml:"script_timeout"`
	Plugins       Plugins `toml:"plugins"`
}

// Plugins configures plugin discovery.
type Plugins struct {
	// Paths are the directories scanned for .plugin descriptors.
	Paths []string `toml:"paths"`
	// Recursive scans subdirectories.
	Recursive bool `toml:"recursive"`
	// Delayed registers dummy classes and loads binaries on first use.
	Delayed bool `toml:"delayed"`
	// Watch loads descriptors added after startup.
	Watch bool `toml:"watch"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		BuildType:     "release",
		ScriptTimeout: "5s",
		Plugins: Plugins{
			Paths:     []string{"plugins"},
			Recursive: true,
			Delayed:   true,
		},
	}
}

// Load reads the file at path over the defaults and applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes the TOML file at path into c. Keys absent from the file
// keep their current values. Relative plugin paths are resolved against the
// file's directory.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	prev := c.Plugins.Paths
	c.Plugins.Paths = nil
	if err := toml.Unmarshal(data, c); err != nil {
		c.Plugins.Paths = prev
		return newParseError(path, err)
	}

	if c.Plugins.Paths == nil {
		c.Plugins.Paths = prev
		return nil
	}
	base := filepath.Dir(path)
	for i, p := range c.Plugins.Paths {
		if p != "" && !filepath.IsAbs(p) {
			c.Plugins.Paths[i] = filepath.Join(base, p)
		}
	}
	return nil
}

// ApplyEnv applies PLCORE_* overrides read through lookup.
//
//	PLCORE_LOG_LEVEL, PLCORE_LOG_FORMAT, PLCORE_BUILD_TYPE,
//	PLCORE_SCRIPT_TIMEOUT, PLCORE_PLUGIN_PATHS (list separated by the OS
//	path list separator), PLCORE_RECURSIVE, PLCORE_DELAYED, PLCORE_WATCH
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
		"BUILD_TYPE":     &c.BuildType,
		"SCRIPT_TIMEOUT": &c.ScriptTimeout,
	}
	for key, dst := range str {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	flags := map[string]*bool{
		"RECURSIVE": &c.Plugins.Recursive,
		"DELAYED":   &c.Plugins.Delayed,
		"WATCH":     &c.Plugins.Watch,
	}
	for key, dst := range flags {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &ValidationError{Key: EnvPrefix + key, Value: v, Err: ErrInvalidBool}
		}
		*dst = b
	}

	if v, ok := lookup(EnvPrefix + "PLUGIN_PATHS"); ok {
		c.Plugins.Paths = filepath.SplitList(v)
	}
	return nil
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{Key: "log_level", Value: c.LogLevel, Err: ErrInvalidLogLevel})
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, &ValidationError{Key: "log_format", Value: c.LogFormat, Err: ErrInvalidLogFormat})
	}

	switch strings.ToLower(c.BuildType) {
	case "release", "debug":
	default:
		errs = append(errs, &ValidationError{Key: "build_type", Value: c.BuildType, Err: ErrInvalidBuildType})
	}

	if _, err := c.Timeout(); err != nil {
		errs = append(errs, &ValidationError{Key: "script_timeout", Value: c.ScriptTimeout, Err: ErrInvalidDuration})
	}

	return errors.Join(errs...)
}

// Timeout returns the parsed script timeout. An empty value means no
// timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.ScriptTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ScriptTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}
