package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plcore.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
	if !cfg.Plugins.Delayed || !cfg.Plugins.Recursive || cfg.Plugins.Watch {
		t.Errorf("plugins = %+v", cfg.Plugins)
	}
	if d, _ := cfg.Timeout(); d != 5*time.Second {
		t.Errorf("Timeout = %s", d)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
build_type = "debug"

[plugins]
paths = ["a", "/abs/b"]
watch = true
`)
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.BuildType != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want default", cfg.LogFormat)
	}
	want := []string{filepath.Join(filepath.Dir(path), "a"), "/abs/b"}
	if !reflect.DeepEqual(cfg.Plugins.Paths, want) {
		t.Errorf("Paths = %v, want %v", cfg.Plugins.Paths, want)
	}
	if !cfg.Plugins.Watch || !cfg.Plugins.Delayed {
		t.Errorf("plugins = %+v", cfg.Plugins)
	}
}

func TestLoadFileKeepsDefaultPaths(t *testing.T) {
	path := writeConfig(t, `log_level = "warn"`)
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Plugins.Paths, []string{"plugins"}) {
		t.Errorf("Paths = %v", cfg.Plugins.Paths)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "none.toml")); err != nil {
		t.Errorf("missing file: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("missing file changed the config")
	}
}

func TestLoadFileParseError(t *testing.T) {
	path := writeConfig(t, "log_level = \n")
	err := Default().LoadFile(path)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Path != path || pe.Line < 1 {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PLCORE_LOG_FORMAT":   "json",
		"PLCORE_WATCH":        "true",
		"PLCORE_DELAYED":      "0",
		"PLCORE_PLUGIN_PATHS": "x" + string(os.PathListSeparator) + "y",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.LogFormat != "json" || !cfg.Plugins.Watch || cfg.Plugins.Delayed {
		t.Errorf("cfg = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Plugins.Paths, []string{"x", "y"}) {
		t.Errorf("Paths = %v", cfg.Plugins.Paths)
	}

	env = map[string]string{"PLCORE_WATCH": "maybe"}
	if err := Default().ApplyEnv(lookup); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("error = %v, want ErrInvalidBool", err)
	}

	cfg = Default()
	if err := cfg.ApplyEnv(noEnv); err != nil || !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("empty env changed config: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want error
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"build type", func(c *Config) { c.BuildType = "profile" }, ErrInvalidBuildType},
		{"timeout", func(c *Config) { c.ScriptTimeout = "soon" }, ErrInvalidDuration},
		{"negative timeout", func(c *Config) { c.ScriptTimeout = "-1s" }, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate = %v, want %v", err, tt.want)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error %v is not a *ValidationError", err)
			}
		})
	}
}
