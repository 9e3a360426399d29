// Package app wires configuration, logging, the class registry and the
// plugin watcher into one application.
package app

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/dshills/plcore/internal/config"
	"github.com/dshills/plcore/internal/core"
	"github.com/dshills/plcore/internal/logging"
	"github.com/dshills/plcore/internal/rtti"
	"github.com/dshills/plcore/internal/script"
	"github.com/dshills/plcore/internal/watcher"
)

// Application errors.
var (
	// ErrClosed indicates the application has been closed.
	ErrClosed = errors.New("application closed")
)

// Options configures the application. Non-empty fields override the
// configuration file and environment.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel overrides log_level.
	LogLevel string

	// LogFormat overrides log_format.
	LogFormat string

	// BuildType overrides build_type.
	BuildType string

	// PluginPaths overrides plugins.paths.
	PluginPaths []string

	// Eager disables delayed loading.
	Eager bool

	// LogOutput receives log output. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application owns the registry. The registry is not safe for concurrent
// use; every access goes through Do or the methods below, which serialize
// with plugin loads triggered by the watcher.
type Application struct {
	mu sync.Mutex

	cfg     *config.Config
	log     *logging.Logger
	reg     *rtti.Registry
	metrics *Metrics
	unsub   func()

	watcher *watcher.Watcher
	closed  bool
}

// New loads the configuration and creates the registry with the built-in
// classes registered.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.Format(strings.ToLower(cfg.LogFormat)),
		Output: opts.LogOutput,
	})

	buildType, err := rtti.ParseBuildType(cfg.BuildType)
	if err != nil {
		return nil, &InitError{Component: "registry", Err: err}
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, &InitError{Component: "script", Err: err}
	}

	reg := rtti.NewRegistry(
		rtti.WithLogger(log),
		rtti.WithBuildType(buildType),
		rtti.WithOpener(".lua", script.NewOpener(log.WithComponent("script"), script.WithExecutionTimeout(timeout))),
	)

	a := &Application{
		cfg:     cfg,
		log:     log.WithComponent("app"),
		reg:     reg,
		metrics: NewMetrics(),
	}
	a.unsub = reg.Subscribe(a.metrics.Record)
	core.Register(reg)

	a.log.Debug("build type %s, platform %s/%d", buildType, reg.Platform().Name, reg.Platform().Bits)
	return a, nil
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.BuildType != "" {
		cfg.BuildType = opts.BuildType
	}
	if len(opts.PluginPaths) > 0 {
		cfg.Plugins.Paths = opts.PluginPaths
	}
	if opts.Eager {
		cfg.Plugins.Delayed = false
	}
}

// Config returns the effective configuration.
func (a *Application) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *Application) Logger() *logging.Logger {
	return a.log
}

// Metrics returns the registry event counters.
func (a *Application) Metrics() *Metrics {
	return a.metrics
}

// Do runs fn with exclusive access to the registry.
func (a *Application) Do(fn func(r *rtti.Registry) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return fn(a.reg)
}

// Scan loads the descriptors in every configured plugin path. Returns
// false if any path could not be scanned.
func (a *Application) Scan() bool {
	ok := true
	_ = a.Do(func(r *rtti.Registry) error {
		for _, path := range a.cfg.Plugins.Paths {
			if !r.ScanPlugins(path, a.cfg.Plugins.Recursive, a.cfg.Plugins.Delayed) {
				ok = false
			}
		}
		return nil
	})
	return ok
}

// LoadPlugin loads one descriptor with the configured delayed mode.
func (a *Application) LoadPlugin(path string) bool {
	loaded := false
	_ = a.Do(func(r *rtti.Registry) error {
		loaded = r.LoadPlugin(path, a.cfg.Plugins.Delayed)
		return nil
	})
	return loaded
}

// Close stops the watcher and unloads all modules.
func (a *Application) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()

	var errs []error
	if w != nil {
		errs = append(errs, w.Close())
	}
	errs = append(errs, a.reg.Close())
	a.unsub()
	return errors.Join(errs...)
}

// InitError reports a component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
