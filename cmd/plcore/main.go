// Package main is the entry point for the plcore class registry tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/plcore/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type globalOptions struct {
	app.Options
	plugins string
	format  string
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("plcore", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts globalOptions
	var showVersion bool
	fs.StringVar(&opts.ConfigPath, "config", "plcore.toml", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "plcore.toml", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFormat, "log-format", "", "Log format (text, json)")
	fs.StringVar(&opts.BuildType, "build-type", "", "Host build type (release, debug)")
	fs.StringVar(&opts.plugins, "plugins", "", "Plugin directories, separated by the OS path list separator")
	fs.BoolVar(&opts.Eager, "eager", false, "Load plugin binaries immediately instead of on first use")
	fs.StringVar(&opts.format, "format", "text", "Output format (text, yaml)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "plcore - class registry and plugin loader\n\n")
		fmt.Fprintf(stderr, "Usage: plcore [options] <command> [arguments]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  modules                          List loaded modules\n")
		fmt.Fprintf(stderr, "  classes [-base B] [-recursive]   List classes\n")
		fmt.Fprintf(stderr, "  describe <class>                 Show the members of a class\n")
		fmt.Fprintf(stderr, "  create <class> [ctor] [params]   Create an object and show its attributes\n")
		fmt.Fprintf(stderr, "  watch                            Load plugins as they appear\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  plcore -plugins ./plugins classes -base PLCore::Object -recursive\n")
		fmt.Fprintf(stderr, "  plcore create Shapes::Circle WithRadius 'Param0=\"2.5\"'\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "plcore %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	out, err := newPrinter(stdout, opts.format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
		return 2
	}

	if opts.plugins != "" {
		opts.PluginPaths = filepath.SplitList(opts.plugins)
	}
	opts.LogOutput = stderr

	application, err := app.New(opts.Options)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	application.Scan()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if rest[0] != "watch" {
		application.StartWatching(ctx)
	}

	if err := cmd(ctx, application, out, rest[1:]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}
	return 0
}
