// Package main is the entry point for macroplay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/macroplay/internal/app"
	"github.com/dshills/macroplay/internal/config"
	"github.com/dshills/macroplay/internal/inject/robot"
	"github.com/dshills/macroplay/internal/input/macro"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()
	opts.NewSink = newSink

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	if opts.Check {
		if err := application.Check(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newSink(kind string, logger *slog.Logger) (macro.Sink, error) {
	if kind == config.SinkRobot {
		return robot.New(logger), nil
	}
	return nil, fmt.Errorf("unknown sink %q", kind)
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ActionsPath, "actions", "", "Path to the macro source (overrides actions.path)")
	flag.StringVar(&opts.ActionsPath, "a", "", "Path to the macro source (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Log injected input instead of sending it")
	flag.BoolVar(&opts.Check, "check", false, "Compile the macro source, print it and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "macroplay - chat-triggered input macros\n\n")
		fmt.Fprintf(os.Stderr, "Usage: macroplay [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  macroplay                     Read messages from stdin\n")
		fmt.Fprintf(os.Stderr, "  macroplay -a games.txt        Use another macro source\n")
		fmt.Fprintf(os.Stderr, "  macroplay -check              Validate the macro source\n")
		fmt.Fprintf(os.Stderr, "  macroplay -dry-run            Log input instead of injecting it\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("macroplay %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		if _, err := config.ParseLogLevel(opts.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	return opts
}
