// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// voxdoc extracts documentation metadata from an OpenVox module.
//
// Usage:
//
//	voxdoc -init                          # write a starter voxdoc.hcl
//	voxdoc -root ./mymodule -output REFERENCE.json
//	voxdoc -format yaml                   # document on stdout
//	voxdoc -check                         # exit 1 if REFERENCE.json is stale
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"grimm.is/voxdoc/internal/config"
	"grimm.is/voxdoc/internal/engine"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/logging"
	"grimm.is/voxdoc/internal/output"
	"grimm.is/voxdoc/internal/report"
	"grimm.is/voxdoc/internal/store"
)

// Exit codes.
const (
	exitOK      = 0
	exitDrift   = 1
	exitFailure = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	config     string
	root       string
	format     string
	output     string
	check      bool
	initConfig bool
	logLevel   string
	logFormat  string
	warnings   bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("voxdoc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "Config file (default: "+config.DefaultFile+" if present)")
	fs.StringVar(&f.root, "root", "", "Module root (overrides module_root)")
	fs.StringVar(&f.format, "format", "", "Output format: json, yaml")
	fs.StringVar(&f.output, "output", "", "Output file, or - for stdout")
	fs.BoolVar(&f.check, "check", false, "Compare against the existing output file and exit 1 on drift")
	fs.BoolVar(&f.initConfig, "init", false, "Write a starter config file and exit")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: text, json")
	fs.BoolVar(&f.warnings, "warnings", false, "List every warning in the summary")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// loadConfig reads the explicit config file, else the default file when
// present, else built-in defaults. Flags are applied on top.
func loadConfig(f *flags) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case f.config != "":
		c, err := config.LoadFile(f.config)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		if _, err := os.Stat(config.DefaultFile); err == nil {
			c, err := config.LoadFile(config.DefaultFile)
			if err != nil {
				return nil, err
			}
			cfg = c
		} else {
			cfg = config.Default()
		}
	}

	if f.root != "" {
		cfg.ModuleRoot = f.root
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	switch f.output {
	case "":
	case "-":
		cfg.Output.Path = ""
	default:
		cfg.Output.Path = f.output
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}

	if errs := cfg.Validate(); errs.HasErrors() {
		return nil, errs.Err()
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{
		Output:    stderr,
		Level:     level,
		JSON:      cfg.LogFormat == "json",
		Timestamp: true,
	}), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return exitFailure
	}

	if f.initConfig {
		path := f.config
		if path == "" {
			path = config.DefaultFile
		}
		if err := config.WriteDefault(path); err != nil {
			fmt.Fprintf(stderr, "Error writing config: %v\n", err)
			return exitFailure
		}
		fmt.Fprintf(stderr, "Wrote %s\n", path)
		return exitOK
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitFailure
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	logging.SetDefault(logger)

	overrides, err := cfg.Overrides()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitFailure
	}

	if f.check && cfg.Output.Path == "" {
		fmt.Fprintln(stderr, "Error: -check needs an output path (set output.path or -output)")
		return exitFailure
	}

	res, err := engine.Run(ctx, engine.Options{
		Root:      cfg.ModuleRoot,
		Include:   cfg.Source.Include,
		Exclude:   cfg.Source.Exclude,
		Hiera:     cfg.HieraEnabled(),
		Overrides: overrides,
		Logger:    logger.WithComponent("engine"),
	})
	if err != nil {
		if res != nil {
			fmt.Fprintln(stderr, report.Summary(res, report.Options{ShowWarnings: f.warnings}))
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	generated, err := output.Render(output.Document(res.Registry), cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Error rendering output: %v\n", err)
		return exitFailure
	}

	if f.check {
		return check(cfg.Output.Path, generated, stdout, stderr)
	}

	if cfg.Output.Path == "" {
		if _, err := stdout.Write(generated); err != nil {
			fmt.Fprintf(stderr, "Error writing output: %v\n", err)
			return exitFailure
		}
	} else if err := config.WriteFileAtomic(cfg.Output.Path, generated, 0o644); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return exitFailure
	}

	if cfg.MetricsFile != "" {
		if err := res.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.WithError(err).Warn("failed to write metrics", "file", cfg.MetricsFile)
		}
	}
	if cfg.Store != "" {
		if err := record(ctx, cfg, res, logger); err != nil {
			logger.WithError(err).Warn("failed to record run", "file", cfg.Store)
		}
	}

	fmt.Fprintln(stderr, report.Summary(res, report.Options{ShowWarnings: f.warnings}))
	return exitOK
}

func check(path string, generated []byte, stdout, stderr io.Writer) int {
	current, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(stderr, "Error reading %s: %v\n", path, err)
		return exitFailure
	}

	diff, err := output.Diff(path, current, generated)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	if diff == "" {
		fmt.Fprintf(stderr, "%s is up to date\n", path)
		return exitOK
	}
	fmt.Fprintln(stdout, report.HighlightDiff(diff))
	fmt.Fprintf(stderr, "%s is out of date\n", path)
	return exitDrift
}

func record(ctx context.Context, cfg *config.Config, res *engine.Result, logger *logging.Logger) error {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := res.Record(ctx, st); err != nil {
		return errors.Attr(err, "run", res.RunID)
	}

	retention, err := cfg.Retention()
	if err != nil || retention == 0 {
		return err
	}
	pruned, err := st.Cleanup(ctx, retention)
	if err != nil {
		return err
	}
	if pruned > 0 {
		logger.Info("pruned stored runs", "count", pruned, "retention", retention)
	}
	return nil
}
