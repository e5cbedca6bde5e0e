// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package engine runs one extraction over a module tree: it selects source
// files, parses them, and feeds the statements through the handler into a
// fresh registry.
package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"grimm.is/voxdoc/internal/diagnostic"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/handler"
	"grimm.is/voxdoc/internal/hiera"
	"grimm.is/voxdoc/internal/logging"
	"grimm.is/voxdoc/internal/metrics"
	"grimm.is/voxdoc/internal/parser"
	"grimm.is/voxdoc/internal/parser/puppet"
	"grimm.is/voxdoc/internal/parser/ruby"
	"grimm.is/voxdoc/internal/parser/taskjson"
	"grimm.is/voxdoc/internal/registry"
)

// Options configures a run.
type Options struct {
	// Root is the module directory.
	Root string
	// Include and Exclude are slash-separated glob patterns matched
	// against paths relative to Root. ** crosses directories.
	Include []string
	Exclude []string
	// Hiera enables class parameter defaults from the module's hiera.yaml.
	Hiera bool
	// Overrides maps "<entity>::<parameter>" to a Puppet literal.
	Overrides map[string]string
	Logger    *logging.Logger
}

// Result is everything one run produced.
type Result struct {
	RunID       string
	Root        string
	StartedAt   time.Time
	Duration    time.Duration
	Registry    *registry.Registry
	Diagnostics *diagnostic.Collector
	Metrics     *metrics.Metrics

	// Files lists the processed files, relative to Root, in processing order.
	Files      []string
	Failed     int
	Statements int
	// Cancelled is set when the context ended before every file was processed.
	Cancelled bool
}

// NewParserSet returns a parser set with every supported dialect.
func NewParserSet(diags *diagnostic.Collector) *parser.Set {
	set := parser.NewSet(diags)
	set.Register(puppet.New(), ".pp")
	set.Register(ruby.New(), ".rb")
	set.Register(taskjson.New(), ".json")
	return set
}

// Run processes the module at opts.Root. Per-file problems are recorded as
// diagnostics in the result. An error is returned when the root cannot be
// read, a pattern does not compile, or ctx is cancelled; in the last case
// the partial result is returned with it.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("engine")
	}

	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, errors.At(errors.Wrap(err, errors.KindIO, "cannot read module root"), opts.Root, 0)
	}
	if !info.IsDir() {
		return nil, errors.At(errors.Errorf(errors.KindIO, "module root %s is not a directory", opts.Root), opts.Root, 0)
	}

	include, err := compile(opts.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compile(opts.Exclude)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:       uuid.NewString(),
		Root:        opts.Root,
		StartedAt:   time.Now(),
		Registry:    registry.New(),
		Diagnostics: diagnostic.NewCollector(logger),
		Metrics:     metrics.New(),
	}
	logger = logger.With("run", res.RunID)
	logger.Info("starting run", "root", opts.Root)

	var resolver *hiera.Resolver
	if opts.Hiera {
		var errs []error
		resolver, errs = hiera.New(opts.Root, logger.WithComponent("hiera"))
		for _, e := range errs {
			res.Diagnostics.Report(e)
		}
	}

	files, err := selectFiles(os.DirFS(opts.Root), include, exclude, res.Diagnostics)
	if err != nil {
		return nil, errors.At(errors.Wrap(err, errors.KindIO, "cannot read module root"), opts.Root, 0)
	}
	set := NewParserSet(res.Diagnostics)
	logger.Debug("selected files", "count", len(files), "extensions", set.Extensions())
	h := handler.New(res.Registry, res.Diagnostics, logger.WithComponent("handler"), handler.Options{
		Hiera:     resolver,
		Overrides: opts.Overrides,
	})

	var runErr error
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			runErr = err
			logger.Warn("run cancelled", "remaining", len(files)-len(res.Files))
			break
		}
		res.processFile(rel, set, h, logger)
	}

	res.finish()
	logger.Info("run complete",
		"files", len(res.Files),
		"entities", res.Registry.Len(),
		"warnings", len(res.Diagnostics.Warnings()),
		"errors", len(res.Diagnostics.Errors()),
		"duration", res.Duration)
	return res, runErr
}

func (r *Result) processFile(rel string, set *parser.Set, h *handler.Handler, logger *logging.Logger) {
	r.Files = append(r.Files, rel)

	source, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(rel)))
	if err != nil {
		r.Failed++
		r.Diagnostics.Report(errors.At(errors.Wrapf(err, errors.KindIO, "Failed to read %s", rel), rel, 0))
		r.Metrics.Files.WithLabelValues(dialectOf(set, rel), metrics.ResultFailed).Inc()
		return
	}

	stmts, dialect, err := set.Parse(rel, source)
	switch {
	case dialect == "":
		logger.Debug("no dialect for file", "file", rel)
		r.Metrics.Files.WithLabelValues("none", metrics.ResultSkipped).Inc()
		return
	case err != nil:
		r.Failed++
		r.Metrics.Files.WithLabelValues(dialect, metrics.ResultFailed).Inc()
		return
	}
	r.Metrics.Files.WithLabelValues(dialect, metrics.ResultParsed).Inc()
	logger.Debug("parsed file", "file", rel, "dialect", dialect, "statements", len(stmts))

	for _, stmt := range stmts {
		r.Statements++
		r.Metrics.Statements.WithLabelValues(stmt.Kind.String()).Inc()
		if err := h.Handle(stmt); err != nil {
			r.Diagnostics.Report(err)
		}
	}
}

func (r *Result) finish() {
	r.Duration = time.Since(r.StartedAt)
	for _, g := range r.Registry.Groups() {
		r.Metrics.Entities.WithLabelValues(g.Key()).Set(float64(g.Len()))
	}
	for _, d := range r.Diagnostics.All() {
		r.Metrics.Diagnostics.WithLabelValues(d.Severity.String(), d.Kind.String()).Inc()
	}
	r.Metrics.Duration.Set(r.Duration.Seconds())
	r.Metrics.LastRun.Set(float64(r.StartedAt.Add(r.Duration).Unix()))
}

func dialectOf(set *parser.Set, rel string) string {
	if d, ok := set.DialectFor(rel); ok {
		return d.Name()
	}
	return "none"
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Attr(errors.Wrapf(err, errors.KindConfig, "invalid source pattern %q", p), "pattern", p)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// selectFiles walks fsys and returns the included, non-excluded files as
// slash-separated relative paths in lexical order. Hidden directories are
// skipped. Unreadable subdirectories are reported and skipped; an
// unreadable root is returned as an error.
func selectFiles(fsys fs.FS, include, exclude []glob.Glob, diags *diagnostic.Collector) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			if rel == "." {
				return err
			}
			diags.Report(errors.At(errors.Wrapf(err, errors.KindIO, "Failed to read %s", rel), rel, 0))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
