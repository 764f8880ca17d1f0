// Package driver resolves a set of ESTree files in parallel and links
// them into a dependency graph.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/config"
	"github.com/t14raptor/fastscope/depgraph"
	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/estree"
	"github.com/t14raptor/fastscope/resolver"
	"github.com/t14raptor/fastscope/source"
)

type Options struct {
	Config config.Config
	// Snapshot keeps the canonical scope graph of every file.
	Snapshot bool
	// Dump keeps the textual scope graph of every file.
	Dump   bool
	Cache  *Cache
	Logger *slog.Logger
}

// Dependency is a resolved import or require of a file.
type Dependency struct {
	Specifier string
	Kind      resolver.DependencyKind
	File      source.FileID
	Span      source.Span
}

// FileResult is the outcome of resolving one file.
type FileResult struct {
	Path   string
	File   source.FileID
	Module bool
	// Diagnostics are sorted by position.
	Diagnostics  []diag.Diagnostic
	Dropped      int
	Dependencies []Dependency
	Snapshot     *resolver.Snapshot
	Dump         string
	Cached       bool
	Duration     time.Duration
}

func (r *FileResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

type Result struct {
	Files   *source.FileSet
	Results []FileResult
	Graph   *depgraph.Graph[source.FileID, resolver.DependencyKind]
	Order   *depgraph.Topo[source.FileID]
	// Cycles holds one warning per import cycle.
	Cycles []diag.Diagnostic
}

// Diagnostics returns the diagnostics of every file followed by the
// cycle warnings.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for i := range r.Results {
		out = append(out, r.Results[i].Diagnostics...)
	}
	return append(out, r.Cycles...)
}

func (r *Result) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics() {
		if d.Severity >= diag.SevError {
			n++
		}
	}
	return n
}

// Run resolves every file under paths. Each file gets its own arena and
// goroutine; only the FileSet is shared. The FileSet holds the JavaScript
// source next to each ESTree file, when there is one, so that positions
// and snippets refer to it. I/O errors on the inputs become diagnostics;
// the returned error is reserved for bad paths and cancellation.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	inputs, err := ListInputs(paths)
	if err != nil {
		return nil, err
	}

	files := source.NewFileSet()
	ids := make([]source.FileID, len(inputs))
	data := make([][]byte, len(inputs))
	loadErrs := make([]error, len(inputs))
	for i, path := range inputs {
		var text []byte
		data[i], text, loadErrs[i] = readInput(path)
		ids[i] = files.Add(path, text)
	}
	deps, err := newPathResolver(files, ids, opts.Config.Modules)
	if err != nil {
		return nil, err
	}

	jobs := opts.Config.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(inputs))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(inputs))))
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &results[i]
			res.Path = files.Get(ids[i]).Path
			res.File = ids[i]
			if loadErrs[i] != nil {
				res.Diagnostics = []diag.Diagnostic{{
					Severity: diag.SevError,
					Code:     diag.IOLoadFile,
					Message:  loadErrs[i].Error(),
					Primary:  source.Span{File: ids[i]},
				}}
				return nil
			}
			resolveFile(res, data[i], files, deps, opts, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	out := &Result{Files: files, Results: results}
	out.link()
	log.Info("resolved files",
		"files", len(results),
		"errors", out.ErrorCount(),
		"cycles", len(out.Cycles),
		"duration", time.Since(start))
	return out, nil
}

func resolveFile(res *FileResult, content []byte, files *source.FileSet, deps *pathResolver, opts Options, log *slog.Logger) {
	start := time.Now()
	log = log.With("path", res.Path)
	cfg := opts.Config

	var key Digest
	if opts.Cache != nil {
		key = cacheKey(cfg, deps.Fingerprint(), content)
		var entry cacheEntry
		if ok, err := opts.Cache.get(key, &entry); err != nil {
			log.Warn("cache read failed", "err", err)
		} else if ok && entry.restore(res, deps, opts) {
			res.Cached = true
			res.Duration = time.Since(start)
			log.Debug("cache hit", "duration", res.Duration)
			return
		}
	}

	log.Debug("resolving")
	actx := ast.NewContext(ast.Options{Files: files, MaxDiagnostics: cfg.Output.MaxDiagnostics, Logger: log})
	defer actx.Close()

	var program *ast.NodeRc
	actx.With(func(lock *ast.GCLock) {
		prog, err := estree.Load(lock, res.File, content)
		if err != nil {
			reportLoadError(lock.SourceManager(), res.File, err)
			return
		}
		program = ast.NewNodeRc(lock, prog.Node)
		res.Module = prog.Module || cfg.Modules.Enabled
	})
	// only the program is rooted, so nodes the loader dropped go here
	actx.Collect()

	actx.With(func(lock *ast.GCLock) {
		sm := lock.SourceManager()
		if program != nil {
			resolveProgram(res, lock, program.Get(lock), deps, opts, log)
			program.Release()
		}
		res.Diagnostics = append(res.Diagnostics, sm.Diagnostics()...)
		res.Dropped = sm.Bag().Dropped()
	})

	res.Duration = time.Since(start)
	log.Info("resolved file",
		"module", res.Module,
		"diagnostics", len(res.Diagnostics),
		"dependencies", len(res.Dependencies),
		"duration", res.Duration)

	if opts.Cache != nil {
		if err := opts.Cache.put(key, newCacheEntry(res, deps, opts)); err != nil {
			log.Warn("cache write failed", "err", err)
		}
	}
}

func resolveProgram(res *FileResult, lock *ast.GCLock, prog ast.NodeRef, deps *pathResolver, opts Options, log *slog.Logger) {
	ropts := opts.Config.ResolverOptions()
	ropts.Logger = log
	var sem *resolver.SemContext
	if res.Module {
		ropts.Dependencies = deps
		sem = resolver.ResolveModule(lock, prog, ropts)
	} else {
		sem = resolver.Resolve(lock, prog, ropts)
	}
	defer sem.Release()

	for _, req := range sem.Requires() {
		res.Dependencies = append(res.Dependencies, Dependency{
			Specifier: req.Specifier,
			Kind:      req.Kind,
			File:      req.File,
			Span:      req.Span,
		})
	}
	if opts.Snapshot {
		res.Snapshot = sem.Snapshot(lock, prog)
	}
	if opts.Dump {
		var buf bytes.Buffer
		if err := sem.Dump(lock, &buf); err != nil {
			log.Warn("dump failed", "err", err)
		}
		res.Dump = buf.String()
	}
}

// reportLoadError turns every error joined by the loader into its own
// diagnostic at the start of the file.
func reportLoadError(sm *diag.SourceManager, file source.FileID, err error) {
	for _, msg := range strings.Split(err.Error(), "\n") {
		sm.Error(diag.IOBadESTree, source.Span{File: file}, msg).Emit()
	}
}
