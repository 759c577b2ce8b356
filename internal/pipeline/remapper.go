package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"srmap/internal/classfile"
	"srmap/internal/remap"

	"golang.org/x/sync/errgroup"
)

// FileKind selects how a file is rewritten.
type FileKind string

const (
	KindSource FileKind = "source"
	KindClass  FileKind = "class"
)

// Result is the outcome of remapping one file.
type Result struct {
	Path     string
	Kind     FileKind
	Changed  bool
	Replaced int // instructions replaced (sources) or constants changed (classes)
	Err      error
}

// Options configures a Remapper.
type Options struct {
	Workers int
	Logger  *slog.Logger
}

// Remapper rewrites files with one Rewriter. Files are independent and the
// mappings are read-only, so files are processed concurrently.
type Remapper struct {
	rw      *remap.Rewriter
	workers int
	logger  *slog.Logger
}

// NewRemapper creates a remapper.
func NewRemapper(rw *remap.Rewriter, opts Options) *Remapper {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Remapper{rw: rw, workers: opts.Workers, logger: opts.Logger}
}

// RemapFiles rewrites every file and returns one result per file in input
// order. A file that fails does not stop the others; the returned error is
// only set when ctx is cancelled.
func (r *Remapper) RemapFiles(ctx context.Context, files []string, kind FileKind) ([]Result, error) {
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.RemapFile(path, kind)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// RemapFile rewrites a single file according to its kind.
func (r *Remapper) RemapFile(path string, kind FileKind) Result {
	var res Result
	switch kind {
	case KindClass:
		res = r.remapClass(path)
	default:
		res = r.remapSource(path)
	}
	res.Path, res.Kind = path, kind

	if res.Err != nil {
		r.logger.Warn("remap failed", "file", path, "error", res.Err)
	} else if res.Changed {
		r.logger.Debug("remapped", "file", path, "replaced", res.Replaced)
	}
	return res
}

func (r *Remapper) remapSource(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Err: err}
	}

	out, replaced, err := r.rw.RewriteText(data)
	if err != nil {
		return Result{Err: err}
	}
	if replaced == 0 {
		return Result{}
	}
	if err := writeFile(path, out); err != nil {
		return Result{Err: err}
	}
	return Result{Changed: true, Replaced: replaced}
}

func (r *Remapper) remapClass(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Err: err}
	}

	cf, err := classfile.Parse(data)
	if err != nil {
		return Result{Err: err}
	}

	consts := cf.Strings()
	values := make([]string, len(consts))
	for i, c := range consts {
		values[i] = c.Value
	}

	var setErr error
	changed, err := r.rw.RewriteConstants(values, func(i int, v string) {
		if _, err := cf.SetString(consts[i].Index, v); err != nil && setErr == nil {
			setErr = err
		}
	})
	if err != nil {
		return Result{Err: err}
	}
	if setErr != nil {
		return Result{Err: setErr}
	}
	if len(changed) == 0 {
		return Result{}
	}

	if err := writeFile(path, cf.Bytes()); err != nil {
		return Result{Err: err}
	}
	return Result{Changed: true, Replaced: len(changed)}
}

func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Summary totals a set of results.
type Summary struct {
	Files   int
	Changed int
	Failed  int
}

// Summarize counts changed and failed files.
func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	for _, res := range results {
		if res.Changed {
			s.Changed++
		}
		if res.Err != nil {
			s.Failed++
		}
	}
	return s
}
