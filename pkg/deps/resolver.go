package deps

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/observability"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// Result is the outcome of a resolution run.
type Result struct {
	// Files holds every resolved file once, roots first in request order,
	// each followed by its own dependencies.
	Files []pack.File

	// Failed maps the key of each dropped branch to its error.
	Failed map[string]error
}

// Err aggregates Failed into one error, or returns nil.
func (r *Result) Err() error {
	keys := make([]string, 0, len(r.Failed))
	for k := range r.Failed {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var result *multierror.Error
	for _, k := range keys {
		result = multierror.Append(result, fmt.Errorf("%s: %w", k, r.Failed[k]))
	}
	return result.ErrorOrNil()
}

// Resolver expands references into their required-dependency closure.
type Resolver struct {
	source pack.Source
	opts   Options
}

// NewResolver creates a Resolver building files through src.
func NewResolver(src pack.Source, opts Options) *Resolver {
	return &Resolver{source: src, opts: opts.WithDefaults()}
}

// Resolve resolves ref and its transitive required dependencies. The
// closure is tagged with scope.
func (r *Resolver) Resolve(ctx context.Context, ref pack.Reference, scope pack.Scope) *Result {
	return r.ResolveAll(ctx, []pack.Reference{ref}, scope)
}

// ResolveAll resolves several roots with one shared visited set. When two
// roots name the same project, the later one wins.
func (r *Resolver) ResolveAll(ctx context.Context, refs []pack.Reference, scope pack.Scope) *Result {
	start := time.Now()
	w := &walk{
		r:       r,
		sem:     semaphore.NewWeighted(int64(r.opts.Concurrency)),
		visited: make(map[string]bool),
		failed:  make(map[string]error),
	}

	var roots []pack.File
	for _, ref := range refs {
		ref.Scope = scope
		f, err := r.source.New(ref)
		if err != nil {
			w.fail(ref.Key(), err)
			continue
		}
		if i := slices.IndexFunc(roots, f.Equals); i >= 0 {
			roots[i] = f
			continue
		}
		roots = append(roots, f)
	}
	for _, f := range roots {
		w.visited[f.Key()] = true
	}

	res := &Result{Files: w.fanOut(ctx, roots, 0, true), Failed: w.failed}
	observability.Resolve().OnResolveComplete(ctx, len(refs), len(res.Files), len(res.Failed), time.Since(start))
	return res
}

// walk is the state of one ResolveAll call.
type walk struct {
	r   *Resolver
	sem *semaphore.Weighted

	mu      sync.Mutex
	visited map[string]bool
	failed  map[string]error
}

// fanOut resolves files concurrently and folds the branch results in order.
func (w *walk) fanOut(ctx context.Context, files []pack.File, depth int, roots bool) []pack.File {
	branches := make([][]pack.File, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branches[i] = w.visit(ctx, f, depth, roots)
		}()
	}
	wg.Wait()

	var out []pack.File
	for _, b := range branches {
		out = append(out, b...)
	}
	return out
}

func (w *walk) visit(ctx context.Context, f pack.File, depth int, root bool) []pack.File {
	logger := w.r.opts.Logger
	key := f.Key()

	if !root {
		if !w.claim(key) {
			return nil
		}
		if pinned, ok := w.r.opts.Pinned(key); ok {
			f = pinned
		}
	}

	if err := w.fetch(ctx, f); err != nil {
		w.fail(key, err)
		logger.Warn("dropping dependency", "ref", f.Ref(), "err", err)
		return nil
	}

	name, _ := f.FileName()
	logger.Debug("resolved", "ref", f.Ref(), "file", name, "scope", f.Scope())
	w.r.opts.OnResolved(f)

	out := []pack.File{f}
	if depth >= w.r.opts.MaxDepth {
		logger.Warn("dependency depth limit reached", "ref", f.Ref(), "depth", depth)
		return out
	}

	deps, err := f.Dependencies(catalog.DependencyRequired)
	if err != nil {
		w.fail(key, err)
		return out
	}
	return append(out, w.fanOut(ctx, deps, depth+1, false)...)
}

// claim marks key visited and reports whether the caller owns it.
func (w *walk) claim(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.visited[key] {
		return false
	}
	w.visited[key] = true
	return true
}

func (w *walk) fail(key string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failed[key] = err
}

// fetch holds a semaphore slot only while talking to the catalog, so a
// branch waiting on its children never blocks a fetch.
func (w *walk) fetch(ctx context.Context, f pack.File) error {
	if f.Fetched() {
		return nil
	}
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer w.sem.Release(1)
	return f.Fetch(ctx)
}
