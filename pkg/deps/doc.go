// Package deps expands mod references into their required-dependency
// closure.
//
// # Overview
//
// A [Resolver] fetches each reference through a [pack.Source], pins its
// file, and recursively resolves the projects the file requires. Sibling
// branches run concurrently; each branch returns its own files and the
// results are folded together where the branches join.
//
//	r := deps.NewResolver(src, deps.Options{
//	    Logger:     logger,
//	    OnResolved: func(f pack.File) { m.Add(f) },
//	})
//	res := r.ResolveAll(ctx, refs, pack.Common)
//	for key, err := range res.Failed {
//	    // report
//	}
//
// # Deduplication
//
// A project reached through several paths (diamond dependencies) is fetched
// and returned once. The visited set spans a whole [Resolver.ResolveAll]
// call and also stops cycles.
//
// # Failures
//
// Resolution is best-effort. A branch whose fetch fails, or whose project
// has no file for the target version, is logged and dropped; everything
// else is still returned. Failures are reported in [Result.Failed].
//
// # Optional Dependencies
//
// Only required dependencies are expanded. Optional ones are left for the
// user to add explicitly.
package deps
