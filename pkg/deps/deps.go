package deps

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcbuilder/pkg/pack"
)

const (
	DefaultConcurrency = 8  // Default concurrent catalog fetches
	DefaultMaxDepth    = 50 // Default maximum dependency depth
)

// Options configures dependency resolution behavior.
type Options struct {
	Concurrency int         // Concurrent catalog fetches (default: 8)
	MaxDepth    int         // Maximum depth to traverse (default: 50)
	Logger      *log.Logger // Progress and failure logging (optional)

	// OnResolved is called from the resolving goroutine as soon as a file
	// has been fetched, before its dependencies are expanded. It must be
	// safe for concurrent use.
	OnResolved func(pack.File)

	// Pinned looks up a file the pack already declares. A transitive
	// dependency found here keeps its pinned file and is expanded from the
	// declared entry instead of being resolved to the latest file.
	// Explicit roots are always resolved as requested.
	Pinned func(key string) (pack.File, bool)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.OnResolved == nil {
		opts.OnResolved = func(pack.File) {}
	}
	if opts.Pinned == nil {
		opts.Pinned = func(string) (pack.File, bool) { return nil, false }
	}
	return opts
}
