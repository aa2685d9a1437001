package pack

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// ManifestFile is the manifest's file name inside a pack directory.
const ManifestFile = "manifest.json"

// DefaultLoadConcurrency bounds concurrent entry fetches in [Load].
const DefaultLoadConcurrency = 8

// ErrNoManifest is returned by [Load] when the manifest file does not exist.
// It wraps [fs.ErrNotExist].
var ErrNoManifest = errors.Wrap(errors.ErrCodeNotFound, fs.ErrNotExist, "no manifest")

// Path returns the manifest path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, ManifestFile)
}

// LoadOptions configures [Load].
type LoadOptions struct {
	// Concurrency bounds concurrent fetches (default DefaultLoadConcurrency).
	Concurrency int
}

// Load reads the manifest at path and fetches every entry.
//
// A manifest is usable only once all entries are fetched, since file names
// and merge decisions depend on metadata, so any fetch failure fails the
// load. All fetches run to completion and their failures are reported
// together.
func Load(ctx context.Context, path string, newSource SourceFunc, opts LoadOptions) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, ErrNoManifest, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}

	m, err := Decode(data, newSource)
	if err != nil {
		return nil, err
	}
	if err := FetchAll(ctx, m.Files(), opts.Concurrency); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "fetch entries of %s", path)
	}
	return m, nil
}

// FetchAll fetches files concurrently, at most limit at a time, and returns
// every failure aggregated.
func FetchAll(ctx context.Context, files []File, limit int) error {
	if limit <= 0 {
		limit = DefaultLoadConcurrency
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
	)
	var g errgroup.Group
	g.SetLimit(limit)
	for _, f := range files {
		g.Go(func() error {
			if err := f.Fetch(ctx); err != nil {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", f.Key(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return result.ErrorOrNil()
}

// Save writes m to path atomically.
func Save(path string, m *Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create temp manifest")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest")
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "replace %s", path)
	}
	return nil
}
