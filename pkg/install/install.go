// Package install synchronizes a pack's artifact directory with its
// manifest.
//
// [Installer.Install] downloads every declared file that is missing and,
// when asked, replaces outdated files with their latest versions.
// [Installer.Reconcile] removes every file the manifest does not declare;
// it is the only operation that deletes undeclared artifacts.
package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mcbuilder/pkg/download"
	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/observability"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// DefaultConcurrency bounds concurrent installs.
const DefaultConcurrency = 4

// Options configures one [Installer.Install] call.
type Options struct {
	// Update replaces entries whose pinned file is no longer the latest
	// for the pack's target version.
	Update bool

	// OnProgress receives download progress per file. It is called from
	// download goroutines and must be safe for concurrent use.
	OnProgress func(f pack.File, percent float64)
}

// Update records one entry replaced during an install.
type Update struct {
	Old pack.File
	New pack.File
}

// Report summarizes an install.
type Report struct {
	Downloaded []pack.File
	Updated    []Update
	Present    int
}

// Installer writes artifacts into a directory.
type Installer struct {
	dir         string
	downloader  download.Downloader
	concurrency int
	logger      *log.Logger
}

// New creates an Installer for dir. A concurrency of zero uses
// DefaultConcurrency; a nil logger discards output.
func New(dir string, d download.Downloader, concurrency int, logger *log.Logger) *Installer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Installer{dir: dir, downloader: d, concurrency: concurrency, logger: logger}
}

// Dir returns the artifact directory.
func (in *Installer) Dir() string { return in.dir }

// Install brings the artifact directory up to date with m.
//
// Entries are processed concurrently. A failing entry never cancels its
// siblings; all failures are returned together once every entry settles.
// Updated entries are merged into m after all entries settle, and are
// merged even when their download failed, so a later install retries it.
func (in *Installer) Install(ctx context.Context, m *pack.Manifest, opts Options) (*Report, error) {
	if opts.OnProgress == nil {
		opts.OnProgress = func(pack.File, float64) {}
	}
	if err := os.MkdirAll(in.dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", in.dir)
	}

	var (
		mu     sync.Mutex
		report = &Report{}
		failed *multierror.Error
	)
	record := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}

	var g errgroup.Group
	g.SetLimit(in.concurrency)
	for _, f := range m.Files() {
		g.Go(func() error {
			res, err := in.installOne(ctx, f, opts)
			record(func() {
				if res.update != nil {
					report.Updated = append(report.Updated, *res.update)
				}
				switch {
				case err != nil:
					failed = multierror.Append(failed, fmt.Errorf("%s: %w", f.Key(), err))
				case res.downloaded:
					report.Downloaded = append(report.Downloaded, res.file)
				default:
					report.Present++
				}
			})
			return nil
		})
	}
	_ = g.Wait()

	next := make([]pack.File, 0, len(report.Updated))
	for _, u := range report.Updated {
		next = append(next, u.New)
	}
	m.Merge(next...)
	return report, failed.ErrorOrNil()
}

type result struct {
	file       pack.File
	update     *Update
	downloaded bool
}

func (in *Installer) installOne(ctx context.Context, f pack.File, opts Options) (result, error) {
	res := result{file: f}
	if err := f.Fetch(ctx); err != nil {
		return res, err
	}

	if opts.Update {
		next, err := in.update(ctx, f)
		if err != nil {
			return res, err
		}
		if next != f {
			res.update = &Update{Old: f, New: next}
			res.file = next
			f = next
		}
	}

	path, err := in.Path(f)
	if err != nil {
		return res, err
	}
	if exists(path) {
		return res, nil
	}

	url, err := f.DownloadURL()
	if err != nil {
		return res, err
	}
	name := filepath.Base(path)
	in.logger.Debug("downloading", "file", name, "url", url)

	hooks := observability.Install()
	hooks.OnDownloadStart(ctx, name)
	start := time.Now()
	err = in.downloader.Download(ctx, path, url, func(pct float64) { opts.OnProgress(f, pct) })
	hooks.OnDownloadComplete(ctx, name, time.Since(start), err)
	if err != nil {
		return res, err
	}
	res.downloaded = true
	return res, nil
}

// update removes f's artifact and returns its replacement when a newer
// file exists, or f itself.
func (in *Installer) update(ctx context.Context, f pack.File) (pack.File, error) {
	ok, err := f.CanUpdate()
	if err != nil || !ok {
		return f, err
	}

	if err := in.Remove(f); err != nil {
		return f, err
	}
	next, err := f.UpdateRef(ctx)
	if err != nil {
		return f, err
	}
	oldName, _ := f.FileName()
	newName, _ := next.FileName()
	in.logger.Info("updating", "from", oldName, "to", newName)
	return next, nil
}

// Path returns where f's artifact lives.
func (in *Installer) Path(f pack.File) (string, error) {
	name, err := f.FileName()
	if err != nil {
		return "", err
	}
	if err := errors.ValidateFileName(name); err != nil {
		return "", err
	}
	return filepath.Join(in.dir, name), nil
}

// Remove deletes f's artifact if present. f need not be fetched when it
// was decoded from a manifest that records its file name.
func (in *Installer) Remove(f pack.File) error {
	name, err := pack.ArtifactName(f)
	if err != nil {
		return err
	}
	if err := errors.ValidateFileName(name); err != nil {
		return err
	}
	path := filepath.Join(in.dir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove %s", filepath.Base(path))
	}
	return nil
}

// Reconcile deletes every regular file in the artifact directory that m
// does not declare and returns the removed names. Unfetched entries are
// matched by their persisted names. A missing directory is not an error.
func (in *Installer) Reconcile(ctx context.Context, m *pack.Manifest) ([]string, error) {
	declared, err := m.FileNames()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(in.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list %s", in.dir)
	}

	var (
		removed []string
		failed  *multierror.Error
	)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, ok := declared[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(in.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			failed = multierror.Append(failed, err)
			continue
		}
		if download.IsPart(e.Name()) {
			in.logger.Info("removed partial download", "file", e.Name())
		} else {
			in.logger.Info("removed undeclared file", "file", e.Name())
		}
		removed = append(removed, e.Name())
	}
	observability.Install().OnReconcile(ctx, len(removed))
	return removed, failed.ErrorOrNil()
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
