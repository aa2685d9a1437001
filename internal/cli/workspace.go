package cli

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/mcbuilder/pkg/cache"
	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/config"
	"github.com/matzehuels/mcbuilder/pkg/download"
	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/install"
	"github.com/matzehuels/mcbuilder/pkg/integrations/curseforge"
	"github.com/matzehuels/mcbuilder/pkg/lock"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// workspace is an opened pack directory with its configuration, catalog
// client and, for mutating commands, the directory lock.
type workspace struct {
	cli        *CLI
	dir        string
	cfg        *config.Config
	cache      cache.Cache
	catalog    catalog.Catalog
	downloader download.Downloader
	lock       *lock.Lock
}

// openWorkspace opens the pack directory selected with --dir. When locked
// is set it waits for the pack lock; the caller must Close the workspace.
func (c *CLI) openWorkspace(ctx context.Context, locked bool) (*workspace, error) {
	dir, err := filepath.Abs(c.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", c.dir)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	w := &workspace{cli: c, dir: dir, cfg: cfg, catalog: c.catalog, downloader: c.downloader}

	w.cache, err = c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if w.catalog == nil {
		w.catalog = curseforge.NewClient(w.cache, cfg.Cache.TTL, curseforge.Options{
			BaseURL: cfg.Catalog.URL,
			APIKey:  cfg.Catalog.APIKey,
		})
	}
	if w.downloader == nil {
		w.downloader = download.NewHTTPDownloader(nil)
	}

	if locked {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.Close()
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
		w.lock, err = lock.Acquire(ctx, dir, func() {
			c.Logger.Warn("waiting for another mcbuilder process to finish", "dir", dir)
		})
		if err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

// newCache selects the catalog response cache: none with --no-cache,
// redis when configured, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch {
	case c.noCache:
		return cache.NewNullCache(), nil
	case cfg.Cache.RedisURL != "":
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	fc, err := cache.NewFileCache(cfg.CacheDir())
	if err != nil {
		c.Logger.Warn("catalog cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// Close releases the lock and the cache.
func (w *workspace) Close() {
	if w.lock != nil {
		if err := w.lock.Release(); err != nil {
			w.cli.Logger.Warn("release lock", "path", w.lock.Path(), "err", err)
		}
		w.lock = nil
	}
	if w.cache != nil {
		_ = w.cache.Close()
	}
}

// sources returns the pack.SourceFunc used to decode manifests. With
// refresh set, files bypass the response cache when they fetch.
func (w *workspace) sources(refresh bool) pack.SourceFunc {
	return func(targetVersion string) pack.Source {
		return pack.Sources{
			pack.SourceCurseForge: pack.NewCurseSource(w.catalog, targetVersion).WithRefresh(refresh),
		}
	}
}

func (w *workspace) manifestPath() string {
	return pack.Path(w.dir)
}

// load reads and fetches the pack manifest.
func (w *workspace) load(ctx context.Context, refresh bool) (*pack.Manifest, error) {
	m, err := pack.Load(ctx, w.manifestPath(), w.sources(refresh), pack.LoadOptions{
		Concurrency: w.cfg.Resolve.Concurrency,
	})
	if stderrors.Is(err, pack.ErrNoManifest) {
		return nil, errors.New(errors.ErrCodeNotFound, "no %s in %s; run \"%s init\" first", pack.ManifestFile, w.dir, appName)
	}
	return m, err
}

// decode reads the manifest without fetching its entries. A missing
// manifest yields an error wrapping fs.ErrNotExist.
func (w *workspace) decode() (*pack.Manifest, error) {
	data, err := os.ReadFile(w.manifestPath())
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no %s in %s; run \"%s init\" first", pack.ManifestFile, w.dir, appName)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", w.manifestPath())
	}
	return pack.Decode(data, w.sources(false))
}

func (w *workspace) save(m *pack.Manifest) error {
	return pack.Save(w.manifestPath(), m)
}

func (w *workspace) modsDir() string {
	return w.cfg.ModsDir(w.dir)
}

func (w *workspace) installer() *install.Installer {
	return install.New(w.modsDir(), w.downloader, w.cfg.Install.Concurrency, w.cli.Logger)
}

// reconcile removes artifacts m does not declare.
func (w *workspace) reconcile(ctx context.Context, m *pack.Manifest) error {
	removed, err := w.installer().Reconcile(ctx, m)
	if len(removed) > 0 {
		printInfo("Removed %d undeclared files", len(removed))
	}
	return err
}
