// Package packager bundles a synchronized pack into a distributable zip.
//
// Three formats are supported:
//
//   - curseforge: a CurseForge modpack export. The archive holds a
//     manifest.json listing every common and client entry by project and
//     file id, plus an overrides/ folder. Launchers download the jars
//     themselves.
//   - client: a ready-to-run client folder with mods/ holding the common
//     and client jars.
//   - server: the same for a dedicated server, with the common and server
//     jars.
//
// Files under the pack's overrides directory are copied into every
// archive. The jars of the client and server formats are read from the
// artifact directory, so the pack must be installed first.
package packager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// Format selects the archive layout.
type Format string

const (
	FormatCurseForge Format = "curseforge"
	FormatClient     Format = "client"
	FormatServer     Format = "server"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCurseForge, FormatClient, FormatServer}

// OverridesDir is the pack subdirectory copied into archives.
const OverridesDir = "overrides"

// modTime stamps every archive entry so that builds are reproducible.
var modTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want curseforge, client or server)", s)
	}
	return f, nil
}

// Scopes returns the manifest scopes included in the format.
func (f Format) Scopes() []pack.Scope {
	if f == FormatServer {
		return []pack.Scope{pack.Common, pack.Server}
	}
	return []pack.Scope{pack.Common, pack.Client}
}

// Options configures a build.
type Options struct {
	Format Format

	// ModsDir holds the installed jars.
	ModsDir string

	// OverridesDir is copied into the archive when it exists.
	OverridesDir string

	Logger *log.Logger
}

// Summary describes a written archive.
type Summary struct {
	Format    Format
	Mods      int
	Overrides int
}

// DefaultName returns the archive name for m, e.g. "mypack-1.0.0-server.zip".
// The curseforge format carries no suffix.
func DefaultName(m *pack.Manifest, format Format) (string, error) {
	if err := errors.ValidatePackName(m.Name); err != nil {
		return "", err
	}
	name := m.Name
	if m.Version != "" {
		name += "-" + m.Version
	}
	if format != FormatCurseForge {
		name += "-" + string(format)
	}
	return name + ".zip", nil
}

// BuildFile writes the archive to path, replacing it atomically.
func BuildFile(ctx context.Context, path string, m *pack.Manifest, opts Options) (*Summary, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create output directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".build-*.zip")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	sum, err := Build(ctx, tmp, m, opts)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = errors.Wrap(errors.ErrCodeInternal, cerr, "close %s", tmp.Name())
	}
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return sum, nil
}

// Build writes the archive for m to w. Every entry of m must be fetched.
func Build(ctx context.Context, w io.Writer, m *pack.Manifest, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Format == "" {
		opts.Format = FormatCurseForge
	}

	files, err := selectFiles(m, opts.Format.Scopes())
	if err != nil {
		return nil, err
	}

	zw := zip.NewWriter(w)
	sum := &Summary{Format: opts.Format}

	overridesPrefix := ""
	switch opts.Format {
	case FormatCurseForge:
		overridesPrefix = OverridesDir + "/"
		data, err := curseForgeManifest(m, files)
		if err != nil {
			return nil, err
		}
		if err := writeEntry(zw, "manifest.json", data); err != nil {
			return nil, err
		}
		sum.Mods = len(files)
	default:
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name, _ := f.FileName()
			src := filepath.Join(opts.ModsDir, name)
			if _, err := os.Stat(src); os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeNotFound, "%s is not installed; run install first", name)
			}
			if err := copyFile(zw, path.Join("mods", name), src); err != nil {
				return nil, err
			}
			logger.Debug("packed mod", "file", name)
			sum.Mods++
		}
	}

	n, err := addOverrides(ctx, zw, opts.OverridesDir, overridesPrefix)
	if err != nil {
		return nil, err
	}
	sum.Overrides = n

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "finish archive")
	}
	logger.Debug("archive written", "format", opts.Format, "mods", sum.Mods, "overrides", sum.Overrides)
	return sum, nil
}

// selectFiles returns the fetched entries of the given scopes sorted by
// file name.
func selectFiles(m *pack.Manifest, scopes []pack.Scope) ([]pack.File, error) {
	var files []pack.File
	for _, f := range m.Files() {
		if !slices.Contains(scopes, f.Scope()) {
			continue
		}
		if _, err := f.FileName(); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b pack.File) int {
		return strings.Compare(a.Entry().Name, b.Entry().Name)
	})
	return files, nil
}

type cfManifest struct {
	Minecraft       cfMinecraft `json:"minecraft"`
	ManifestType    string      `json:"manifestType"`
	ManifestVersion int         `json:"manifestVersion"`
	Name            string      `json:"name"`
	Version         string      `json:"version"`
	Author          string      `json:"author"`
	Files           []cfFile    `json:"files"`
	Overrides       string      `json:"overrides"`
}

type cfMinecraft struct {
	Version    string     `json:"version"`
	ModLoaders []cfLoader `json:"modLoaders"`
}

type cfLoader struct {
	ID      string `json:"id"`
	Primary bool   `json:"primary"`
}

type cfFile struct {
	ProjectID int  `json:"projectID"`
	FileID    int  `json:"fileID"`
	Required  bool `json:"required"`
}

func curseForgeManifest(m *pack.Manifest, files []pack.File) ([]byte, error) {
	doc := cfManifest{
		Minecraft:       cfMinecraft{Version: m.TargetVersion, ModLoaders: []cfLoader{}},
		ManifestType:    "minecraftModpack",
		ManifestVersion: 1,
		Name:            m.Name,
		Version:         m.Version,
		Author:          m.Author,
		Files:           make([]cfFile, 0, len(files)),
		Overrides:       OverridesDir,
	}
	if m.LoaderVersion != "" {
		doc.Minecraft.ModLoaders = append(doc.Minecraft.ModLoaders, cfLoader{ID: m.LoaderVersion, Primary: true})
	}
	for _, f := range files {
		if f.Ref().Source != pack.SourceCurseForge {
			return nil, errors.New(errors.ErrCodeUnsupported, "%s cannot be listed in a curseforge export", f.Key())
		}
		e := f.Entry()
		doc.Files = append(doc.Files, cfFile{ProjectID: e.ProjectID, FileID: e.FileID, Required: true})
	}
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode export manifest")
	}
	return append(data, '\n'), nil
}

func addOverrides(ctx context.Context, zw *zip.Writer, dir, prefix string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if err := copyFile(zw, prefix+filepath.ToSlash(rel), p); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "add overrides from %s", dir)
	}
	return n, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(header(name))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add %s", name)
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	return nil
}

func copyFile(zw *zip.Writer, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open %s", src)
	}
	defer in.Close()

	w, err := zw.CreateHeader(header(name))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add %s", name)
	}
	if _, err := io.Copy(w, in); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	return nil
}

func header(name string) *zip.FileHeader {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modTime}
	h.SetMode(0o644)
	return h
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s archive with %d mods and %d override files", s.Format, s.Mods, s.Overrides)
}
