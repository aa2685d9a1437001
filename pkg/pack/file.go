package pack

import (
	"cmp"
	"context"

	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// File is a [Reference] bound to catalog metadata.
//
// Accessors that depend on metadata (FileName, DownloadURL, CanUpdate,
// Dependencies, Project, Info) fail with NOT_FETCHED until Fetch has
// succeeded. A File is safe for concurrent use once constructed. Once Fetch
// has succeeded or failed definitively, later calls return that result;
// cancelled or transient failures are retried.
type File interface {
	// Ref returns the reference, with FileID pinned once fetched.
	Ref() Reference

	// Key identifies the project; see [Reference.Key].
	Key() string

	// Scope returns the side of the pack this file applies to.
	Scope() Scope

	// WithScope returns a copy of the file tagged with s. Fetched metadata
	// is shared with the receiver.
	WithScope(s Scope) File

	// Fetch loads catalog metadata and pins the file id.
	Fetch(ctx context.Context) error

	// Fetched reports whether Fetch has succeeded.
	Fetched() bool

	FileName() (string, error)
	DownloadURL() (string, error)

	// Project returns the catalog record of the file's project.
	Project() (*catalog.Project, error)

	// Info returns the catalog record of the pinned file.
	Info() (*catalog.File, error)

	// CanUpdate reports whether the catalog's latest file for the pack's
	// target version differs from the pinned one.
	CanUpdate() (bool, error)

	// UpdateRef returns a new, fetched File pinned to the latest file for
	// the target version, reading fresh catalog data. When no update is
	// available it returns the receiver. The receiver is never modified.
	UpdateRef(ctx context.Context) (File, error)

	// Dependencies returns unfetched files for the projects this file
	// depends on with the given kind, tagged with the receiver's scope.
	Dependencies(kind catalog.DependencyKind) ([]File, error)

	// Equals reports whether other points at the same project.
	Equals(other File) bool

	// Entry returns the persisted form of the file.
	Entry() Entry
}

// Entry is one element of a manifest dependency bucket.
type Entry struct {
	Name      string `json:"name"`
	ProjectID int    `json:"projectId"`
	FileID    int    `json:"fileId"`
}

// Source builds unfetched Files for references of one or more catalogs.
type Source interface {
	New(ref Reference) (File, error)
}

// Sources dispatches to a [Source] by [Reference.Source].
type Sources map[string]Source

// New implements [Source].
func (s Sources) New(ref Reference) (File, error) {
	name := cmp.Or(ref.Source, SourceCurseForge)
	src, ok := s[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidReference, "no catalog configured for source %q", name)
	}
	return src.New(ref)
}

// NewNamed dispatches to sources that can remember a persisted file name
// and falls back to New for those that cannot.
func (s Sources) NewNamed(ref Reference, name string) (File, error) {
	if n, ok := s[cmp.Or(ref.Source, SourceCurseForge)].(namedSource); ok {
		return n.NewNamed(ref, name)
	}
	return s.New(ref)
}

// namedSource is implemented by sources that accept the file name stored
// in a manifest entry.
type namedSource interface {
	NewNamed(ref Reference, name string) (File, error)
}

func notFetched(key string) error {
	return errors.New(errors.ErrCodeNotFetched, "%s: metadata accessed before fetch", key)
}
