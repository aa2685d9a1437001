// Package catalog defines the metadata the pack engine consumes from a
// remote mod catalog and the narrow interface it consumes it through.
//
// The engine never performs network I/O itself. A [Catalog] resolves a
// project id to its [Project] record and its [File] list; everything the
// resolver and the synchronizer know about a mod comes from these two
// calls. HTTP implementations live under pkg/integrations.
package catalog

import (
	"context"
	"slices"
	"time"
)

// DependencyKind classifies a file's dependency on another project.
type DependencyKind int

// Dependency kinds as reported by the catalog. The numeric values match
// the catalog's wire format.
const (
	DependencyEmbedded DependencyKind = 1
	DependencyOptional DependencyKind = 2
	DependencyRequired DependencyKind = 3
	DependencyTool     DependencyKind = 4
	DependencyBroken   DependencyKind = 5
	DependencyInclude  DependencyKind = 6
)

// Catalog resolves project ids to metadata.
//
// Implementations must be safe for concurrent use. When refresh is true any
// response cache is bypassed and fresh data is fetched from the remote.
type Catalog interface {
	// GetProject returns the project record for id.
	GetProject(ctx context.Context, id int, refresh bool) (*Project, error)

	// GetFiles returns every file of project id, most recently published first.
	GetFiles(ctx context.Context, id int, refresh bool) ([]File, error)
}

// Project is the catalog record of one mod project.
type Project struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Summary     string        `json:"summary"`
	WebsiteURL  string        `json:"websiteUrl"`
	Authors     []string      `json:"authors"`
	LatestFiles []VersionFile `json:"latestFiles"`
}

// VersionFile points at the newest file of a project for one target version.
// A project may list several per version (one per release channel).
type VersionFile struct {
	GameVersion string `json:"gameVersion"`
	FileID      int    `json:"fileId"`
}

// File is the catalog record of one downloadable file of a project.
type File struct {
	ID           int          `json:"id"`
	DisplayName  string       `json:"displayName"`
	FileName     string       `json:"fileName"`
	DownloadURL  string       `json:"downloadUrl"`
	PublishedAt  time.Time    `json:"publishedAt"`
	Length       int64        `json:"length"`
	GameVersions []string     `json:"gameVersions"`
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency is one declared dependency of a file.
type Dependency struct {
	ProjectID int            `json:"projectId"`
	Kind      DependencyKind `json:"kind"`
}

// RequiredDependencyIDs returns the project ids this file requires.
func (f *File) RequiredDependencyIDs() []int {
	return f.dependencyIDs(DependencyRequired)
}

// OptionalDependencyIDs returns the project ids this file optionally uses.
func (f *File) OptionalDependencyIDs() []int {
	return f.dependencyIDs(DependencyOptional)
}

func (f *File) dependencyIDs(kind DependencyKind) []int {
	var ids []int
	for _, d := range f.Dependencies {
		if d.Kind == kind && !slices.Contains(ids, d.ProjectID) {
			ids = append(ids, d.ProjectID)
		}
	}
	return ids
}

// Candidates groups a project's files by target version, newest first.
//
// When the project's latest-file list points at files for a version, only
// those files are candidates for it; archived or superseded files that
// still declare the version are ignored. Versions without a pointer fall
// back to every file that declares them. Each list is sorted by publish date descending (file id
// descending on ties), so index 0 is the file a pack should pin when no
// explicit file id is requested.
func Candidates(p *Project, files []File) map[string][]File {
	byID := make(map[int]File, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}

	out := make(map[string][]File)
	seen := make(map[string]map[int]bool)
	add := func(version string, f File) {
		if seen[version] == nil {
			seen[version] = make(map[int]bool)
		}
		if seen[version][f.ID] {
			return
		}
		seen[version][f.ID] = true
		out[version] = append(out[version], f)
	}

	if p != nil {
		for _, lf := range p.LatestFiles {
			if f, ok := byID[lf.FileID]; ok {
				add(lf.GameVersion, f)
			}
		}
	}
	pointed := make(map[string]bool, len(out))
	for v := range out {
		pointed[v] = true
	}
	for _, f := range files {
		for _, v := range f.GameVersions {
			if !pointed[v] {
				add(v, f)
			}
		}
	}

	for _, list := range out {
		SortByRecency(list)
	}
	return out
}

// SortByRecency sorts files by publish date, most recent first.
func SortByRecency(files []File) {
	slices.SortStableFunc(files, func(a, b File) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		return b.ID - a.ID
	})
}

// FindFile returns the file with the given id.
func FindFile(files []File, id int) (File, bool) {
	i := slices.IndexFunc(files, func(f File) bool { return f.ID == id })
	if i < 0 {
		return File{}, false
	}
	return files[i], true
}
