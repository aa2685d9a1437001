// Package catalogtest provides an in-memory [catalog.Catalog] for tests.
package catalogtest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// Epoch is the publish date of file 0 in helpers that derive dates from ids.
var Epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Catalog is a concurrency-safe in-memory catalog.
type Catalog struct {
	mu        sync.Mutex
	projects  map[int]catalog.Project
	files     map[int][]catalog.File
	failures  map[int]error
	calls     map[int]int
	refreshes int
}

var _ catalog.Catalog = (*Catalog)(nil)

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		projects: make(map[int]catalog.Project),
		files:    make(map[int][]catalog.File),
		failures: make(map[int]error),
		calls:    make(map[int]int),
	}
}

// Add registers project id with the given files, replacing any previous
// registration. The project name defaults to "mod-<id>".
func (c *Catalog) Add(id int, files ...catalog.File) *Catalog {
	return c.AddProject(catalog.Project{ID: id, Name: fmt.Sprintf("mod-%d", id)}, files...)
}

// AddProject registers p with the given files.
func (c *Catalog) AddProject(p catalog.Project, files ...catalog.File) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[p.ID] = p
	c.files[p.ID] = slices.Clone(files)
	delete(c.failures, p.ID)
	return c
}

// Publish appends a file to an existing project.
func (c *Catalog) Publish(id int, f catalog.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[id] = append(c.files[id], f)
}

// Fail makes every lookup of project id return err.
func (c *Catalog) Fail(id int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[id] = err
}

// Calls returns how many times GetProject was called for id.
func (c *Catalog) Calls(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[id]
}

// Refreshes returns how many calls asked to bypass caches.
func (c *Catalog) Refreshes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshes
}

func (c *Catalog) GetProject(ctx context.Context, id int, refresh bool) (*catalog.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[id]++
	if refresh {
		c.refreshes++
	}
	if err := c.failures[id]; err != nil {
		return nil, err
	}
	p, ok := c.projects[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "project %d", id)
	}
	return &p, nil
}

func (c *Catalog) GetFiles(ctx context.Context, id int, refresh bool) ([]catalog.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if refresh {
		c.refreshes++
	}
	if err := c.failures[id]; err != nil {
		return nil, err
	}
	if _, ok := c.projects[id]; !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "project %d", id)
	}
	files := slices.Clone(c.files[id])
	catalog.SortByRecency(files)
	return files, nil
}

// File builds a file of the given target version. Its publish date is
// Epoch plus id hours, so higher ids are newer. Required dependencies are
// listed by project id.
func File(id int, version string, requires ...int) catalog.File {
	name := fmt.Sprintf("file-%d.jar", id)
	f := catalog.File{
		ID:           id,
		DisplayName:  name,
		FileName:     name,
		DownloadURL:  "https://files.invalid/" + name,
		PublishedAt:  Epoch.Add(time.Duration(id) * time.Hour),
		GameVersions: []string{version},
	}
	for _, dep := range requires {
		f.Dependencies = append(f.Dependencies, catalog.Dependency{ProjectID: dep, Kind: catalog.DependencyRequired})
	}
	return f
}

// Optional adds optional dependencies to f.
func Optional(f catalog.File, ids ...int) catalog.File {
	for _, id := range ids {
		f.Dependencies = append(f.Dependencies, catalog.Dependency{ProjectID: id, Kind: catalog.DependencyOptional})
	}
	return f
}
