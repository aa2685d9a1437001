package pack

import (
	"slices"
	"sync"
)

// DefaultVersion is the pack version written by init.
const DefaultVersion = "1.0.0"

// Manifest is the declarative description of a pack.
//
// The dependency set holds at most one [File] per project key. Adding a
// file whose key is already present replaces the old entry in place, so
// the last write wins whatever the file ids. All dependency methods are
// safe for concurrent use; the metadata fields are not guarded and should
// be set before the manifest is shared.
type Manifest struct {
	Name          string
	Version       string
	TargetVersion string
	LoaderVersion string
	Description   string
	Author        string

	mu    sync.Mutex
	order []string
	deps  map[string]File
}

// NewManifest returns an empty manifest for the given target version.
func NewManifest(name, targetVersion string) *Manifest {
	return &Manifest{
		Name:          name,
		Version:       DefaultVersion,
		TargetVersion: targetVersion,
		deps:          make(map[string]File),
	}
}

// Add merges f into the dependency set and returns the entry it replaced.
func (m *Manifest) Add(f File) (replaced File, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(f)
}

func (m *Manifest) add(f File) (File, bool) {
	if m.deps == nil {
		m.deps = make(map[string]File)
	}
	key := f.Key()
	prev, ok := m.deps[key]
	if !ok {
		m.order = append(m.order, key)
	}
	m.deps[key] = f
	return prev, ok
}

// Merge adds every file in order under a single lock acquisition.
func (m *Manifest) Merge(files ...File) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range files {
		m.add(f)
	}
}

// Remove drops the entry with the given key.
func (m *Manifest) Remove(key string) (File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.deps[key]
	if !ok {
		return nil, false
	}
	delete(m.deps, key)
	m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == key })
	return f, true
}

// Get returns the entry with the given key.
func (m *Manifest) Get(key string) (File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.deps[key]
	return f, ok
}

// Contains reports whether f's project is declared.
func (m *Manifest) Contains(f File) bool {
	_, ok := m.Get(f.Key())
	return ok
}

// Files returns a snapshot of the dependency set in insertion order.
func (m *Manifest) Files() []File {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]File, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.deps[k])
	}
	return out
}

// Len returns the number of declared dependencies.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deps)
}

// FileNames returns the artifact file names the manifest declares. An
// unfetched entry contributes the name persisted in the manifest; one
// without a persisted name fails with NOT_FETCHED.
func (m *Manifest) FileNames() (map[string]File, error) {
	files := m.Files()
	names := make(map[string]File, len(files))
	for _, f := range files {
		name, err := ArtifactName(f)
		if err != nil {
			return nil, err
		}
		names[name] = f
	}
	return names, nil
}

// ArtifactName returns the file name f is stored under: the fetched file
// name, or the name persisted in the manifest when f is not fetched.
func ArtifactName(f File) (string, error) {
	if f.Fetched() {
		return f.FileName()
	}
	if name := f.Entry().Name; name != "" {
		return name, nil
	}
	return f.FileName()
}

// Pinned returns the declared file for key. It has the signature the
// resolver expects for existing pins.
func (m *Manifest) Pinned(key string) (File, bool) {
	f, ok := m.Get(key)
	if !ok || !f.Fetched() {
		return nil, false
	}
	return f, true
}
