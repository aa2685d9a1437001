package pack

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// document is the on-disk manifest layout.
type document struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	TargetVersion string `json:"targetVersion"`
	// GameVersion is the key older manifests used for the target version.
	GameVersion        string  `json:"gameVersion,omitempty"`
	LoaderVersion      string  `json:"loaderVersion"`
	Description        string  `json:"description"`
	Author             string  `json:"author"`
	Dependencies       []Entry `json:"dependencies"`
	ClientDependencies []Entry `json:"clientDependencies"`
	ServerDependencies []Entry `json:"serverDependencies"`
}

func (d *document) bucket(s Scope) *[]Entry {
	switch s {
	case Client:
		return &d.ClientDependencies
	case Server:
		return &d.ServerDependencies
	default:
		return &d.Dependencies
	}
}

// SourceFunc returns the [Source] to bind a manifest's entries with. It
// receives the manifest's target version.
type SourceFunc func(targetVersion string) Source

// Encode serializes m. Dependencies are split into one bucket per scope
// and each bucket is sorted by file name, then project id, so the output
// does not depend on insertion order.
func Encode(m *Manifest) ([]byte, error) {
	doc := document{
		Name:               m.Name,
		Version:            cmp.Or(m.Version, DefaultVersion),
		TargetVersion:      m.TargetVersion,
		LoaderVersion:      m.LoaderVersion,
		Description:        m.Description,
		Author:             m.Author,
		Dependencies:       []Entry{},
		ClientDependencies: []Entry{},
		ServerDependencies: []Entry{},
	}
	for _, f := range m.Files() {
		b := doc.bucket(f.Scope())
		*b = append(*b, f.Entry())
	}
	for _, s := range Scopes {
		slices.SortFunc(*doc.bucket(s), func(a, b Entry) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ProjectID, b.ProjectID))
		})
	}

	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	return append(data, '\n'), nil
}

// Decode parses a manifest. Each entry becomes an unfetched [File] tagged
// with the scope of the bucket it was read from. When a project appears
// more than once the later entry wins; buckets are read common, client,
// server.
func Decode(data []byte, newSource SourceFunc) (*Manifest, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}

	target := cmp.Or(doc.TargetVersion, doc.GameVersion)
	if target == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest has no target version")
	}

	m := NewManifest(doc.Name, target)
	m.Version = cmp.Or(doc.Version, DefaultVersion)
	m.LoaderVersion = doc.LoaderVersion
	m.Description = doc.Description
	m.Author = doc.Author

	src := newSource(target)
	for _, scope := range Scopes {
		for _, e := range *doc.bucket(scope) {
			if e.ProjectID <= 0 {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "%s entry %q has invalid projectId %d", scope.bucket(), e.Name, e.ProjectID)
			}
			if e.FileID < 0 {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "%s entry %q has invalid fileId %d", scope.bucket(), e.Name, e.FileID)
			}
			f, err := newFile(src, Reference{
				Source:   SourceCurseForge,
				SourceID: e.ProjectID,
				FileID:   e.FileID,
				Scope:    scope,
			}, e.Name)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s entry %d", scope.bucket(), e.ProjectID)
			}
			m.Add(f)
		}
	}
	return m, nil
}

func newFile(src Source, ref Reference, name string) (File, error) {
	if n, ok := src.(namedSource); ok {
		return n.NewNamed(ref, name)
	}
	return src.New(ref)
}
