package pack

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/observability"
)

// CurseSource builds [CurseFile] values for a pack's target version.
type CurseSource struct {
	catalog       catalog.Catalog
	targetVersion string
	refresh       bool
}

// NewCurseSource returns a source resolving files against c for the given
// target version.
func NewCurseSource(c catalog.Catalog, targetVersion string) *CurseSource {
	return &CurseSource{catalog: c, targetVersion: targetVersion}
}

// WithRefresh returns a copy of the source whose files bypass catalog
// response caches when they fetch.
func (s *CurseSource) WithRefresh(refresh bool) *CurseSource {
	cp := *s
	cp.refresh = refresh
	return &cp
}

// New implements [Source].
func (s *CurseSource) New(ref Reference) (File, error) {
	if ref.Source == "" {
		ref.Source = SourceCurseForge
	}
	if ref.Source != SourceCurseForge {
		return nil, errors.New(errors.ErrCodeInvalidReference, "source %q is not %s", ref.Source, SourceCurseForge)
	}
	if ref.SourceID <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidReference, "invalid project id %d", ref.SourceID)
	}
	return s.file(ref, ""), nil
}

// NewNamed is like New but remembers the file name persisted in a manifest,
// so Entry can report it before the file is fetched.
func (s *CurseSource) NewNamed(ref Reference, name string) (File, error) {
	f, err := s.New(ref)
	if err != nil {
		return nil, err
	}
	f.(*CurseFile).nameHint = name
	return f, nil
}

func (s *CurseSource) file(ref Reference, name string) *CurseFile {
	return &CurseFile{
		ref:      ref,
		nameHint: name,
		src:      s,
		state:    &curseState{},
	}
}

// CurseFile is a [File] backed by the CurseForge catalog.
type CurseFile struct {
	ref      Reference
	nameHint string
	src      *CurseSource
	state    *curseState
}

// curseState is the fetched metadata, shared between scope copies of a file.
type curseState struct {
	fetchMu sync.Mutex
	err     error // definitive failure, returned by every later Fetch

	mu         sync.RWMutex
	fetched    bool
	fileID     int
	project    *catalog.Project
	info       catalog.File
	candidates []catalog.File
}

func (f *CurseFile) Ref() Reference {
	ref := f.ref
	if st := f.loaded(); st != nil {
		ref.FileID = st.fileID
	}
	return ref
}

func (f *CurseFile) Key() string  { return f.ref.Key() }
func (f *CurseFile) Scope() Scope { return f.ref.Scope }

func (f *CurseFile) WithScope(s Scope) File {
	cp := *f
	cp.ref.Scope = s
	return &cp
}

func (f *CurseFile) Fetched() bool { return f.loaded() != nil }

// Fetch loads the project record and file list and pins the file id.
//
// An unpinned reference pins the most recent candidate for the target
// version and fails with NO_COMPATIBLE_FILE when there is none. A pinned
// reference fails with NOT_FOUND when the project has no such file.
//
// Concurrent calls share one fetch. A result is kept for later calls unless
// the failure came from cancellation or an unreachable catalog; those are
// retried by the next call.
func (f *CurseFile) Fetch(ctx context.Context) error {
	st := f.state
	st.fetchMu.Lock()
	defer st.fetchMu.Unlock()
	if st.err != nil || f.loaded() != nil {
		return st.err
	}

	start := time.Now()
	err := f.fetch(ctx)
	observability.Resolve().OnFetch(ctx, f.Key(), time.Since(start), err)
	if err != nil && !transient(ctx, err) {
		st.err = err
	}
	return err
}

// transient reports whether a fetch failure may succeed when retried.
func transient(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, errors.ErrCodeCatalogUnavailable)
}

func (f *CurseFile) fetch(ctx context.Context) error {
	id := f.ref.SourceID

	var (
		project *catalog.Project
		files   []catalog.File
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		project, err = f.src.catalog.GetProject(gctx, id, f.src.refresh)
		return err
	})
	g.Go(func() error {
		var err error
		files, err = f.src.catalog.GetFiles(gctx, id, f.src.refresh)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	candidates := catalog.Candidates(project, files)[f.src.targetVersion]

	fileID := f.ref.FileID
	if fileID == 0 {
		if len(candidates) == 0 {
			return errors.New(errors.ErrCodeNoCompatibleFile,
				"no file of project %d (%s) for version %s", id, project.Name, f.src.targetVersion)
		}
		fileID = candidates[0].ID
	}

	info, ok := catalog.FindFile(files, fileID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "file %d not found in project %d", fileID, id)
	}
	if err := errors.ValidateFileName(info.FileName); err != nil {
		return errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "project %d file %d", id, fileID)
	}

	st := f.state
	st.mu.Lock()
	defer st.mu.Unlock()
	st.project = project
	st.info = info
	st.candidates = candidates
	st.fileID = fileID
	st.fetched = true
	return nil
}

// loaded returns the state if fetched, nil otherwise.
func (f *CurseFile) loaded() *curseState {
	st := f.state
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.fetched {
		return nil
	}
	return st
}

func (f *CurseFile) FileName() (string, error) {
	st := f.loaded()
	if st == nil {
		return "", notFetched(f.Key())
	}
	return st.info.FileName, nil
}

func (f *CurseFile) DownloadURL() (string, error) {
	st := f.loaded()
	if st == nil {
		return "", notFetched(f.Key())
	}
	return st.info.DownloadURL, nil
}

func (f *CurseFile) Project() (*catalog.Project, error) {
	st := f.loaded()
	if st == nil {
		return nil, notFetched(f.Key())
	}
	return st.project, nil
}

func (f *CurseFile) Info() (*catalog.File, error) {
	st := f.loaded()
	if st == nil {
		return nil, notFetched(f.Key())
	}
	info := st.info
	return &info, nil
}

// CanUpdate compares the pinned file id to the newest candidate seen at
// fetch time. A project with no candidate for the target version is never
// updatable.
func (f *CurseFile) CanUpdate() (bool, error) {
	st := f.loaded()
	if st == nil {
		return false, notFetched(f.Key())
	}
	if len(st.candidates) == 0 {
		return false, nil
	}
	return st.candidates[0].ID != st.fileID, nil
}

func (f *CurseFile) UpdateRef(ctx context.Context) (File, error) {
	ok, err := f.CanUpdate()
	if err != nil {
		return nil, err
	}
	if !ok {
		return f, nil
	}
	next := f.src.WithRefresh(true).file(f.ref.Unpinned(), "")
	if err := next.Fetch(ctx); err != nil {
		return nil, err
	}
	return next, nil
}

func (f *CurseFile) Dependencies(kind catalog.DependencyKind) ([]File, error) {
	st := f.loaded()
	if st == nil {
		return nil, notFetched(f.Key())
	}
	var ids []int
	switch kind {
	case catalog.DependencyRequired:
		ids = st.info.RequiredDependencyIDs()
	case catalog.DependencyOptional:
		ids = st.info.OptionalDependencyIDs()
	}

	src := f.src.WithRefresh(false)
	deps := make([]File, 0, len(ids))
	for _, id := range ids {
		deps = append(deps, src.file(Reference{
			Source:   SourceCurseForge,
			SourceID: id,
			Scope:    f.ref.Scope,
		}, ""))
	}
	return deps, nil
}

func (f *CurseFile) Equals(other File) bool {
	return other != nil && f.Key() == other.Key()
}

func (f *CurseFile) Entry() Entry {
	e := Entry{Name: f.nameHint, ProjectID: f.ref.SourceID, FileID: f.ref.FileID}
	if st := f.loaded(); st != nil {
		e.Name = st.info.FileName
		e.FileID = st.fileID
	}
	return e
}

func (f *CurseFile) String() string {
	if name, err := f.FileName(); err == nil {
		return name
	}
	return f.Ref().String()
}
