package pack

import (
	"context"
	"testing"

	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/catalog/catalogtest"
	"github.com/matzehuels/mcbuilder/pkg/errors"
)

func newTestFile(t *testing.T, c catalog.Catalog, version string, ref Reference) File {
	t.Helper()
	f, err := NewCurseSource(c, version).New(ref)
	if err != nil {
		t.Fatalf("New(%v) error: %v", ref, err)
	}
	return f
}

func TestCurseFile_PinsLatestCandidate(t *testing.T) {
	c := catalogtest.New().Add(100,
		catalogtest.File(50, "1.16.4"),
		catalogtest.File(55, "1.16.4"),
		catalogtest.File(60, "1.12.2"),
	)

	f := newTestFile(t, c, "1.16.4", NewReference(100, 0))
	if err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if got := f.Ref().FileID; got != 55 {
		t.Errorf("pinned file id = %d, want 55", got)
	}
	if name, _ := f.FileName(); name != "file-55.jar" {
		t.Errorf("FileName() = %q, want file-55.jar", name)
	}
	if url, _ := f.DownloadURL(); url != "https://files.invalid/file-55.jar" {
		t.Errorf("DownloadURL() = %q", url)
	}
	if e := f.Entry(); e != (Entry{Name: "file-55.jar", ProjectID: 100, FileID: 55}) {
		t.Errorf("Entry() = %+v", e)
	}
}

func TestCurseFile_LatestFilePointers(t *testing.T) {
	// Files published without declared versions are still candidates when
	// the project's latest-file list points at them.
	f1 := catalogtest.File(50, "")
	f1.GameVersions = nil
	f2 := catalogtest.File(55, "")
	f2.GameVersions = nil

	c := catalogtest.New().AddProject(catalog.Project{
		ID: 100,
		LatestFiles: []catalog.VersionFile{
			{GameVersion: "1.16.4", FileID: 50},
			{GameVersion: "1.16.4", FileID: 55},
		},
	}, f1, f2)

	f := newTestFile(t, c, "1.16.4", NewReference(100, 0))
	if err := f.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := f.Ref().FileID; got != 55 {
		t.Errorf("pinned file id = %d, want 55", got)
	}
}

func TestCurseFile_ExplicitPin(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.16.4"), catalogtest.File(55, "1.16.4"))

	f := newTestFile(t, c, "1.16.4", NewReference(100, 50))
	if err := f.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := f.Ref().FileID; got != 50 {
		t.Errorf("file id = %d, want 50", got)
	}
	if ok, _ := f.CanUpdate(); !ok {
		t.Error("CanUpdate() = false, want true")
	}
}

func TestCurseFile_NoCompatibleFile(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.12.2"))

	f := newTestFile(t, c, "1.16.4", NewReference(100, 0))
	err := f.Fetch(context.Background())
	if !errors.Is(err, errors.ErrCodeNoCompatibleFile) {
		t.Fatalf("Fetch() error = %v, want NO_COMPATIBLE_FILE", err)
	}
	if f.Fetched() {
		t.Error("Fetched() = true after failure")
	}
}

func TestCurseFile_PinnedFileMissing(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.16.4"))

	f := newTestFile(t, c, "1.16.4", NewReference(100, 99))
	if err := f.Fetch(context.Background()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Fetch() error = %v, want NOT_FOUND", err)
	}
}

func TestCurseFile_UnsafeFileName(t *testing.T) {
	bad := catalogtest.File(50, "1.16.4")
	bad.FileName = "../escape.jar"
	c := catalogtest.New().Add(100, bad)

	f := newTestFile(t, c, "1.16.4", NewReference(100, 0))
	if err := f.Fetch(context.Background()); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Fetch() error = %v, want INVALID_PATH", err)
	}
}

func TestCurseFile_NotFetched(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.16.4"))
	f := newTestFile(t, c, "1.16.4", NewReference(100, 0))

	checks := map[string]func() error{
		"FileName":     func() error { _, err := f.FileName(); return err },
		"DownloadURL":  func() error { _, err := f.DownloadURL(); return err },
		"CanUpdate":    func() error { _, err := f.CanUpdate(); return err },
		"Project":      func() error { _, err := f.Project(); return err },
		"Info":         func() error { _, err := f.Info(); return err },
		"UpdateRef":    func() error { _, err := f.UpdateRef(context.Background()); return err },
		"Dependencies": func() error { _, err := f.Dependencies(catalog.DependencyRequired); return err },
	}
	for name, check := range checks {
		if err := check(); !errors.Is(err, errors.ErrCodeNotFetched) {
			t.Errorf("%s() error = %v, want NOT_FETCHED", name, err)
		}
	}
}

func TestCurseFile_FetchOnce(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.16.4"))
	f := newTestFile(t, c, "1.16.4", NewReference(100, 0))

	for range 3 {
		if err := f.Fetch(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.Calls(100); got != 1 {
		t.Errorf("catalog calls = %d, want 1", got)
	}

	// A definitive failure is kept.
	g := newTestFile(t, c, "1.12.2", NewReference(100, 0))
	for range 2 {
		if err := g.Fetch(context.Background()); !errors.Is(err, errors.ErrCodeNoCompatibleFile) {
			t.Fatalf("Fetch() error = %v, want NO_COMPATIBLE_FILE", err)
		}
	}
	if got := c.Calls(100); got != 2 {
		t.Errorf("catalog calls after definitive failure = %d, want 2", got)
	}
}

func TestCurseFile_FetchRetriesTransientFailures(t *testing.T) {
	c := catalogtest.New().Add(200, catalogtest.File(20, "1.16.4"))

	c.Fail(200, errors.New(errors.ErrCodeCatalogUnavailable, "down"))
	f := newTestFile(t, c, "1.16.4", NewReference(200, 0))
	if err := f.Fetch(context.Background()); !errors.Is(err, errors.ErrCodeCatalogUnavailable) {
		t.Fatalf("Fetch() error = %v, want CATALOG_UNAVAILABLE", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Fetch(ctx); err == nil {
		t.Fatal("Fetch() with cancelled context succeeded")
	}

	c.Add(200, catalogtest.File(20, "1.16.4"))
	if err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() after recovery error: %v", err)
	}
	if name, _ := f.FileName(); name != "file-20.jar" {
		t.Errorf("FileName() = %q, want file-20.jar", name)
	}
}

func TestCurseFile_WithScopeSharesMetadata(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.16.4"))
	f := newTestFile(t, c, "1.16.4", NewReference(100, 0))

	g := f.WithScope(Server)
	if err := f.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !g.Fetched() {
		t.Error("scope copy should observe the fetch")
	}
	if g.Scope() != Server || f.Scope() != Common {
		t.Errorf("scopes = %v, %v; want server, common", g.Scope(), f.Scope())
	}
	if !f.Equals(g) {
		t.Error("scope copies should be equal")
	}
}

func TestCurseFile_UpdateRef(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.16.4"))
	ctx := context.Background()

	old := newTestFile(t, c, "1.16.4", NewReference(100, 0)).WithScope(Client)
	if err := old.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	if ok, _ := old.CanUpdate(); ok {
		t.Fatal("CanUpdate() = true before a new file is published")
	}
	if same, _ := old.UpdateRef(ctx); same != old {
		t.Error("UpdateRef() should return the receiver when not updatable")
	}

	// A newer file appears, but the cached candidates of old don't know.
	c.Publish(100, catalogtest.File(55, "1.16.4"))
	pinned := newTestFile(t, c, "1.16.4", NewReference(100, 50))
	if err := pinned.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	if ok, _ := pinned.CanUpdate(); !ok {
		t.Fatal("CanUpdate() = false, want true")
	}

	refreshesBefore := c.Refreshes()
	next, err := pinned.UpdateRef(ctx)
	if err != nil {
		t.Fatalf("UpdateRef() error: %v", err)
	}
	if c.Refreshes() == refreshesBefore {
		t.Error("UpdateRef() should bypass catalog caches")
	}
	if next == pinned {
		t.Fatal("UpdateRef() returned the receiver")
	}
	if got := next.Ref().FileID; got != 55 {
		t.Errorf("updated file id = %d, want 55", got)
	}
	if got := pinned.Ref().FileID; got != 50 {
		t.Errorf("original file id changed to %d", got)
	}
	if ok, err := next.CanUpdate(); err != nil || ok {
		t.Errorf("CanUpdate() after UpdateRef = %v, %v; want false", ok, err)
	}
	if !next.Equals(pinned) {
		t.Error("update should point at the same project")
	}
}

func TestCurseFile_UpdateRefKeepsScope(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.File(50, "1.16.4"), catalogtest.File(55, "1.16.4"))
	ctx := context.Background()

	ref := NewReference(100, 50)
	ref.Scope = Server
	f := newTestFile(t, c, "1.16.4", ref)
	if err := f.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	next, err := f.UpdateRef(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next.Scope() != Server {
		t.Errorf("scope = %v, want server", next.Scope())
	}
}

func TestCurseFile_Dependencies(t *testing.T) {
	c := catalogtest.New().Add(100, catalogtest.Optional(catalogtest.File(50, "1.16.4", 200, 300), 400))

	ref := NewReference(100, 0)
	ref.Scope = Client
	f := newTestFile(t, c, "1.16.4", ref)
	if err := f.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	req, err := f.Dependencies(catalog.DependencyRequired)
	if err != nil {
		t.Fatal(err)
	}
	if len(req) != 2 || req[0].Ref().SourceID != 200 || req[1].Ref().SourceID != 300 {
		t.Fatalf("required = %v", req)
	}
	for _, d := range req {
		if d.Fetched() {
			t.Error("dependencies should be unfetched")
		}
		if d.Scope() != Client {
			t.Errorf("dependency scope = %v, want client", d.Scope())
		}
	}

	opt, _ := f.Dependencies(catalog.DependencyOptional)
	if len(opt) != 1 || opt[0].Ref().SourceID != 400 {
		t.Errorf("optional = %v", opt)
	}
}

func TestSources(t *testing.T) {
	c := catalogtest.New()
	s := Sources{SourceCurseForge: NewCurseSource(c, "1.16.4")}

	if _, err := s.New(Reference{SourceID: 1}); err != nil {
		t.Errorf("New() with default source error: %v", err)
	}
	if _, err := s.New(Reference{Source: "modrinth", SourceID: 1}); !errors.Is(err, errors.ErrCodeInvalidReference) {
		t.Errorf("New() unknown source error = %v, want INVALID_REFERENCE", err)
	}

	f, err := s.NewNamed(NewReference(1, 2), "named.jar")
	if err != nil {
		t.Fatal(err)
	}
	if e := f.Entry(); e.Name != "named.jar" || e.FileID != 2 {
		t.Errorf("Entry() = %+v", e)
	}
}
