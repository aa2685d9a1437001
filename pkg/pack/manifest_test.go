package pack

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/matzehuels/mcbuilder/pkg/catalog/catalogtest"
	"github.com/matzehuels/mcbuilder/pkg/errors"
)

func unfetched(t *testing.T, projectID, fileID int) File {
	t.Helper()
	f, err := NewCurseSource(catalogtest.New(), "1.16.4").New(NewReference(projectID, fileID))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestManifest_LastWriteWins(t *testing.T) {
	orders := [][]int{{50, 55, 60}, {60, 50, 55}, {55, 60, 50}}

	for _, order := range orders {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			m := NewManifest("pack", "1.16.4")
			for _, fid := range order {
				m.Add(unfetched(t, 100, fid))
			}

			if m.Len() != 1 {
				t.Fatalf("Len() = %d, want 1", m.Len())
			}
			f, ok := m.Get("curseforge:100")
			if !ok {
				t.Fatal("entry missing")
			}
			if got, want := f.Ref().FileID, order[len(order)-1]; got != want {
				t.Errorf("file id = %d, want %d (last inserted)", got, want)
			}
		})
	}
}

func TestManifest_AddReportsReplaced(t *testing.T) {
	m := NewManifest("pack", "1.16.4")

	if _, replaced := m.Add(unfetched(t, 1, 10)); replaced {
		t.Error("first Add() reported a replacement")
	}
	prev, replaced := m.Add(unfetched(t, 1, 11))
	if !replaced || prev.Ref().FileID != 10 {
		t.Errorf("Add() = %v, %v; want previous entry 10", prev, replaced)
	}
}

func TestManifest_ReplaceKeepsPosition(t *testing.T) {
	m := NewManifest("pack", "1.16.4")
	m.Merge(unfetched(t, 1, 10), unfetched(t, 2, 20), unfetched(t, 3, 30))
	m.Add(unfetched(t, 2, 21))

	files := m.Files()
	ids := [3]int{files[0].Ref().SourceID, files[1].Ref().SourceID, files[2].Ref().SourceID}
	if ids != [3]int{1, 2, 3} {
		t.Errorf("order = %v, want [1 2 3]", ids)
	}
	if files[1].Ref().FileID != 21 {
		t.Errorf("replaced entry file id = %d, want 21", files[1].Ref().FileID)
	}
}

func TestManifest_Remove(t *testing.T) {
	m := NewManifest("pack", "1.16.4")
	m.Merge(unfetched(t, 1, 10), unfetched(t, 2, 20))

	f, ok := m.Remove("curseforge:1")
	if !ok || f.Ref().SourceID != 1 {
		t.Fatalf("Remove() = %v, %v", f, ok)
	}
	if _, ok := m.Remove("curseforge:1"); ok {
		t.Error("second Remove() succeeded")
	}
	if m.Len() != 1 || len(m.Files()) != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestManifest_ConcurrentAdd(t *testing.T) {
	m := NewManifest("pack", "1.16.4")
	files := make([]File, 0, 200)
	for i := range 200 {
		files = append(files, unfetched(t, i%20+1, i+1))
	}

	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Add(f)
		}()
	}
	wg.Wait()

	if m.Len() != 20 {
		t.Errorf("Len() = %d, want 20", m.Len())
	}
	if len(m.Files()) != 20 {
		t.Errorf("len(Files()) = %d, want 20", len(m.Files()))
	}
}

func TestManifest_FileNames(t *testing.T) {
	c := catalogtest.New().Add(1, catalogtest.File(10, "1.16.4")).Add(2, catalogtest.File(20, "1.16.4"))
	src := NewCurseSource(c, "1.16.4")
	m := NewManifest("pack", "1.16.4")

	a, _ := src.New(NewReference(1, 0))
	b, _ := src.New(NewReference(2, 0))
	m.Merge(a, b)

	if _, err := m.FileNames(); err == nil {
		t.Error("FileNames() should fail before entries are fetched")
	}
	if _, ok := m.Pinned(a.Key()); ok {
		t.Error("Pinned() should ignore unfetched entries")
	}

	if err := FetchAll(context.Background(), m.Files(), 2); err != nil {
		t.Fatal(err)
	}
	names, err := m.FileNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names["file-10.jar"] == nil || names["file-20.jar"] == nil {
		t.Errorf("FileNames() = %v", names)
	}
	if _, ok := m.Pinned(a.Key()); !ok {
		t.Error("Pinned() should return fetched entries")
	}
}

func TestArtifactName(t *testing.T) {
	c := catalogtest.New().Add(1, catalogtest.File(10, "1.16.4"))
	src := NewCurseSource(c, "1.16.4")

	named, _ := src.NewNamed(NewReference(1, 10), "persisted.jar")
	if name, err := ArtifactName(named); err != nil || name != "persisted.jar" {
		t.Errorf("ArtifactName(unfetched named) = %q, %v; want persisted.jar", name, err)
	}

	if err := named.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if name, _ := ArtifactName(named); name != "file-10.jar" {
		t.Errorf("ArtifactName(fetched) = %q, want the catalog name file-10.jar", name)
	}

	bare, _ := src.New(NewReference(1, 0))
	if _, err := ArtifactName(bare); !errors.Is(err, errors.ErrCodeNotFetched) {
		t.Errorf("ArtifactName(unfetched, no name) error = %v, want NOT_FETCHED", err)
	}
}
