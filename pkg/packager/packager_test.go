package packager

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/mcbuilder/pkg/catalog/catalogtest"
	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// testPack builds a fetched manifest with one entry per scope and writes
// their jars into a mods directory.
func testPack(t *testing.T) (*pack.Manifest, string) {
	t.Helper()
	cat := catalogtest.New().
		Add(1, catalogtest.File(10, "1.12.2")).
		Add(2, catalogtest.File(20, "1.12.2")).
		Add(3, catalogtest.File(30, "1.12.2"))
	src := pack.NewCurseSource(cat, "1.12.2")

	m := pack.NewManifest("testpack", "1.12.2")
	m.Version = "1.0.0"
	m.Author = "someone"
	m.LoaderVersion = "forge-14.23.5.2859"

	dir := t.TempDir()
	mods := filepath.Join(dir, "mods")
	if err := os.MkdirAll(mods, 0o755); err != nil {
		t.Fatal(err)
	}
	for id, scope := range map[int]pack.Scope{1: pack.Common, 2: pack.Client, 3: pack.Server} {
		ref := pack.NewReference(id, 0)
		ref.Scope = scope
		f, err := src.New(ref)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.Fetch(context.Background()); err != nil {
			t.Fatal(err)
		}
		m.Add(f)
		name, _ := f.FileName()
		if err := os.WriteFile(filepath.Join(mods, name), []byte("jar "+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	overrides := filepath.Join(dir, OverridesDir, "config")
	if err := os.MkdirAll(overrides, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(overrides, "a.cfg"), []byte("x=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	return m, dir
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(b)
	}
	return out
}

func names(entries map[string]string) []string {
	var out []string
	for k := range entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func TestBuild_Client(t *testing.T) {
	m, dir := testPack(t)

	var buf bytes.Buffer
	sum, err := Build(context.Background(), &buf, m, Options{
		Format:       FormatClient,
		ModsDir:      filepath.Join(dir, "mods"),
		OverridesDir: filepath.Join(dir, OverridesDir),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	entries := readZip(t, buf.Bytes())
	want := []string{"config/a.cfg", "mods/file-10.jar", "mods/file-20.jar"}
	if got := names(entries); !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
	if entries["mods/file-20.jar"] != "jar file-20.jar" {
		t.Errorf("jar content = %q", entries["mods/file-20.jar"])
	}
	if sum.Mods != 2 || sum.Overrides != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestBuild_Server(t *testing.T) {
	m, dir := testPack(t)

	var buf bytes.Buffer
	if _, err := Build(context.Background(), &buf, m, Options{
		Format:  FormatServer,
		ModsDir: filepath.Join(dir, "mods"),
	}); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []string{"mods/file-10.jar", "mods/file-30.jar"}
	if got := names(readZip(t, buf.Bytes())); !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestBuild_CurseForge(t *testing.T) {
	m, dir := testPack(t)

	var buf bytes.Buffer
	if _, err := Build(context.Background(), &buf, m, Options{
		Format:       FormatCurseForge,
		OverridesDir: filepath.Join(dir, OverridesDir),
	}); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	entries := readZip(t, buf.Bytes())
	want := []string{"manifest.json", "overrides/config/a.cfg"}
	if got := names(entries); !slices.Equal(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}

	var doc cfManifest
	if err := json.Unmarshal([]byte(entries["manifest.json"]), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Minecraft.Version != "1.12.2" || doc.ManifestType != "minecraftModpack" {
		t.Errorf("manifest header = %+v", doc)
	}
	if len(doc.Minecraft.ModLoaders) != 1 || doc.Minecraft.ModLoaders[0].ID != "forge-14.23.5.2859" {
		t.Errorf("mod loaders = %+v", doc.Minecraft.ModLoaders)
	}
	wantFiles := []cfFile{{1, 10, true}, {2, 20, true}}
	if !slices.Equal(doc.Files, wantFiles) {
		t.Errorf("files = %+v, want %+v", doc.Files, wantFiles)
	}
}

func TestBuild_NotInstalled(t *testing.T) {
	m, dir := testPack(t)
	if err := os.Remove(filepath.Join(dir, "mods", "file-10.jar")); err != nil {
		t.Fatal(err)
	}

	_, err := Build(context.Background(), io.Discard, m, Options{
		Format:  FormatClient,
		ModsDir: filepath.Join(dir, "mods"),
	})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Build() error = %v, want NOT_FOUND", err)
	}
}

func TestBuild_Unfetched(t *testing.T) {
	src := pack.NewCurseSource(catalogtest.New(), "1.12.2")
	f, _ := src.New(pack.NewReference(1, 10))
	m := pack.NewManifest("p", "1.12.2")
	m.Add(f)

	_, err := Build(context.Background(), io.Discard, m, Options{Format: FormatCurseForge})
	if !errors.Is(err, errors.ErrCodeNotFetched) {
		t.Errorf("Build() error = %v, want NOT_FETCHED", err)
	}
}

func TestBuildFile(t *testing.T) {
	m, dir := testPack(t)
	out := filepath.Join(dir, "dist", "pack.zip")

	if _, err := BuildFile(context.Background(), out, m, Options{Format: FormatCurseForge}); err != nil {
		t.Fatalf("BuildFile() error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := readZip(t, data)["manifest.json"]; !ok {
		t.Error("manifest.json missing from archive")
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "dist", ".build-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"curseforge", "Client", " server "} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error: %v", s, err)
		}
	}
	if _, err := ParseFormat("mmc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseFormat(mmc) error = %v, want INVALID_INPUT", err)
	}
}

func TestDefaultName(t *testing.T) {
	m := pack.NewManifest("mypack", "1.12.2")
	m.Version = "2.1.0"

	tests := []struct {
		format Format
		want   string
	}{
		{FormatCurseForge, "mypack-2.1.0.zip"},
		{FormatClient, "mypack-2.1.0-client.zip"},
		{FormatServer, "mypack-2.1.0-server.zip"},
	}
	for _, tt := range tests {
		got, err := DefaultName(m, tt.format)
		if err != nil || got != tt.want {
			t.Errorf("DefaultName(%s) = %q, %v; want %q", tt.format, got, err, tt.want)
		}
	}

	m.Name = "../evil"
	if _, err := DefaultName(m, FormatClient); err == nil {
		t.Error("DefaultName() accepted a path-like pack name")
	}
}
