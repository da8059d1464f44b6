package contextdetect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

func TestDetectGoProject(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "go.mod")
	touch(t, dir, "go.sum")

	tags := NewMarkerDetector().Detect(dir)

	if diff := cmp.Diff([]string{"go"}, tags); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
}

func TestDetectMultipleMarkersSortedAndDeduped(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "package.json")
	touch(t, dir, "Dockerfile")
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	tags := NewMarkerDetector().Detect(dir)

	if diff := cmp.Diff([]string{"docker", "git", "nodejs"}, tags); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
}

func TestDetectEmptyDirectoryYieldsNil(t *testing.T) {
	tags := NewMarkerDetector().Detect(t.TempDir())
	if tags != nil {
		t.Fatalf("expected nil tags, got %v", tags)
	}
}

func TestDetectMissingDirectoryYieldsNil(t *testing.T) {
	tags := NewMarkerDetector().Detect(filepath.Join(t.TempDir(), "nope"))
	if tags != nil {
		t.Fatalf("expected nil tags, got %v", tags)
	}
}

func TestSnapshotCarriesTagsAndFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "pyproject.toml")
	touch(t, dir, "main.py")
	touch(t, dir, ".hidden")

	snapshot := NewMarkerDetector().Snapshot(dir)

	if snapshot.WorkingDir != dir {
		t.Fatalf("unexpected working dir: %s", snapshot.WorkingDir)
	}
	if snapshot.PrimaryTag() != "python" {
		t.Fatalf("unexpected primary tag: %q", snapshot.PrimaryTag())
	}
	for _, file := range snapshot.Files {
		if file == ".hidden" {
			t.Fatal("hidden files must be excluded")
		}
	}
}
