package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeArchiveFile(t *testing.T, dir, volume, host string, ts time.Time, size int) string {
	t.Helper()

	path, err := DeriveArchivePath(dir, volume, host, ts)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListEmptyStore(t *testing.T) {
	store := NewStore(t.TempDir())

	archives, err := store.List()
	if err != nil {
		t.Fatalf("empty store should not error: %v", err)
	}
	if len(archives) != 0 {
		t.Fatalf("expected no archives, got %d", len(archives))
	}
}

func TestListMissingStoreDirIsError(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))

	if _, err := store.List(); err == nil {
		t.Fatal("missing store directory should be an error")
	}
}

func TestListSkipsForeignFilesAndSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	older := time.Date(2025, 5, 1, 8, 0, 0, 0, time.Local)
	newer := older.Add(48 * time.Hour)
	writeArchiveFile(t, dir, "pgdata", "web01", older, 10)
	writeArchiveFile(t, dir, "pgdata", "web01", newer, 20)
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	archives, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(archives) != 2 {
		t.Fatalf("expected 2 archives, got %d", len(archives))
	}
	if !archives[0].Timestamp.Equal(newer) {
		t.Fatalf("expected newest first, got %v", archives[0].Timestamp)
	}
	if archives[0].SizeBytes != 20 {
		t.Fatalf("size = %d, want 20", archives[0].SizeBytes)
	}
}

func TestListVolumeFilters(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	ts := time.Date(2025, 5, 1, 8, 0, 0, 0, time.Local)
	writeArchiveFile(t, dir, "pgdata", "web01", ts, 1)
	writeArchiveFile(t, dir, "redis", "web01", ts, 1)

	archives, err := store.ListVolume("pgdata")
	if err != nil {
		t.Fatal(err)
	}
	if len(archives) != 1 || archives[0].VolumeName != "pgdata" {
		t.Fatalf("unexpected filter result: %+v", archives)
	}
}
