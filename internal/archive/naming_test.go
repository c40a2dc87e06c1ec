package archive

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDeriveArchivePath(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 0, time.Local)

	path, err := DeriveArchivePath("/backups", "pgdata", "web01", ts)
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join("/backups", "pgdata-web01-20250601-123045.tar.gz")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}

func TestDeriveArchivePathRejectsUnsafeNames(t *testing.T) {
	ts := time.Now()
	bad := []string{"", "../etc", "a/b", "vol name", "-leading", "trailing-", "a\x00b"}

	for _, name := range bad {
		if _, err := DeriveArchivePath("/backups", name, "host", ts); err == nil {
			t.Errorf("volume name %q: expected error", name)
		}
		if _, err := DeriveArchivePath("/backups", "vol", name, ts); err == nil {
			t.Errorf("host label %q: expected error", name)
		}
	}

	// '-' is fine in a volume name but never in a host label
	if _, err := DeriveArchivePath("/backups", "pg-data", "web01", ts); err != nil {
		t.Errorf("hyphenated volume name: unexpected error %v", err)
	}
	if _, err := DeriveArchivePath("/backups", "vol", "web-01", ts); err == nil {
		t.Error("hyphenated host label: expected error")
	}
}

func TestArchiveNamingInjective(t *testing.T) {
	ts1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	ts2 := ts1.Add(time.Second)

	triples := []struct {
		volume string
		host   string
		ts     time.Time
	}{
		{"pgdata", "web01", ts1},
		{"pgdata", "web01", ts2},
		{"pgdata", "web02", ts1},
		{"redis", "web01", ts1},
		{"pg-data", "web01", ts1},
	}

	seen := map[string]int{}
	for i, tr := range triples {
		path, err := DeriveArchivePath("/backups", tr.volume, tr.host, tr.ts)
		if err != nil {
			t.Fatal(err)
		}
		if prev, dup := seen[path]; dup {
			t.Fatalf("triples %d and %d collide on %q", prev, i, path)
		}
		seen[path] = i
	}
}

func TestHyphenatedVolumeNamesCannotCollide(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	// ("pg-data", "web01") and ("pg", "data-web01") would both name the
	// file pg-data-web01-<ts>.tar.gz if host labels could carry '-'.
	path, err := DeriveArchivePath("/backups", "pg-data", "web01", ts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DeriveArchivePath("/backups", "pg", "data-web01", ts); err == nil {
		t.Fatalf("expected the colliding triple to be rejected, both would derive %q", path)
	}

	parsed, ok := ParseArchiveName(filepath.Base(path))
	if !ok {
		t.Fatalf("failed to parse %q", path)
	}
	if parsed.VolumeName != "pg-data" || parsed.HostLabel != "web01" {
		t.Fatalf("parsed %q/%q, want pg-data/web01", parsed.VolumeName, parsed.HostLabel)
	}
}

func TestParseArchiveNameRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 0, time.Local)

	path, err := DeriveArchivePath("", "app-uploads", "web01", ts)
	if err != nil {
		t.Fatal(err)
	}

	parsed, ok := ParseArchiveName(filepath.Base(path))
	if !ok {
		t.Fatalf("failed to parse %q", path)
	}
	if parsed.VolumeName != "app-uploads" || parsed.HostLabel != "web01" {
		t.Fatalf("parsed %q/%q, want app-uploads/web01", parsed.VolumeName, parsed.HostLabel)
	}
	if !parsed.Timestamp.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v", parsed.Timestamp, ts)
	}
}

func TestParseArchiveNameRejectsForeignFiles(t *testing.T) {
	bad := []string{
		"notes.txt",
		"pgdata-web01.tar.gz",
		"pgdata-web01-20250601.tar.gz",
		"pgdata-web01-20250601-123045.tar",
		"-20250601-123045.tar.gz",
		"20250601-123045.tar.gz",
	}

	for _, name := range bad {
		if _, ok := ParseArchiveName(name); ok {
			t.Errorf("ParseArchiveName(%q) = ok, want reject", name)
		}
	}
}
