package engine

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/volkeep/volkeep/internal/archive"
	"github.com/volkeep/volkeep/internal/logging"
	"github.com/volkeep/volkeep/pkg/models"
)

type fakeRuntime struct {
	mu           sync.Mutex
	volumes      map[string]bool
	sizes        map[string]int64
	sizeErr      map[string]error
	backupErr    map[string]error
	restoreErr   error
	backupTotals map[string]int64
	restoreCalls []string
}

func newFakeRuntime(volumes ...string) *fakeRuntime {
	f := &fakeRuntime{
		volumes:      map[string]bool{},
		sizes:        map[string]int64{},
		sizeErr:      map[string]error{},
		backupErr:    map[string]error{},
		backupTotals: map[string]int64{},
	}
	for _, v := range volumes {
		f.volumes[v] = true
	}
	return f
}

func (f *fakeRuntime) ListVolumes(ctx context.Context) ([]string, error) {
	names := []string{}
	for name := range f.volumes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeRuntime) VolumeExists(ctx context.Context, name string) (bool, error) {
	return f.volumes[name], nil
}

func (f *fakeRuntime) MeasureVolumeSize(ctx context.Context, name string) (int64, error) {
	if err := f.sizeErr[name]; err != nil {
		return 0, err
	}
	return f.sizes[name], nil
}

func (f *fakeRuntime) BackupVolume(ctx context.Context, name, archivePath string, totalBytes int64, progress models.ProgressFunc) error {
	f.mu.Lock()
	f.backupTotals[name] = totalBytes
	f.mu.Unlock()

	if err := f.backupErr[name]; err != nil {
		return err
	}
	return os.WriteFile(archivePath, []byte("archive content for "+name), 0644)
}

func (f *fakeRuntime) RestoreVolume(ctx context.Context, name, archivePath string, progress models.ProgressFunc) error {
	f.mu.Lock()
	f.restoreCalls = append(f.restoreCalls, name)
	f.mu.Unlock()
	return f.restoreErr
}

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(path string) error { return f.err }

func testRunner(t *testing.T, rt *fakeRuntime, v Verifier, retentionDays int) (*Runner, *archive.Store, *strings.Builder) {
	t.Helper()

	store := archive.NewStore(t.TempDir())
	var buf strings.Builder
	log := logging.NewWriter(&buf)
	r := NewRunner(rt, store, v, log, "web01", retentionDays)
	r.SetClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 30, 45, 0, time.Local)
	})
	return r, store, &buf
}

func TestRunBackupIsolatesFailures(t *testing.T) {
	rt := newFakeRuntime("alpha", "beta")
	rt.backupErr["alpha"] = errors.New("stream broke")

	r, store, _ := testRunner(t, rt, &fakeVerifier{}, 0)

	results, err := r.RunBackup(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Volume != "alpha" || results[0].Status != StatusBackupFailed {
		t.Fatalf("alpha result = %+v, want backup_failed", results[0])
	}
	if results[1].Volume != "beta" || results[1].Status != StatusSuccess {
		t.Fatalf("beta result = %+v, want success", results[1])
	}

	archives, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(archives) != 1 || archives[0].VolumeName != "beta" {
		t.Fatalf("store should hold only beta's archive: %+v", archives)
	}
}

func TestRunBackupVerifyFailureKeepsArchive(t *testing.T) {
	rt := newFakeRuntime("alpha")
	r, _, _ := testRunner(t, rt, &fakeVerifier{err: errors.New("bad toc")}, 0)

	results, err := r.RunBackup(context.Background(), []string{"alpha"})
	if err != nil {
		t.Fatal(err)
	}

	if results[0].Status != StatusVerifyFailed {
		t.Fatalf("status = %s, want verify_failed", results[0].Status)
	}
	if _, err := os.Stat(results[0].ArchivePath); err != nil {
		t.Fatalf("archive must be retained for inspection: %v", err)
	}
}

func TestRunBackupSizeProbeFailureFallsBackToUnsized(t *testing.T) {
	rt := newFakeRuntime("alpha")
	rt.sizes["alpha"] = 4096
	rt.sizeErr["alpha"] = errors.New("probe container failed")

	r, _, buf := testRunner(t, rt, &fakeVerifier{}, 0)

	results, err := r.RunBackup(context.Background(), []string{"alpha"})
	if err != nil {
		t.Fatal(err)
	}

	if results[0].Status != StatusSuccess {
		t.Fatalf("probe failure must not fail the job: %+v", results[0])
	}
	if rt.backupTotals["alpha"] != 0 {
		t.Fatalf("expected unsized backup (total 0), got %d", rt.backupTotals["alpha"])
	}
	if !strings.Contains(buf.String(), "progress will be unsized") {
		t.Fatalf("missing fallback log line: %q", buf.String())
	}
}

func TestRunBackupRunsRetentionBeforeJobs(t *testing.T) {
	rt := newFakeRuntime("alpha")
	r, store, _ := testRunner(t, rt, &fakeVerifier{}, 30)

	if err := store.EnsureDir(); err != nil {
		t.Fatal(err)
	}

	clock := time.Date(2025, 6, 1, 12, 30, 45, 0, time.Local)
	expiredPath, err := archive.DeriveArchivePath(store.Dir, "alpha", "web01", clock.Add(-40*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(expiredPath, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := r.RunBackup(context.Background(), []string{"alpha"}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(expiredPath); !os.IsNotExist(err) {
		t.Fatalf("expired archive should have been cleaned up before the run: %v", err)
	}
}

func TestRunBackupRejectsEmptySelection(t *testing.T) {
	r, _, _ := testRunner(t, newFakeRuntime(), &fakeVerifier{}, 0)

	if _, err := r.RunBackup(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty selection")
	}
}

func TestRunBackupRejectsUnsafeVolumeName(t *testing.T) {
	rt := newFakeRuntime("ok")
	r, _, _ := testRunner(t, rt, &fakeVerifier{}, 0)

	results, err := r.RunBackup(context.Background(), []string{"bad/volume", "ok"})
	if err != nil {
		t.Fatal(err)
	}

	byVolume := map[string]JobResult{}
	for _, res := range results {
		byVolume[res.Volume] = res
	}
	if byVolume["bad/volume"].Status != StatusBackupFailed {
		t.Fatalf("unsafe name must fail its own job: %+v", byVolume["bad/volume"])
	}
	if byVolume["ok"].Status != StatusSuccess {
		t.Fatalf("sibling job must be unaffected: %+v", byVolume["ok"])
	}
}

func TestRunBackupManyVolumesAllReported(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	rt := newFakeRuntime(names...)
	r, _, _ := testRunner(t, rt, &fakeVerifier{}, 0)

	results, err := r.RunBackup(context.Background(), names)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(names) {
		t.Fatalf("expected %d results, got %d", len(names), len(results))
	}
	for i, res := range results {
		if res.Volume != names[i] {
			t.Fatalf("results not sorted by volume: %+v", results)
		}
		if res.Status != StatusSuccess {
			t.Fatalf("volume %s: %+v", res.Volume, res)
		}
	}
}
