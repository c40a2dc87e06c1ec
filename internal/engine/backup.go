package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/lucsky/cuid"
	"github.com/volkeep/volkeep/internal/archive"
	"github.com/volkeep/volkeep/internal/logging"
	"github.com/volkeep/volkeep/pkg/models"
)

type JobStatus string

const (
	StatusSuccess      JobStatus = "success"
	StatusBackupFailed JobStatus = "backup_failed"
	StatusVerifyFailed JobStatus = "verify_failed"
)

// JobResult is the outcome of one volume's backup attempt.
type JobResult struct {
	Volume      string
	ArchivePath string
	SizeBytes   int64
	Status      JobStatus
	Err         error
}

// Runner fans out one concurrent backup job per selected volume and joins
// them before reporting. Job failures are isolated: one volume's failure
// never aborts its siblings.
type Runner struct {
	runtime       VolumeRuntime
	store         *archive.Store
	verifier      Verifier
	log           *logging.Logger
	hostLabel     string
	retentionDays int
	now           func() time.Time

	// Progress, when set, supplies a per-volume progress observer.
	Progress func(volumeName string) models.ProgressFunc
}

func NewRunner(runtime VolumeRuntime, store *archive.Store, verifier Verifier, log *logging.Logger, hostLabel string, retentionDays int) *Runner {
	return &Runner{
		runtime:       runtime,
		store:         store,
		verifier:      verifier,
		log:           log,
		hostLabel:     hostLabel,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// SetClock overrides the timestamp source. Used by tests.
func (r *Runner) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	r.now = now
}

// RunBackup backs up the selected volumes concurrently and returns one
// result per volume, sorted by volume name. Retention cleanup runs as a
// best-effort pre-step; its failure is logged, never fatal.
func (r *Runner) RunBackup(ctx context.Context, volumes []string) ([]JobResult, error) {
	if len(volumes) == 0 {
		return nil, fmt.Errorf("no volumes selected")
	}

	if err := r.store.EnsureDir(); err != nil {
		return nil, err
	}

	runID := cuid.Slug()
	r.log.Logf("[%s] backup run started for %d volume(s)", runID, len(volumes))

	if deleted, err := r.store.Cleanup(r.retentionDays, r.now(), r.log); err != nil {
		r.log.Logf("[%s] retention cleanup skipped: %v", runID, err)
	} else if deleted > 0 {
		r.log.Logf("[%s] retention cleanup removed %d archive(s)", runID, deleted)
	}

	results := make(chan JobResult, len(volumes))
	var wg sync.WaitGroup

	for _, volumeName := range volumes {
		wg.Add(1)
		go func(volumeName string) {
			defer wg.Done()
			results <- r.backupOne(ctx, runID, volumeName)
		}(volumeName)
	}

	wg.Wait()
	close(results)

	aggregated := make([]JobResult, 0, len(volumes))
	for result := range results {
		aggregated = append(aggregated, result)
	}
	sort.Slice(aggregated, func(i, j int) bool {
		return aggregated[i].Volume < aggregated[j].Volume
	})

	r.log.Logf("[%s] backup run finished", runID)
	return aggregated, nil
}

func (r *Runner) backupOne(ctx context.Context, runID, volumeName string) JobResult {
	result := JobResult{Volume: volumeName}

	archivePath, err := archive.DeriveArchivePath(r.store.Dir, volumeName, r.hostLabel, r.now())
	if err != nil {
		result.Status = StatusBackupFailed
		result.Err = err
		r.log.Logf("[%s] backup of volume %s failed: %v", runID, volumeName, err)
		return result
	}
	result.ArchivePath = archivePath

	totalBytes, err := r.runtime.MeasureVolumeSize(ctx, volumeName)
	if err != nil {
		// fall back to an un-sized progress indicator
		r.log.Logf("[%s] size probe for volume %s failed, progress will be unsized: %v", runID, volumeName, err)
		totalBytes = 0
	}

	var progress models.ProgressFunc
	if r.Progress != nil {
		progress = r.Progress(volumeName)
	}

	partialPath := archivePath + ".partial"
	if err := r.runtime.BackupVolume(ctx, volumeName, partialPath, totalBytes, progress); err != nil {
		result.Status = StatusBackupFailed
		result.Err = err
		r.log.Logf("[%s] backup of volume %s failed: %v", runID, volumeName, err)
		return result
	}

	if err := os.Rename(partialPath, archivePath); err != nil {
		result.Status = StatusBackupFailed
		result.Err = fmt.Errorf("failed to finalize archive: %w", err)
		r.log.Logf("[%s] backup of volume %s failed: %v", runID, volumeName, result.Err)
		return result
	}

	if info, err := os.Stat(archivePath); err == nil {
		result.SizeBytes = info.Size()
	}

	// verification failure keeps the archive on disk for inspection
	if err := r.verifier.Verify(archivePath); err != nil {
		result.Status = StatusVerifyFailed
		result.Err = err
		r.log.Logf("[%s] backup of volume %s wrote %s but verification failed: %v", runID, volumeName, archivePath, err)
		return result
	}

	result.Status = StatusSuccess
	r.log.Logf("[%s] backup of volume %s completed: %s", runID, volumeName, archivePath)
	return result
}
