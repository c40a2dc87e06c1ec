package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/volkeep/volkeep/internal/logging"
	"github.com/volkeep/volkeep/pkg/models"
)

// ErrCancelled signals operator cancellation; it is not a failure.
var ErrCancelled = errors.New("cancelled by operator")

// RestoreEngine streams an archive back into a volume, replacing its
// contents.
type RestoreEngine struct {
	runtime VolumeRuntime
	log     *logging.Logger

	// Confirm gates the destructive overwrite. A nil Confirm means the
	// caller already obtained confirmation (remote restore confirms the
	// composite operation once up front).
	Confirm func(archivePath, targetVolume string) (bool, error)

	// Progress receives restore progress updates.
	Progress models.ProgressFunc
}

func NewRestoreEngine(runtime VolumeRuntime, log *logging.Logger) *RestoreEngine {
	return &RestoreEngine{runtime: runtime, log: log}
}

// Restore overwrites targetVolume's contents with the archive at
// archivePath.
func (e *RestoreEngine) Restore(ctx context.Context, archivePath, targetVolume string) error {
	if _, err := os.Stat(archivePath); err != nil {
		return fmt.Errorf("archive not found: %w", err)
	}

	exists, err := e.runtime.VolumeExists(ctx, targetVolume)
	if err != nil {
		return fmt.Errorf("failed to inspect volume %s: %w", targetVolume, err)
	}
	if !exists {
		return fmt.Errorf("volume %s does not exist", targetVolume)
	}

	if e.Confirm != nil {
		ok, err := e.Confirm(archivePath, targetVolume)
		if err != nil {
			return err
		}
		if !ok {
			e.log.Logf("restore of %s into volume %s cancelled by operator", archivePath, targetVolume)
			return ErrCancelled
		}
	}

	if err := e.runtime.RestoreVolume(ctx, targetVolume, archivePath, e.Progress); err != nil {
		e.log.Logf("restore of %s into volume %s failed: %v", archivePath, targetVolume, err)
		return err
	}

	e.log.Logf("restored %s into volume %s", archivePath, targetVolume)
	return nil
}
