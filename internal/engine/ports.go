package engine

import (
	"context"

	"github.com/volkeep/volkeep/pkg/models"
)

// VolumeRuntime is the container runtime surface the engine drives. The
// docker client implements it; tests substitute fakes.
type VolumeRuntime interface {
	ListVolumes(ctx context.Context) ([]string, error)
	VolumeExists(ctx context.Context, volumeName string) (bool, error)
	MeasureVolumeSize(ctx context.Context, volumeName string) (int64, error)
	BackupVolume(ctx context.Context, volumeName, archivePath string, totalBytes int64, progress models.ProgressFunc) error
	RestoreVolume(ctx context.Context, volumeName, archivePath string, progress models.ProgressFunc) error
}

// Verifier checks a finished archive for structural integrity.
type Verifier interface {
	Verify(path string) error
}

// Transfer moves archives between the local store and a remote endpoint.
type Transfer interface {
	Probe(ctx context.Context, endpoint models.RemoteEndpoint) error
	Push(ctx context.Context, archivePath string, endpoint models.RemoteEndpoint) error
	Fetch(ctx context.Context, endpoint models.RemoteEndpoint, remoteArchiveName, destDir string) (string, error)
	ListRemote(ctx context.Context, endpoint models.RemoteEndpoint) ([]string, error)
}
