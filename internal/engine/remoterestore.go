package engine

import (
	"context"
	"fmt"

	"github.com/volkeep/volkeep/internal/archive"
	"github.com/volkeep/volkeep/internal/logging"
	"github.com/volkeep/volkeep/pkg/models"
)

type Stage string

const (
	StageFetch   Stage = "fetch"
	StageRestore Stage = "restore"
)

// StageError reports which phase of a remote restore failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RemoteRestorer composes fetch and restore into one operation. The
// restore phase never runs unless the fetch phase succeeded.
type RemoteRestorer struct {
	transfer Transfer
	restore  *RestoreEngine
	store    *archive.Store
	log      *logging.Logger
}

func NewRemoteRestorer(transfer Transfer, restore *RestoreEngine, store *archive.Store, log *logging.Logger) *RemoteRestorer {
	return &RemoteRestorer{
		transfer: transfer,
		restore:  restore,
		store:    store,
		log:      log,
	}
}

// RemoteRestore fetches remoteArchiveName from the endpoint into the local
// store, then restores it into targetVolume. On restore failure the
// fetched local copy is kept as a recovery artifact.
func (o *RemoteRestorer) RemoteRestore(ctx context.Context, endpoint models.RemoteEndpoint, remoteArchiveName, targetVolume string) error {
	if err := o.store.EnsureDir(); err != nil {
		return &StageError{Stage: StageFetch, Err: err}
	}

	localPath, err := o.transfer.Fetch(ctx, endpoint, remoteArchiveName, o.store.Dir)
	if err != nil {
		o.log.Logf("remote restore aborted: fetch of %s from %s failed: %v", remoteArchiveName, endpoint.Target(), err)
		return &StageError{Stage: StageFetch, Err: err}
	}

	if err := o.restore.Restore(ctx, localPath, targetVolume); err != nil {
		// the fetched archive stays in the local store for a retry
		o.log.Logf("remote restore of %s into volume %s failed at restore stage, local copy kept at %s", remoteArchiveName, targetVolume, localPath)
		return &StageError{Stage: StageRestore, Err: err}
	}

	o.log.Logf("remote restore of %s into volume %s completed", remoteArchiveName, targetVolume)
	return nil
}
